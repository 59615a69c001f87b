// Package errcode provides layered error codes shared by the session guard modules.
// Code format: MMBBBB (MM = module code, BBBB = business code).
//
// The message key doubles as the stable machine-readable reason that is sent
// to clients (for example CSRF_TOKEN_MISSING), so it must never change once
// published.
package errcode

import (
	"fmt"
	"maps"
	"net/http"
)

// Module codes.
const (
	ModuleCommon     = 10
	ModuleCSRF       = 41
	ModuleRevocation = 42
	ModuleAuth       = 43
)

// LayeredError is an error with a numeric code, a stable key, a default
// message and the HTTP status it maps to. All With* methods return copies.
type LayeredError struct {
	module     string
	code       int
	msgKey     string
	msg        string
	httpStatus int
	data       map[string]any
	cause      error
}

// New creates a layered error. httpStatus defaults to 200.
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusOK
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]any),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *LayeredError) Code() int            { return e.code }
func (e *LayeredError) Module() string       { return e.module }
func (e *LayeredError) MsgKey() string       { return e.msgKey }
func (e *LayeredError) Message() string      { return e.msg }
func (e *LayeredError) HTTPStatus() int      { return e.httpStatus }
func (e *LayeredError) Data() map[string]any { return e.data }
func (e *LayeredError) Cause() error         { return e.cause }
func (e *LayeredError) Unwrap() error        { return e.cause }

// WithMsg replaces the message.
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf replaces the message with a formatted one.
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	return e.WithMsg(fmt.Sprintf(format, args...))
}

// WithData attaches one context value.
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = maps.Clone(e.data)
	if clone.data == nil {
		clone.data = make(map[string]any)
	}
	clone.data[key] = value
	return &clone
}

// WithHTTPStatus overrides the mapped status.
func (e *LayeredError) WithHTTPStatus(status int) *LayeredError {
	clone := *e
	clone.httpStatus = status
	return &clone
}

// Wrap records the underlying cause. A nil cause returns e unchanged.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Is matches any LayeredError with the same code, so wrapped copies still
// satisfy errors.Is against the registered sentinel.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, key:%s, cause:%v}", e.code, e.module, e.msgKey, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, key:%s}", e.code, e.module, e.msgKey)
}
