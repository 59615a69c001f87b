package logger

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap/zapcore"
)

var (
	validLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEncodings = []string{"json", "console"}
)

// ManagerConfig is shared by every module logger created by a Manager.
type ManagerConfig struct {
	Level           string `mapstructure:"level"`
	AppName         string `mapstructure:"app_name"` // injected into every entry, even when empty
	Encoding        string `mapstructure:"encoding"` // json / console
	ConsoleEncoding string `mapstructure:"console_encoding"`
	EnableConsole   bool   `mapstructure:"enable_console"`

	// File output (one info file and one error file per module, rotated by lumberjack)
	EnableFile   bool   `mapstructure:"enable_file"`
	BaseLogDir   string `mapstructure:"base_log_dir"`
	DateFormat   string `mapstructure:"date_format"`
	MaxSize      int    `mapstructure:"max_size"` // MB
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"` // days
	Compress     bool   `mapstructure:"compress"`
	EnableCaller bool   `mapstructure:"enable_caller"`

	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	StacktraceLevel  string `mapstructure:"stacktrace_level"`
	StacktraceDepth  int    `mapstructure:"stacktrace_depth"` // 0 = unlimited

	EnableTraceID    bool   `mapstructure:"enable_trace_id"`
	TraceIDFieldName string `mapstructure:"trace_id_field_name"`
}

// DefaultManagerConfig returns the configuration used when none is supplied.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Level:            "info",
		AppName:          "sessionguard",
		Encoding:         "json",
		EnableConsole:    true,
		EnableFile:       false,
		BaseLogDir:       "logs",
		DateFormat:       "2006-01-02",
		MaxSize:          100,
		MaxBackups:       3,
		MaxAge:           28,
		Compress:         true,
		EnableCaller:     true,
		EnableStacktrace: true,
		StacktraceLevel:  "error",
		StacktraceDepth:  5,
		EnableTraceID:    true,
		TraceIDFieldName: "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields in place.
// Booleans are left alone: false is indistinguishable from "not configured".
func (c *ManagerConfig) ApplyDefaults() {
	d := DefaultManagerConfig()
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.BaseLogDir == "" {
		c.BaseLogDir = d.BaseLogDir
	}
	if c.DateFormat == "" {
		c.DateFormat = d.DateFormat
	}
	if c.MaxSize == 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = d.MaxAge
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = d.StacktraceLevel
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = d.TraceIDFieldName
	}
}

// Validate checks enum and range fields.
func (c ManagerConfig) Validate() error {
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("logger: invalid level %q (valid: %v)", c.Level, validLevels)
	}
	if !slices.Contains(validEncodings, c.Encoding) {
		return fmt.Errorf("logger: invalid encoding %q (valid: %v)", c.Encoding, validEncodings)
	}
	if c.ConsoleEncoding != "" && !slices.Contains(validEncodings, c.ConsoleEncoding) {
		return fmt.Errorf("logger: invalid console encoding %q", c.ConsoleEncoding)
	}
	if c.MaxSize < 1 || c.MaxSize > 10000 {
		return fmt.Errorf("logger: max_size must be between 1-10000 MB, got %d", c.MaxSize)
	}
	if c.MaxBackups < 0 || c.MaxBackups > 1000 {
		return fmt.Errorf("logger: max_backups must be between 0-1000, got %d", c.MaxBackups)
	}
	if c.MaxAge < 0 || c.MaxAge > 3650 {
		return fmt.Errorf("logger: max_age must be between 0-3650 days, got %d", c.MaxAge)
	}
	if !slices.Contains(validLevels, c.StacktraceLevel) {
		return fmt.Errorf("logger: invalid stacktrace level %q", c.StacktraceLevel)
	}
	return nil
}

// ParseLevel maps a level name to a zapcore level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath builds logs/<module>/<module>-<level>-<date>.log
func (c ManagerConfig) filePath(module, level string) string {
	name := module + "-" + level + "-" + time.Now().Format(c.DateFormat) + ".log"
	return filepath.Join(c.BaseLogDir, module, name)
}
