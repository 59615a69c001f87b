package httpx

import (
	"github.com/KOMKZ/yogan-sessionguard/validator"
	"github.com/gin-gonic/gin"
)

// HandlerFunc is a typed handler: it receives the parsed request and returns
// the data of a success envelope.
type HandlerFunc[Req any, Resp any] func(c *gin.Context, req *Req) (*Resp, error)

// Wrap parses and validates the request, calls handler and renders the result.
func Wrap[Req any, Resp any](handler HandlerFunc[Req, Resp]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if err := Parse(c, &req); err != nil {
			HandleError(c, err)
			return
		}

		if v, ok := any(&req).(validator.Validatable); ok {
			if err := validator.ValidateRequest(v); err != nil {
				HandleError(c, err)
				return
			}
		}

		resp, err := handler(c, &req)
		if err != nil {
			HandleError(c, err)
			return
		}
		if c.Writer.Written() {
			return
		}
		OkJson(c, resp)
	}
}
