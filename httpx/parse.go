package httpx

import "github.com/gin-gonic/gin"

// Parse binds uri, query and (when present) JSON body parameters into req.
// Only a malformed body is an error.
func Parse(c *gin.Context, req any) error {
	// uri and query binding fail for structs without those tags
	_ = c.ShouldBindUri(req)
	_ = c.ShouldBindQuery(req)

	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			return ErrBadRequest.Wrap(err)
		}
	}
	return nil
}
