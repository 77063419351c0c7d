package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects declared bodies over maxBytes and caps streamed ones.
// A non-positive maxBytes disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			RespondError(c, shared.NewAPIError(http.StatusRequestEntityTooLarge, "Payload Too Large",
				fmt.Sprintf("Request body exceeds the maximum of %d bytes.", maxBytes), nil))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
