package middleware

import (
	"crypto/subtle"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// HeaderAuthToken carries the admin API key.
const HeaderAuthToken = "X-Auth-Token"

// APIKeyAuth rejects requests whose X-Auth-Token is not one of keys. With no
// keys configured every request is rejected.
func APIKeyAuth(keys []string) gin.HandlerFunc {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			valid = append(valid, []byte(k))
		}
	}

	return func(c *gin.Context) {
		token := []byte(c.GetHeader(HeaderAuthToken))
		if len(token) > 0 {
			for _, k := range valid {
				if subtle.ConstantTimeCompare(token, k) == 1 {
					c.Next()
					return
				}
			}
		}
		RespondError(c, shared.NewUnauthorized(""))
	}
}
