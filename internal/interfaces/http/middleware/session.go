package middleware

import (
	"context"

	"github.com/cmlibra71/keenan-group-channels/internal/application/storefront"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// SessionCookie holds the storefront session token.
const SessionCookie = "session"

const sessionKey = "storefront_session"

// SessionResolver turns a session token into a session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*storefront.Session, error)
}

// StorefrontContext tags the request context with the storefront's channel
// and, when the session cookie is valid, the signed-in customer. Requests
// without a usable session continue anonymously.
func StorefrontContext(channelID int64, resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.WithChannelID(c.Request.Context(), channelID)

		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			session, err := resolver.ResolveSession(ctx, token)
			if err != nil {
				RespondError(c, err)
				return
			}
			if session != nil {
				c.Set(sessionKey, session)
				ctx = logger.WithCustomerID(ctx, session.CustomerID)
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSession returns the session set by StorefrontContext, or nil.
func GetSession(c *gin.Context) *storefront.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*storefront.Session); ok {
			return s
		}
	}
	return nil
}

// RequireSession rejects anonymous requests with 401 login_required.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c) == nil {
			RespondError(c, storefront.ErrLoginRequired)
			return
		}
		c.Next()
	}
}
