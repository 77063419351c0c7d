package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Session is a signed-in customer.
type Session struct {
	CustomerID int64     `json:"customer_id"`
	Email      string    `json:"email"`
	TokenID    string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IssuedSession is a new session together with the token to store in the
// session cookie.
type IssuedSession struct {
	Session
	Token string `json:"-"`
}

func (s *Storefront) issue(customerID int64, email string) (*IssuedSession, error) {
	token, expiresAt, err := s.sessions.Issue(customerID, email)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &IssuedSession{
		Session: Session{
			CustomerID: customerID,
			Email:      email,
			TokenID:    claims.ID,
			ExpiresAt:  expiresAt,
		},
		Token: token,
	}, nil
}

// ResolveSession returns the session carried by token, or nil when token is
// empty, invalid, expired or revoked. Only a failing blacklist is an error.
func (s *Storefront) ResolveSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.sessions.Parse(token)
	if err != nil {
		if !errors.Is(err, auth.ErrExpiredToken) {
			logger.L(ctx).Debug("Ignoring invalid session token", zap.Error(err))
		}
		return nil, nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return nil, nil
	}
	return &Session{
		CustomerID: claims.CustomerID,
		Email:      claims.Email,
		TokenID:    claims.ID,
		ExpiresAt:  claims.ExpiresAtTime(),
	}, nil
}

// SessionLifetime is how long issued sessions last; the cookie max age
// should match it.
func (s *Storefront) SessionLifetime() time.Duration {
	return s.sessions.Expiration()
}
