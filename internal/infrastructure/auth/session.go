package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session token errors
var (
	ErrMissingSecret    = errors.New("session secret is not configured")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims identify a signed-in storefront customer.
type Claims struct {
	jwt.RegisteredClaims
	CustomerID int64  `json:"customer_id"`
	Email      string `json:"email"`
}

// ExpiresAtTime returns the token's expiry, or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time left until the token expires.
func (c *Claims) RemainingTTL() time.Duration {
	remaining := time.Until(c.ExpiresAtTime())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SessionManager issues and verifies HS256-signed session tokens.
type SessionManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewSessionManager creates a SessionManager. A secret is mandatory.
func NewSessionManager(cfg config.SessionConfig) (*SessionManager, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	exp := cfg.Expiration
	if exp <= 0 {
		exp = 7 * 24 * time.Hour
	}
	return &SessionManager{
		secret:     []byte(cfg.Secret),
		expiration: exp,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}, nil
}

// Expiration returns how long issued sessions last.
func (m *SessionManager) Expiration() time.Duration { return m.expiration }

// Issue signs a session for the customer and returns the token and its expiry.
func (m *SessionManager) Issue(customerID int64, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(customerID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		CustomerID: customerID,
		Email:      email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse verifies token and returns its claims.
func (m *SessionManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.CustomerID <= 0 || claims.ID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
