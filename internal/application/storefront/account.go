package storefront

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/application/customer"
	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var (
	errCredentialsRequired = shared.NewBadRequest("Email and password are required.", nil)
	errRegisterIncomplete  = shared.NewBadRequest("All fields are required.", nil)
	errEmailTaken          = shared.NewConflict("An account with this email already exists.")
	errPasswordTooShort    = shared.NewBadRequest(
		fmt.Sprintf("Password must be at least %d characters.", auth.MinPasswordLength), nil)
)

// RegisterInput is the storefront sign-up form.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Account is the profile shown to a signed-in customer.
type Account struct {
	CustomerID int64   `json:"customer_id"`
	Email      string  `json:"email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
}

// Register creates an active customer on this channel and signs them in.
func (s *Storefront) Register(ctx context.Context, in RegisterInput) (*IssuedSession, error) {
	email := customer.NormalizeEmail(in.Email)
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if email == "" || in.Password == "" || first == "" || last == "" {
		return nil, errRegisterIncomplete
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, errPasswordTooShort
	}

	existing, err := s.svc.Customers.FindByEmailAndChannel(ctx, email, s.channelID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errEmailTaken
	}

	c, err := s.svc.Customers.Create(ctx, map[string]any{
		"email":             email,
		"password":          in.Password,
		"first_name":        first,
		"last_name":         last,
		"origin_channel_id": s.channelID,
		"is_active":         true,
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Customer registered", zap.Int64("customer_id", c.ID))
	s.metrics.CustomerRegistered(s.channelID)
	return s.issue(c.ID, c.Email)
}

// Login checks the customer's credentials on this channel and issues a
// session.
func (s *Storefront) Login(ctx context.Context, email, password string) (*IssuedSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errCredentialsRequired
	}
	c, err := s.svc.Customers.Authenticate(ctx, email, password, s.channelID)
	if err != nil {
		return nil, err
	}
	return s.issue(c.ID, c.Email)
}

// Logout revokes session until it would have expired. A nil session is a
// no-op.
func (s *Storefront) Logout(ctx context.Context, session *Session) error {
	if session == nil || session.TokenID == "" {
		return nil
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Account returns the signed-in customer's profile.
func (s *Storefront) Account(ctx context.Context, session *Session) (*Account, error) {
	if session == nil {
		return nil, ErrLoginRequired
	}
	c, err := s.svc.Customers.GetByID(ctx, session.CustomerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLoginRequired
		}
		return nil, err
	}
	return &Account{
		CustomerID: c.ID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
	}, nil
}
