// Package customer manages storefront customers and customer groups.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/auth"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/crud"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for any failed login.
var ErrInvalidCredentials = shared.NewUnauthorized("Invalid email or password.")

// CustomerConfig describes the customers table.
func CustomerConfig() crud.Config {
	return crud.Config{
		ResourceName:  "Customer",
		SortColumns:   persistence.SortColumns("id", "email", "last_name", "created_at"),
		FilterColumns: persistence.SortColumns("email", "customer_group_id", "origin_channel_id", "is_active"),
		ForeignKeys: []crud.ForeignKey{
			{Table: "channels", ResourceName: "Channel", Field: "origin_channel_id", Optional: true},
			{Table: "customer_groups", ResourceName: "Customer Group", Field: "customer_group_id", Optional: true},
		},
		UniqueConstraints: []crud.Unique{{
			Fields:    []string{"origin_channel_id", "email"},
			Message:   "A customer with this email already exists for this channel.",
			Composite: true,
		}},
		Dependencies: []crud.Dependency{{
			Table:        "carts",
			ForeignKey:   "customer_id",
			ResourceName: "cart",
			Message:      "Cannot delete customer because it has {count} cart(s).",
		}},
	}
}

// CustomerService manages customers. Emails are stored lower-cased and a
// plain "password" value is replaced by its bcrypt hash.
type CustomerService struct {
	*crud.Service[models.Customer]
}

// NewCustomerService creates a CustomerService
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{Service: crud.MustNew[models.Customer](db, CustomerConfig(), nil)}
}

// Create creates a customer.
func (s *CustomerService) Create(ctx context.Context, values map[string]any) (*models.Customer, error) {
	values, err := prepare(values)
	if err != nil {
		return nil, err
	}
	return s.Service.Create(ctx, values)
}

// Update updates a customer.
func (s *CustomerService) Update(ctx context.Context, id int64, values map[string]any) (*models.Customer, error) {
	values, err := prepare(values)
	if err != nil {
		return nil, err
	}
	return s.Service.Update(ctx, id, values)
}

func prepare(values map[string]any) (map[string]any, error) {
	values = shared.NormalizeKeys(values)
	if email, ok := values["email"].(string); ok {
		values["email"] = NormalizeEmail(email)
	}
	delete(values, "password_hash")
	if raw, ok := values["password"]; ok {
		delete(values, "password")
		password, _ := raw.(string)
		if len(password) < auth.MinPasswordLength {
			return nil, shared.NewValidation("One or more fields are invalid.", map[string]string{
				"password": fmt.Sprintf("Password must be at least %d characters.", auth.MinPasswordLength),
			})
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		values["password_hash"] = hash
	}
	return values, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmailAndChannel returns the customer registered on channelID with
// email, or nil.
func (s *CustomerService) FindByEmailAndChannel(ctx context.Context, email string, channelID int64) (*models.Customer, error) {
	var c models.Customer
	err := s.DB(ctx).
		Where("email = ? AND origin_channel_id = ?", NormalizeEmail(email), channelID).
		Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	return &c, nil
}

// Authenticate returns the active customer of channelID whose password
// matches. Every failure yields ErrInvalidCredentials.
func (s *CustomerService) Authenticate(ctx context.Context, email, password string, channelID int64) (*models.Customer, error) {
	c, err := s.FindByEmailAndChannel(ctx, email, channelID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.PasswordHash == nil || (c.IsActive != nil && !*c.IsActive) {
		return nil, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(*c.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}
