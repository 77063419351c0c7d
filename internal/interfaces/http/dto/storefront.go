package dto

import "github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence/models"

// QuantityRequest sets the quantity of a cart or quote line. Zero or less
// removes the line.
type QuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// LoginRequest signs a customer in. Missing fields are reported by the
// login flow itself.
type LoginRequest struct {
	Email    string `json:"email" example:"shopper@example.com"`
	Password string `json:"password" example:"correct-horse"`
}

// SubmitQuoteRequest submits the current quote.
type SubmitQuoteRequest struct {
	Notes *string `json:"notes"`
}

// SettingRequest sets one channel setting.
type SettingRequest struct {
	Value any `json:"value"`
}

// OrderSummary is returned after a successful checkout.
type OrderSummary struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Total       string `json:"total_inc_tax"`
	Currency    string `json:"currency_code"`
}

// NewOrderSummary summarises a placed order.
func NewOrderSummary(o *models.Order) OrderSummary {
	s := OrderSummary{
		OrderID:  o.ID,
		Status:   o.Status,
		Total:    o.TotalIncTax.StringFixed(2),
		Currency: o.CurrencyCode,
	}
	if o.OrderNumber != nil {
		s.OrderNumber = *o.OrderNumber
	}
	return s
}

// HealthResponse reports the state of the process and its dependencies.
type HealthResponse struct {
	Status   string            `json:"status"`
	Time     string            `json:"time"`
	Checks   map[string]string `json:"checks"`
	Version  string            `json:"version,omitempty"`
	Channel  int64             `json:"channel_id,omitempty"`
	Database *DatabaseStats    `json:"database,omitempty"`
}

// DatabaseStats is the connection pool summary included in health output.
type DatabaseStats struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
}
