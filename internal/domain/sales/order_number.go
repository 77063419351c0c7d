package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderNumberPrefix starts every generated order number.
const OrderNumberPrefix = "KG"

// NewOrderNumber builds "KG-20261015-1A2B3C4D" from the order date and the
// first eight hex digits of id.
func NewOrderNumber(at time.Time, id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return OrderNumberPrefix + "-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(hex[:8])
}
