package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelToSnake(t *testing.T) {
	cases := map[string]string{
		"defaultCurrencyCode": "default_currency_code",
		"sslEnabled":          "ssl_enabled",
		"address1":            "address1",
		"already_snake":       "already_snake",
		"ID":                  "i_d",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CamelToSnake(in), in)
	}
}

func TestSnakeToCamel(t *testing.T) {
	cases := map[string]string{
		"default_currency_code": "defaultCurrencyCode",
		"url_standard":          "urlStandard",
		"address_1":             "address_1",
		"plain":                 "plain",
	}
	for in, want := range cases {
		assert.Equal(t, want, SnakeToCamel(in), in)
	}
}

func TestNormalizeKeys(t *testing.T) {
	got := NormalizeKeys(map[string]any{
		"salePrice":  "1.00",
		"sale_price": "2.00",
		"quantity":   3,
		"variantId":  nil,
	})

	assert.Equal(t, map[string]any{
		"sale_price": "2.00",
		"quantity":   3,
		"variant_id": nil,
	}, got)
}
