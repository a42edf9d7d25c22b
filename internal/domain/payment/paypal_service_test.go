// internal/domain/payment/paypal_service_test.go
package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderBreakdownTotal(t *testing.T) {
	b := OrderBreakdown{
		ItemTotal: decimal.NewFromInt(1000),
		Shipping:  decimal.NewFromInt(50),
		TaxTotal:  decimal.RequireFromString("87.50"),
		Discount:  decimal.Zero,
	}

	assert.Equal(t, "1137.50", b.Total().StringFixed(2))
}

func TestOrderBreakdownTotalWithDiscount(t *testing.T) {
	b := OrderBreakdown{
		ItemTotal: decimal.NewFromInt(1000),
		Shipping:  decimal.NewFromInt(50),
		TaxTotal:  decimal.RequireFromString("87.50"),
		Discount:  decimal.NewFromInt(100),
	}

	// The breakdown components must sum exactly to the submitted amount.
	sum := b.ItemTotal.Add(b.Shipping).Add(b.TaxTotal).Sub(b.Discount)
	assert.True(t, sum.Equal(b.Total()))
	assert.Equal(t, "1037.50", b.Total().StringFixed(2))
}
