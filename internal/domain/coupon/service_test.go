// internal/domain/coupon/service_test.go
package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func intPtr(v int) *int                         { return &v }
func decPtr(v decimal.Decimal) *decimal.Decimal { return &v }

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "WELCOME20", NormalizeCode("Welcome20"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestEvaluatePercentDiscount(t *testing.T) {
	c := &Coupon{
		Code:          "SAVE10",
		Type:          DiscountTypePercent,
		DiscountValue: d("0.10"),
		PerUserLimit:  1,
	}

	v := Evaluate(c, 0, d("1000"), time.Now())
	require.True(t, v.OK)
	assert.True(t, d("100").Equal(v.DiscountAmount), "discount = %s", v.DiscountAmount)
}

func TestEvaluateFixedDiscount(t *testing.T) {
	c := &Coupon{
		Code:          "FLAT50",
		Type:          DiscountTypeFixed,
		DiscountValue: d("50"),
		PerUserLimit:  1,
	}

	v := Evaluate(c, 0, d("200"), time.Now())
	require.True(t, v.OK)
	assert.True(t, d("50").Equal(v.DiscountAmount))
}

func TestEvaluateExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	c := &Coupon{
		Code:          "OLD",
		Type:          DiscountTypePercent,
		DiscountValue: d("0.10"),
		ExpiresAt:     &past,
		PerUserLimit:  1,
	}

	v := Evaluate(c, 0, d("1000"), time.Now())
	assert.False(t, v.OK)
	assert.Equal(t, ReasonExpired, v.Reason)
}

func TestEvaluateGateOrdering(t *testing.T) {
	// Expired AND below minimum must fail with the expiry reason: the
	// first gate wins.
	past := time.Now().Add(-time.Hour)
	c := &Coupon{
		Code:          "OLD",
		Type:          DiscountTypePercent,
		DiscountValue: d("0.10"),
		ExpiresAt:     &past,
		MinSubtotal:   decPtr(d("500")),
		PerUserLimit:  1,
	}

	v := Evaluate(c, 0, d("100"), time.Now())
	assert.Equal(t, ReasonExpired, v.Reason)
}

func TestEvaluateBelowMinimum(t *testing.T) {
	c := &Coupon{
		Code:          "BIGSPENDER",
		Type:          DiscountTypeFixed,
		DiscountValue: d("100"),
		MinSubtotal:   decPtr(d("500")),
		PerUserLimit:  1,
	}

	v := Evaluate(c, 0, d("499.99"), time.Now())
	assert.Equal(t, ReasonBelowMinimum, v.Reason)

	v = Evaluate(c, 0, d("500"), time.Now())
	assert.True(t, v.OK, "subtotal equal to minimum passes")
}

func TestEvaluateGlobalCap(t *testing.T) {
	c := &Coupon{
		Code:          "LIMITED",
		Type:          DiscountTypeFixed,
		DiscountValue: d("25"),
		MaxUses:       intPtr(5),
		UsedCount:     5,
		PerUserLimit:  1,
	}

	// Exhausted regardless of per-user history.
	v := Evaluate(c, 0, d("1000"), time.Now())
	assert.Equal(t, ReasonGlobalLimit, v.Reason)

	c.UsedCount = 4
	v = Evaluate(c, 0, d("1000"), time.Now())
	assert.True(t, v.OK)
}

func TestEvaluateUnlimitedGlobalUses(t *testing.T) {
	c := &Coupon{
		Code:          "EVERGREEN",
		Type:          DiscountTypeFixed,
		DiscountValue: d("10"),
		MaxUses:       nil,
		UsedCount:     1000000,
		PerUserLimit:  1,
	}

	v := Evaluate(c, 0, d("100"), time.Now())
	assert.True(t, v.OK)
}

func TestEvaluatePerUserCap(t *testing.T) {
	c := &Coupon{
		Code:          "ONCE",
		Type:          DiscountTypeFixed,
		DiscountValue: d("10"),
		PerUserLimit:  1,
	}

	v := Evaluate(c, 1, d("100"), time.Now())
	assert.Equal(t, ReasonPerUserLimit, v.Reason)

	c.PerUserLimit = 3
	v = Evaluate(c, 2, d("100"), time.Now())
	assert.True(t, v.OK)
}

func TestEvaluatePerUserLimitDefaultsToOne(t *testing.T) {
	c := &Coupon{
		Code:          "ZERO",
		Type:          DiscountTypeFixed,
		DiscountValue: d("10"),
		PerUserLimit:  0,
	}

	v := Evaluate(c, 1, d("100"), time.Now())
	assert.Equal(t, ReasonPerUserLimit, v.Reason)
}
