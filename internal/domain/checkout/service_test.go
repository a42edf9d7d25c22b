// internal/domain/checkout/service_test.go
package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/luxury-storefront/internal/domain/cart"
	"github.com/your-org/luxury-storefront/internal/domain/pricing"
	"github.com/your-org/luxury-storefront/internal/domain/user"
)

func testAddress() *user.Address {
	return &user.Address{
		ID:      7,
		Name:    "Jordan Blake",
		Phone:   "+1 555 0100",
		Street:  "1 Rodeo Drive",
		City:    "Beverly Hills",
		State:   "CA",
		Zip:     "90210",
		Country: "United States",
	}
}

func testItems() []cart.CartItemResponse {
	return []cart.CartItemResponse{
		{
			ProductID: 11,
			Name:      "Silk Scarf",
			UnitPrice: decimal.NewFromInt(250),
			Color:     "Ivory",
			Size:      "One Size",
			Quantity:  2,
		},
		{
			ProductID: 12,
			Name:      "Leather Tote",
			UnitPrice: decimal.NewFromInt(500),
			Color:     "Black",
			Size:      "One Size",
			Quantity:  1,
		},
	}
}

func TestBuildOrderSnapshotsLinesAndAddress(t *testing.T) {
	items := testItems()
	totals := pricing.ComputeTotals([]pricing.LineItem{
		{UnitPrice: decimal.NewFromInt(250), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(500), Quantity: 1},
	}, pricing.Destination{Country: "United States", State: "CA"}, decimal.Zero)

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ord := BuildOrder(42, "jordan@example.com", items, testAddress(), totals, "", "5TY05013RG002845M", now)

	assert.Equal(t, uint(42), ord.UserID)
	assert.Equal(t, "jordan@example.com", ord.Email)
	assert.Equal(t, "5TY05013RG002845M", ord.PaymentReceiptID)

	require.Len(t, ord.Items, 2)
	assert.Equal(t, "Silk Scarf", ord.Items[0].Name)
	assert.Equal(t, "Ivory", ord.Items[0].Color)
	assert.Equal(t, "500", ord.Items[0].LineTotal.String())
	assert.Equal(t, "500", ord.Items[1].LineTotal.String())

	assert.Equal(t, "Beverly Hills", ord.ShippingAddress.City)
	assert.Equal(t, "CA", ord.ShippingAddress.State)
	assert.Equal(t, "United States", ord.ShippingAddress.Country)
}

func TestBuildOrderTotalsForCaliforniaDestination(t *testing.T) {
	totals := pricing.ComputeTotals([]pricing.LineItem{
		{UnitPrice: decimal.NewFromInt(1000), Quantity: 1},
	}, pricing.Destination{Country: "United States", State: "CA"}, decimal.Zero)

	ord := BuildOrder(1, "a@b.com", []cart.CartItemResponse{
		{ProductID: 1, Name: "Watch", UnitPrice: decimal.NewFromInt(1000), Quantity: 1},
	}, testAddress(), totals, "", "RCPT-1", time.Now().UTC())

	assert.Equal(t, "1000.00", ord.Subtotal.StringFixed(2))
	assert.Equal(t, "50.00", ord.Shipping.StringFixed(2))
	assert.Equal(t, "87.50", ord.Tax.StringFixed(2))
	assert.Equal(t, "1137.50", ord.Total.StringFixed(2))
}

func TestBuildOrderCarriesCouponAndDiscount(t *testing.T) {
	discount := decimal.NewFromInt(100)
	totals := pricing.ComputeTotals([]pricing.LineItem{
		{UnitPrice: decimal.NewFromInt(1000), Quantity: 1},
	}, pricing.Destination{Country: "United States", State: "CA"}, discount)

	ord := BuildOrder(1, "a@b.com", []cart.CartItemResponse{
		{ProductID: 1, Name: "Watch", UnitPrice: decimal.NewFromInt(1000), Quantity: 1},
	}, testAddress(), totals, "VIP10", "RCPT-2", time.Now().UTC())

	assert.Equal(t, "VIP10", ord.CouponCode)
	assert.Equal(t, "100.00", ord.Discount.StringFixed(2))
	assert.Equal(t, "1037.50", ord.Total.StringFixed(2))
}

func TestBuildOrderTotalIdentity(t *testing.T) {
	totals := pricing.ComputeTotals([]pricing.LineItem{
		{UnitPrice: decimal.RequireFromString("199.99"), Quantity: 3},
	}, pricing.Destination{Country: "Japan"}, decimal.NewFromInt(25))

	ord := BuildOrder(1, "a@b.com", []cart.CartItemResponse{
		{ProductID: 1, Name: "Belt", UnitPrice: decimal.RequireFromString("199.99"), Quantity: 3},
	}, testAddress(), totals, "", "RCPT-3", time.Now().UTC())

	sum := ord.Subtotal.Add(ord.Shipping).Add(ord.Tax).Sub(ord.Discount)
	assert.True(t, sum.Equal(ord.Total), "subtotal + shipping + tax - discount = total")
	// Non-US destination carries no tax.
	assert.True(t, ord.Tax.IsZero())
}
