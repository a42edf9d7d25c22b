// internal/domain/pricing/engine_test.go
package pricing

import (
	"testing"

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

func TestTaxRateNonUSAlwaysZero(t *testing.T) {
	countries := []string{"France", "Japan", "Brazil", "Nigeria", "Other", ""}
	states := []string{"", "CA", "NY", "anything"}

	for _, country := range countries {
		for _, state := range states {
			assert.True(t, TaxRate(country, state).IsZero(),
				"expected zero rate for %s/%s", country, state)
		}
	}
}

func TestTaxRateUS(t *testing.T) {
	assert.True(t, TaxRate(CountryUnitedStates, "").IsZero(), "no state selected")
	assert.True(t, d("0.0875").Equal(TaxRate(CountryUnitedStates, "CA")))
	assert.True(t, d("0.08875").Equal(TaxRate(CountryUnitedStates, "NY")))
	// Unlisted states fall back to the default rate.
	assert.True(t, d("0.08").Equal(TaxRate(CountryUnitedStates, "WA")))
}

func TestShippingFee(t *testing.T) {
	assert.True(t, d("50").Equal(ShippingFee("United States")))
	assert.True(t, d("30").Equal(ShippingFee("Thailand")))
	assert.True(t, d("120").Equal(ShippingFee("Brazil")))
	assert.True(t, d("110").Equal(ShippingFee("Kenya")))
	// Unlisted countries get the default fee.
	assert.True(t, d("60").Equal(ShippingFee("Atlantis")))
}

func TestShippingTable(t *testing.T) {
	fees := map[string]string{
		// $50 tier. Indonesia ships at 50 despite its neighbors at 30.
		"United States": "50",
		"Japan":         "50",
		"Singapore":     "50",
		"Indonesia":     "50",
		// $30 Southeast Asia tier.
		"Thailand": "30",
		"Vietnam":  "30",
		"Laos":     "30",
		// $120 South America tier.
		"Brazil":   "120",
		"Suriname": "120",
		// $110 Africa tier.
		"Nigeria": "110",
		"Morocco": "110",
	}

	for country, fee := range fees {
		assert.True(t, d(fee).Equal(ShippingFee(country)),
			"%s should ship at %s, got %s", country, fee, ShippingFee(country))
	}
}

func TestComputeTotalsDomesticScenario(t *testing.T) {
	// $1000 subtotal shipped to California: tax $87.50, shipping $50.
	items := []LineItem{
		{UnitPrice: d("250"), Quantity: 2},
		{UnitPrice: d("500"), Quantity: 1},
	}
	totals := ComputeTotals(items, Destination{Country: CountryUnitedStates, State: "CA"}, decimal.Zero)

	require.True(t, d("1000").Equal(totals.Subtotal), "subtotal = %s", totals.Subtotal)
	assert.True(t, d("87.50").Equal(totals.Tax), "tax = %s", totals.Tax)
	assert.True(t, d("50").Equal(totals.Shipping))
	assert.True(t, d("1137.50").Equal(totals.Total), "total = %s", totals.Total)
}

func TestComputeTotalsWithPercentDiscount(t *testing.T) {
	// 10% coupon on the $1000 CA scenario: discount $100, total $1037.50.
	items := []LineItem{{UnitPrice: d("1000"), Quantity: 1}}
	discount := d("1000").Mul(d("0.10"))

	totals := ComputeTotals(items, Destination{Country: CountryUnitedStates, State: "CA"}, discount)

	assert.True(t, d("100").Equal(totals.Discount))
	assert.True(t, d("1037.50").Equal(totals.Total), "total = %s", totals.Total)
}

func TestComputeTotalsIdentity(t *testing.T) {
	cases := []struct {
		name  string
		items []LineItem
		dest  Destination
		disc  decimal.Decimal
	}{
		{"empty cart", nil, Destination{Country: "France"}, decimal.Zero},
		{"single item", []LineItem{{UnitPrice: d("19.99"), Quantity: 3}}, Destination{Country: "Japan"}, d("5")},
		{"many items", []LineItem{
			{UnitPrice: d("120.50"), Quantity: 1},
			{UnitPrice: d("75.25"), Quantity: 4},
			{UnitPrice: d("999.99"), Quantity: 2},
		}, Destination{Country: CountryUnitedStates, State: "NJ"}, d("42.42")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeTotals(tc.items, tc.dest, tc.disc)
			want := totals.Subtotal.Add(totals.Shipping).Add(totals.Tax).Sub(totals.Discount)
			assert.True(t, want.Equal(totals.Total))
		})
	}
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	a := []LineItem{
		{UnitPrice: d("10"), Quantity: 1},
		{UnitPrice: d("20"), Quantity: 2},
		{UnitPrice: d("30"), Quantity: 3},
	}
	b := []LineItem{a[2], a[0], a[1]}

	ta := ComputeTotals(a, Destination{Country: "Germany"}, decimal.Zero)
	tb := ComputeTotals(b, Destination{Country: "Germany"}, decimal.Zero)
	assert.True(t, ta.Total.Equal(tb.Total))
}

func TestComputeTotalsNoZeroFloor(t *testing.T) {
	// A discount larger than the order is not clamped here; payment
	// initiation is responsible for refusing non-positive totals.
	items := []LineItem{{UnitPrice: d("10"), Quantity: 1}}
	totals := ComputeTotals(items, Destination{Country: "France"}, d("500"))
	assert.True(t, totals.Total.IsNegative())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "87.5", Round2(d("87.5001")).String())
	assert.Equal(t, "1137.5", Round2(d("1137.499")).String())
}
