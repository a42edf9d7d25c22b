// internal/domain/pricing/tables.go
package pricing

import "github.com/shopspring/decimal"

// CountryUnitedStates is the only country with domestic sales tax.
const CountryUnitedStates = "United States"

// stateTaxRates maps US state codes to their sales tax rate. States missing
// from the table fall back to defaultUSTaxRate.
var stateTaxRates = map[string]decimal.Decimal{
	"CA": decimal.NewFromFloat(0.0875),
	"NY": decimal.NewFromFloat(0.08875),
	"TX": decimal.NewFromFloat(0.0825),
	"FL": decimal.NewFromFloat(0.07),
	"IL": decimal.NewFromFloat(0.0925),
	"PA": decimal.NewFromFloat(0.06),
	"OH": decimal.NewFromFloat(0.0725),
	"GA": decimal.NewFromFloat(0.07),
	"NC": decimal.NewFromFloat(0.0675),
	"NJ": decimal.NewFromFloat(0.06625),
}

var defaultUSTaxRate = decimal.NewFromFloat(0.08)

// shippingRates is a flat per-country fee in USD. Shipping does not depend on
// weight, item count or subtotal.
var shippingRates = map[string]decimal.Decimal{
	"United States":  decimal.NewFromInt(50),
	"Canada":         decimal.NewFromInt(50),
	"United Kingdom": decimal.NewFromInt(50),
	"France":         decimal.NewFromInt(50),
	"Germany":        decimal.NewFromInt(50),
	"Italy":          decimal.NewFromInt(50),
	"Spain":          decimal.NewFromInt(50),
	"Japan":          decimal.NewFromInt(50),
	"Australia":      decimal.NewFromInt(50),
	"China":          decimal.NewFromInt(50),
	"South Korea":    decimal.NewFromInt(50),
	"Singapore":      decimal.NewFromInt(50),
	"Hong Kong":      decimal.NewFromInt(50),
	"India":          decimal.NewFromInt(50),
	"Indonesia":      decimal.NewFromInt(50),
	"Thailand":       decimal.NewFromInt(30),
	"Malaysia":       decimal.NewFromInt(30),
	"Philippines":    decimal.NewFromInt(30),
	"Vietnam":        decimal.NewFromInt(30),
	"Myanmar":        decimal.NewFromInt(30),
	"Cambodia":       decimal.NewFromInt(30),
	"Laos":           decimal.NewFromInt(30),
	"Brunei":         decimal.NewFromInt(30),
	"East Timor":     decimal.NewFromInt(30),
	"Brazil":         decimal.NewFromInt(120),
	"Argentina":      decimal.NewFromInt(120),
	"Chile":          decimal.NewFromInt(120),
	"Colombia":       decimal.NewFromInt(120),
	"Peru":           decimal.NewFromInt(120),
	"Venezuela":      decimal.NewFromInt(120),
	"Ecuador":        decimal.NewFromInt(120),
	"Uruguay":        decimal.NewFromInt(120),
	"Bolivia":        decimal.NewFromInt(120),
	"Paraguay":       decimal.NewFromInt(120),
	"Guyana":         decimal.NewFromInt(120),
	"Suriname":       decimal.NewFromInt(120),
	"French Guiana":  decimal.NewFromInt(120),
	"South Africa":   decimal.NewFromInt(110),
	"Nigeria":        decimal.NewFromInt(110),
	"Egypt":          decimal.NewFromInt(110),
	"Kenya":          decimal.NewFromInt(110),
	"Ghana":          decimal.NewFromInt(110),
	"Morocco":        decimal.NewFromInt(110),
	"Algeria":        decimal.NewFromInt(110),
	"Ethiopia":       decimal.NewFromInt(110),
	"Tanzania":       decimal.NewFromInt(110),
	"Uganda":         decimal.NewFromInt(110),
	"Angola":         decimal.NewFromInt(110),
	"Ivory Coast":    decimal.NewFromInt(110),
	"Sudan":          decimal.NewFromInt(110),
}

var defaultShippingFee = decimal.NewFromInt(60)

// TaxRate returns the sales tax rate for a destination. Non-US destinations
// are untaxed regardless of state; US destinations without a selected state
// are untaxed until the state is known.
func TaxRate(country, state string) decimal.Decimal {
	if country != CountryUnitedStates || state == "" {
		return decimal.Zero
	}
	if rate, ok := stateTaxRates[state]; ok {
		return rate
	}
	return defaultUSTaxRate
}

// ShippingFee returns the flat shipping fee for a destination country.
func ShippingFee(country string) decimal.Decimal {
	if fee, ok := shippingRates[country]; ok {
		return fee
	}
	return defaultShippingFee
}
