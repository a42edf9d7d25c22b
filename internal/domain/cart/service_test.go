// internal/domain/cart/service_test.go
package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(productID uint, color, size string, qty int, price string) SessionCartItem {
	p, err := decimal.NewFromString(price)
	if err != nil {
		panic(err)
	}
	return SessionCartItem{
		ProductID: productID,
		Color:     color,
		Size:      size,
		Quantity:  qty,
		UnitPrice: p,
	}
}

func TestUpsertSessionItemIncrementsSameVariant(t *testing.T) {
	items := []SessionCartItem{item(1, "Black", "M", 1, "100")}

	items = upsertSessionItem(items, item(1, "Black", "M", 2, "100"))

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestUpsertSessionItemDistinctVariantsAreSeparateLines(t *testing.T) {
	items := []SessionCartItem{item(1, "Black", "M", 1, "100")}

	// Same product, different color and size: two new lines.
	items = upsertSessionItem(items, item(1, "White", "M", 1, "100"))
	items = upsertSessionItem(items, item(1, "Black", "L", 1, "100"))

	assert.Len(t, items, 3)
}

func TestUpsertSessionItemRefreshesPrice(t *testing.T) {
	items := []SessionCartItem{item(1, "Black", "M", 1, "100")}

	items = upsertSessionItem(items, item(1, "Black", "M", 1, "120"))

	require.Len(t, items, 1)
	assert.Equal(t, "120", items[0].UnitPrice.String())
}

func TestApplySessionDeltaRemovesAtZero(t *testing.T) {
	key := VariantKey{ProductID: 1, Color: "Black", Size: "M"}
	items := []SessionCartItem{item(1, "Black", "M", 1, "100")}

	items, found := applySessionDelta(items, key, -1)

	assert.True(t, found)
	assert.Empty(t, items, "quantity dropping to zero removes the line")
}

func TestApplySessionDeltaRemovesBelowZero(t *testing.T) {
	key := VariantKey{ProductID: 1, Color: "Black", Size: "M"}
	items := []SessionCartItem{item(1, "Black", "M", 2, "100")}

	items, found := applySessionDelta(items, key, -5)

	assert.True(t, found)
	assert.Empty(t, items)
}

func TestApplySessionDeltaIncrements(t *testing.T) {
	key := VariantKey{ProductID: 1, Color: "Black", Size: "M"}
	items := []SessionCartItem{item(1, "Black", "M", 2, "100")}

	items, found := applySessionDelta(items, key, 3)

	assert.True(t, found)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestApplySessionDeltaUnknownKey(t *testing.T) {
	key := VariantKey{ProductID: 99, Color: "Red", Size: "S"}
	items := []SessionCartItem{item(1, "Black", "M", 2, "100")}

	_, found := applySessionDelta(items, key, 1)

	assert.False(t, found)
}

func TestRemovedVariantCanBeAddedAgain(t *testing.T) {
	key := VariantKey{ProductID: 1, Color: "Black", Size: "M"}
	items := []SessionCartItem{item(1, "Black", "M", 2, "100")}

	items = removeSessionItem(items, key)
	require.Empty(t, items)

	items = upsertSessionItem(items, item(1, "Black", "M", 1, "100"))

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestRemoveSessionItem(t *testing.T) {
	items := []SessionCartItem{
		item(1, "Black", "M", 2, "100"),
		item(2, "", "One Size", 1, "250"),
	}

	items = removeSessionItem(items, VariantKey{ProductID: 1, Color: "Black", Size: "M"})

	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].ProductID)
}

func TestMergeQuantitiesIsAdditive(t *testing.T) {
	key := VariantKey{ProductID: 1, Color: "Black", Size: "M"}
	server := map[VariantKey]int{key: 3}
	guest := []SessionCartItem{item(1, "Black", "M", 2, "100")}

	merged := MergeQuantities(server, guest)

	assert.Equal(t, 5, merged[key], "local 2 + server 3 = 5")
}

func TestMergeQuantitiesNewVariant(t *testing.T) {
	server := map[VariantKey]int{
		{ProductID: 1, Color: "Black", Size: "M"}: 1,
	}
	guest := []SessionCartItem{item(2, "White", "S", 4, "80")}

	merged := MergeQuantities(server, guest)

	assert.Len(t, merged, 2)
	assert.Equal(t, 4, merged[VariantKey{ProductID: 2, Color: "White", Size: "S"}])
}

func TestMergeQuantitiesEmptyGuestIsNoop(t *testing.T) {
	key := VariantKey{ProductID: 1, Color: "Black", Size: "M"}
	server := map[VariantKey]int{key: 3}

	merged := MergeQuantities(server, nil)

	assert.Equal(t, server, merged, "merging an empty (already cleared) cart changes nothing")
}

func TestCalculateTotals(t *testing.T) {
	items := []CartItemResponse{
		{UnitPrice: decimal.NewFromInt(250), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(500), Quantity: 1},
	}

	totals := calculateTotals(items)

	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.True(t, decimal.NewFromInt(1000).Equal(totals.Subtotal))
}
