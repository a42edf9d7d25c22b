package cart

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartItemKey(t *testing.T) {
	i := CartItem{ProductID: 7, Color: "Ivory", Size: "S"}

	assert.Equal(t, VariantKey{ProductID: 7, Color: "Ivory", Size: "S"}, i.Key())
}

func TestCartItemDeletesForReal(t *testing.T) {
	// A soft-delete tombstone would keep occupying idx_cart_variant and make
	// re-adding a removed variant fail the unique constraint.
	_, hasTombstone := reflect.TypeOf(CartItem{}).FieldByName("DeletedAt")

	assert.False(t, hasTombstone)
}
