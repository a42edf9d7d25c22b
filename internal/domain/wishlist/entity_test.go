package wishlist

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWishlistItemDeletesForReal(t *testing.T) {
	// A soft-delete tombstone would keep occupying idx_wishlist_product and
	// block saving a removed product again.
	_, hasTombstone := reflect.TypeOf(WishlistItem{}).FieldByName("DeletedAt")

	assert.False(t, hasTombstone)
}
