// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariantKey identifies a distinct purchasable line in a cart: the same
// product in a different color or size is a separate line.
type VariantKey struct {
	ProductID uint   `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// CartItem represents one cart line for an authenticated user. Uniqueness is
// (user_id, product_id, color, size): adding the same variant again
// increments quantity instead of inserting a second row, and no row ever
// persists with quantity below 1. Rows delete for real, not via soft delete;
// a tombstone would keep occupying the variant index and block re-adding the
// same variant later.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_cart_variant" json:"user_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_variant" json:"product_id"`
	Color     string          `gorm:"size:100;uniqueIndex:idx_cart_variant" json:"color"`
	Size      string          `gorm:"size:100;uniqueIndex:idx_cart_variant" json:"size"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Image     string          `gorm:"size:500" json:"image"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Key returns the item's variant key.
func (i *CartItem) Key() VariantKey {
	return VariantKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

// SessionCart represents a guest cart stored in Redis.
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// SessionCartItem represents a guest cart line.
type SessionCartItem struct {
	ProductID uint            `json:"product_id"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// Key returns the item's variant key.
func (i *SessionCartItem) Key() VariantKey {
	return VariantKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

// CartTotals represents calculated cart counters. Pricing (tax, shipping,
// discount) lives in the pricing package; the cart only knows its subtotal.
type CartTotals struct {
	ItemCount     int             `json:"item_count"`     // distinct lines
	TotalQuantity int             `json:"total_quantity"` // sum of quantities
	Subtotal      decimal.Decimal `json:"subtotal"`
}
