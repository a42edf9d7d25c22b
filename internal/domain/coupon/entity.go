// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType determines how a coupon's value is applied.
type DiscountType string

const (
	// DiscountTypePercent treats DiscountValue as a fraction of the
	// subtotal (0.10 = 10% off).
	DiscountTypePercent DiscountType = "percent"
	// DiscountTypeFixed treats DiscountValue as a flat USD amount.
	DiscountTypeFixed DiscountType = "fixed"
)

// Coupon represents a discount code. Codes are stored uppercase and act as
// the primary key.
type Coupon struct {
	Code          string           `gorm:"primaryKey;size:50" json:"code"`
	Type          DiscountType     `gorm:"not null;size:20" json:"type"`
	DiscountValue decimal.Decimal  `gorm:"type:decimal(12,4);not null" json:"discount_value"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	MinSubtotal   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_subtotal,omitempty"`
	MaxUses       *int             `json:"max_uses,omitempty"` // nil = unlimited
	UsedCount     int              `gorm:"not null;default:0" json:"used_count"`
	PerUserLimit  int              `gorm:"not null;default:1" json:"per_user_limit"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CouponUse records one redemption of a coupon by a user on an order. The
// per-customer cap is enforced by counting these records.
type CouponUse struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CouponCode string    `gorm:"not null;index;size:50" json:"coupon_code"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	OrderID    uint      `gorm:"not null" json:"order_id"`
	UsedAt     time.Time `json:"used_at"`
}

// TableName overrides
func (Coupon) TableName() string    { return "coupons" }
func (CouponUse) TableName() string { return "coupon_uses" }

// IsExpired reports whether the coupon's expiry, if set, has passed.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// DiscountFor computes the dollar discount this coupon grants on a subtotal.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if c.Type == DiscountTypePercent {
		return subtotal.Mul(c.DiscountValue)
	}
	return c.DiscountValue
}
