// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/luxury-storefront/internal/config"
	"gorm.io/gorm"
)

// Rejection reasons returned by Validate, in gate order.
const (
	ReasonInvalidCode  = "invalid code"
	ReasonExpired      = "expired"
	ReasonBelowMinimum = "below minimum"
	ReasonGlobalLimit  = "usage limit reached"
	ReasonPerUserLimit = "per-customer limit reached"
)

// Service handles coupon validation and redemption
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// Validation is the outcome of validating a coupon against a subtotal.
type Validation struct {
	OK             bool            `json:"ok"`
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Reason         string          `json:"reason,omitempty"`
}

// NormalizeCode uppercases and trims a user-entered coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate runs the eligibility gates against an already-loaded coupon. Gates
// short-circuit in order: expiry, minimum subtotal, global cap, per-user cap.
// Existence is the caller's first gate. priorUses is the number of redemption
// records for (code, user).
func Evaluate(c *Coupon, priorUses int64, subtotal decimal.Decimal, now time.Time) Validation {
	if c.IsExpired(now) {
		return Validation{Code: c.Code, Reason: ReasonExpired}
	}

	if c.MinSubtotal != nil && subtotal.LessThan(*c.MinSubtotal) {
		return Validation{Code: c.Code, Reason: ReasonBelowMinimum}
	}

	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return Validation{Code: c.Code, Reason: ReasonGlobalLimit}
	}

	perUserLimit := c.PerUserLimit
	if perUserLimit <= 0 {
		perUserLimit = 1
	}
	if priorUses >= int64(perUserLimit) {
		return Validation{Code: c.Code, Reason: ReasonPerUserLimit}
	}

	return Validation{
		OK:             true,
		Code:           c.Code,
		DiscountAmount: c.DiscountFor(subtotal),
	}
}

// Validate checks a coupon code for a user and subtotal. It never consumes
// the coupon; consumption happens only at order finalization.
func (s *Service) Validate(code string, userID uint, subtotal decimal.Decimal) (*Validation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return &Validation{Code: normalized, Reason: ReasonInvalidCode}, nil
	}

	var c Coupon
	result := s.db.Where("code = ?", normalized).First(&c)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return &Validation{Code: normalized, Reason: ReasonInvalidCode}, nil
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", result.Error)
	}

	priorUses, err := s.countUses(s.db, normalized, userID)
	if err != nil {
		return nil, err
	}

	validation := Evaluate(&c, priorUses, subtotal, time.Now().UTC())
	return &validation, nil
}

// Redeem consumes one use of a coupon inside the caller's transaction:
// it re-checks the caps, increments the global counter and writes the
// per-user use record. Losing a race between two concurrent checkouts fails
// here rather than over-consuming.
func (s *Service) Redeem(tx *gorm.DB, code string, userID, orderID uint) error {
	normalized := NormalizeCode(code)

	var c Coupon
	if err := tx.Where("code = ?", normalized).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("coupon %s: %s", normalized, ReasonInvalidCode)
		}
		return fmt.Errorf("failed to look up coupon: %w", err)
	}

	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return fmt.Errorf("coupon %s: %s", normalized, ReasonGlobalLimit)
	}

	priorUses, err := s.countUses(tx, normalized, userID)
	if err != nil {
		return err
	}
	perUserLimit := c.PerUserLimit
	if perUserLimit <= 0 {
		perUserLimit = 1
	}
	if priorUses >= int64(perUserLimit) {
		return fmt.Errorf("coupon %s: %s", normalized, ReasonPerUserLimit)
	}

	if err := tx.Model(&Coupon{}).Where("code = ?", normalized).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	use := CouponUse{
		CouponCode: normalized,
		UserID:     userID,
		OrderID:    orderID,
		UsedAt:     time.Now().UTC(),
	}
	if err := tx.Create(&use).Error; err != nil {
		return fmt.Errorf("failed to record coupon use: %w", err)
	}

	return nil
}

// StoreApplied caches a successful validation for the user between "Apply"
// and checkout.
func (s *Service) StoreApplied(userID uint, validation *Validation) error {
	ctx := context.Background()
	key := fmt.Sprintf("applied_coupon:%d", userID)

	data, err := json.Marshal(validation)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, key, data, 24*time.Hour).Err()
}

// GetApplied returns the user's cached applied coupon, or nil.
func (s *Service) GetApplied(userID uint) *Validation {
	ctx := context.Background()
	key := fmt.Sprintf("applied_coupon:%d", userID)

	data, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var validation Validation
	if err := json.Unmarshal([]byte(data), &validation); err != nil {
		return nil
	}
	return &validation
}

// RemoveApplied drops the user's cached applied coupon.
func (s *Service) RemoveApplied(userID uint) error {
	ctx := context.Background()
	return s.redisClient.Del(ctx, fmt.Sprintf("applied_coupon:%d", userID)).Err()
}

// CreateCouponRequest represents admin coupon creation data
type CreateCouponRequest struct {
	Code          string           `json:"code" binding:"required"`
	Type          DiscountType     `json:"type" binding:"required,oneof=percent fixed"`
	DiscountValue decimal.Decimal  `json:"discount_value" binding:"required"`
	ExpiresAt     *time.Time       `json:"expires_at"`
	MinSubtotal   *decimal.Decimal `json:"min_subtotal"`
	MaxUses       *int             `json:"max_uses"`
	PerUserLimit  int              `json:"per_user_limit"`
}

// Create creates a new coupon (admin).
func (s *Service) Create(req *CreateCouponRequest) (*Coupon, error) {
	c := Coupon{
		Code:          NormalizeCode(req.Code),
		Type:          req.Type,
		DiscountValue: req.DiscountValue,
		ExpiresAt:     req.ExpiresAt,
		MinSubtotal:   req.MinSubtotal,
		MaxUses:       req.MaxUses,
		PerUserLimit:  req.PerUserLimit,
	}
	if c.PerUserLimit <= 0 {
		c.PerUserLimit = 1
	}

	if c.Type == DiscountTypePercent && c.DiscountValue.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("percent discount value must be a fraction between 0 and 1")
	}

	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &c, nil
}

// List returns all coupons (admin).
func (s *Service) List() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// Delete removes a coupon and its use records (admin).
func (s *Service) Delete(code string) error {
	normalized := NormalizeCode(code)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coupon_code = ?", normalized).Delete(&CouponUse{}).Error; err != nil {
			return err
		}
		result := tx.Where("code = ?", normalized).Delete(&Coupon{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("coupon not found")
		}
		return nil
	})
}

func (s *Service) countUses(db *gorm.DB, code string, userID uint) (int64, error) {
	var count int64
	err := db.Model(&CouponUse{}).
		Where("coupon_code = ? AND user_id = ?", code, userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon uses: %w", err)
	}
	return count, nil
}
