// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/luxury-storefront/internal/config"
	"github.com/your-org/luxury-storefront/internal/domain/cart"
	"github.com/your-org/luxury-storefront/internal/domain/coupon"
	"github.com/your-org/luxury-storefront/internal/domain/order"
	"github.com/your-org/luxury-storefront/internal/domain/payment"
	"github.com/your-org/luxury-storefront/internal/domain/pricing"
	"github.com/your-org/luxury-storefront/internal/domain/user"
	"gorm.io/gorm"
)

const pendingSessionTTL = time.Hour

// Service orchestrates checkout: it prices the cart, initiates payment with
// the provider and finalizes the order once payment is captured.
type Service struct {
	db            *gorm.DB
	redisClient   *redis.Client
	config        *config.Config
	cartService   *cart.Service
	couponService *coupon.Service
	orderService  *order.Service
	addresses     *user.AddressService
	paypal        *payment.PayPalService
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:            db,
		redisClient:   redisClient,
		config:        cfg,
		cartService:   cart.NewService(db, redisClient, cfg),
		couponService: coupon.NewService(db, redisClient, cfg),
		orderService:  order.NewService(db, cfg),
		addresses:     user.NewAddressService(db, cfg),
		paypal:        payment.NewPayPalService(cfg),
	}
}

// Summary is the priced view of the cart against a shipping destination
type Summary struct {
	Cart            *cart.CartResponse `json:"cart"`
	ShippingAddress *user.Address      `json:"shipping_address,omitempty"`
	AppliedCoupon   *coupon.Validation `json:"applied_coupon,omitempty"`
	Pricing         pricing.Totals     `json:"pricing"`
}

// InitiatePaymentRequest starts payment against a saved address
type InitiatePaymentRequest struct {
	AddressID  uint   `json:"address_id" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// InitiatePaymentResponse carries the provider order id the client approves
type InitiatePaymentResponse struct {
	ProviderOrderID string         `json:"provider_order_id"`
	Pricing         pricing.Totals `json:"pricing"`
}

// FinalizeRequest completes checkout after the customer approved payment
type FinalizeRequest struct {
	ProviderOrderID string `json:"provider_order_id" binding:"required"`
}

// pendingSession snapshots everything needed to build the order at capture
// time. It lives in Redis keyed by the provider order id so the capture
// callback does not have to trust client-supplied amounts.
type pendingSession struct {
	UserID     uint                    `json:"user_id"`
	AddressID  uint                    `json:"address_id"`
	CouponCode string                  `json:"coupon_code,omitempty"`
	Items      []cart.CartItemResponse `json:"items"`
	Totals     pricing.Totals          `json:"totals"`
	CreatedAt  time.Time               `json:"created_at"`
}

// GetSummary prices the current cart against the given address. With no
// address id the user's default address is used when available.
func (s *Service) GetSummary(userID uint, addressID *uint) (*Summary, error) {
	cartResponse, err := s.cartService.GetCart(&userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	summary := &Summary{Cart: cartResponse}

	if addressID != nil {
		summary.ShippingAddress, err = s.addresses.GetAddress(userID, *addressID)
		if err != nil {
			return nil, err
		}
	} else {
		// Best effort: an account without addresses still gets a summary,
		// just without shipping and tax.
		summary.ShippingAddress, _ = s.addresses.GetDefaultAddress(userID)
	}

	summary.AppliedCoupon = s.revalidateApplied(userID, cartResponse)
	summary.Pricing = s.price(cartResponse, summary.ShippingAddress, summary.AppliedCoupon)

	return summary, nil
}

// ApplyCoupon validates a code against the current cart and stores it for the
// rest of the checkout when it passes.
func (s *Service) ApplyCoupon(userID uint, code string) (*coupon.Validation, error) {
	cartResponse, err := s.cartService.GetCart(&userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	validation, err := s.couponService.Validate(code, userID, cartResponse.Totals.Subtotal)
	if err != nil {
		return nil, err
	}

	if validation.OK {
		if err := s.couponService.StoreApplied(userID, validation); err != nil {
			return nil, fmt.Errorf("failed to store applied coupon: %w", err)
		}
	}

	return validation, nil
}

// RemoveCoupon drops the stored coupon from the checkout
func (s *Service) RemoveCoupon(userID uint) error {
	return s.couponService.RemoveApplied(userID)
}

// InitiatePayment validates the destination, prices the cart and creates the
// provider-side payment order. Orders that price to zero or below are refused
// before any provider call.
func (s *Service) InitiatePayment(ctx context.Context, userID uint, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	cartResponse, err := s.cartService.GetCart(&userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if len(cartResponse.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	address, err := s.addresses.GetAddress(userID, req.AddressID)
	if err != nil {
		return nil, err
	}
	if err := user.ValidateForCheckout(address); err != nil {
		return nil, err
	}

	var applied *coupon.Validation
	if req.CouponCode != "" {
		applied, err = s.couponService.Validate(req.CouponCode, userID, cartResponse.Totals.Subtotal)
		if err != nil {
			return nil, err
		}
		if !applied.OK {
			return nil, fmt.Errorf("coupon rejected: %s", applied.Reason)
		}
	} else {
		applied = s.revalidateApplied(userID, cartResponse)
	}

	totals := s.price(cartResponse, address, applied)
	if !totals.Total.IsPositive() {
		return nil, fmt.Errorf("order total must be greater than zero")
	}

	providerOrder, err := s.paypal.CreateOrder(ctx, "USD", payment.OrderBreakdown{
		ItemTotal: pricing.Round2(totals.Subtotal),
		Shipping:  pricing.Round2(totals.Shipping),
		TaxTotal:  pricing.Round2(totals.Tax),
		Discount:  pricing.Round2(totals.Discount),
	})
	if err != nil {
		return nil, err
	}

	session := pendingSession{
		UserID:    userID,
		AddressID: req.AddressID,
		Items:     cartResponse.Items,
		Totals:    totals,
		CreatedAt: time.Now().UTC(),
	}
	if applied != nil && applied.OK {
		session.CouponCode = applied.Code
	}
	if err := s.savePendingSession(providerOrder.ID, &session); err != nil {
		return nil, err
	}

	return &InitiatePaymentResponse{
		ProviderOrderID: providerOrder.ID,
		Pricing:         totals,
	}, nil
}

// Finalize captures the approved payment and records the order. The whole
// database side runs in one transaction keyed by the capture receipt id, so a
// repeated capture callback returns the already recorded order instead of
// creating a second one.
func (s *Service) Finalize(ctx context.Context, userID uint, req *FinalizeRequest) (*order.Order, error) {
	session, err := s.loadPendingSession(req.ProviderOrderID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("payment session does not belong to this user")
	}

	capture, err := s.paypal.CaptureOrder(ctx, req.ProviderOrderID)
	if err != nil {
		return nil, err
	}

	ord, err := s.finalizeWithReceipt(userID, session, capture.ReceiptID)
	if err != nil {
		return nil, err
	}

	// Post-commit cleanup. Failures here leave stale keys that expire on
	// their own, never a broken order.
	s.couponService.RemoveApplied(userID)
	s.deletePendingSession(req.ProviderOrderID)

	return ord, nil
}

// finalizeWithReceipt performs the order write. Coupon redemption, the order
// snapshot and the cart clear commit together or not at all.
func (s *Service) finalizeWithReceipt(userID uint, session *pendingSession, receiptID string) (*order.Order, error) {
	var account user.User
	if err := s.db.First(&account, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	address, err := s.addresses.GetAddress(userID, session.AddressID)
	if err != nil {
		return nil, err
	}

	existing, err := s.orderService.GetByReceiptID(receiptID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	ord := BuildOrder(userID, account.Email, session.Items, address, session.Totals, session.CouponCode, receiptID, now)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(ord).Error; err != nil {
		tx.Rollback()
		// A concurrent finalization for the same receipt may have won the
		// race on the unique index. Return its order.
		if winner, lookupErr := s.orderService.GetByReceiptID(receiptID); lookupErr == nil && winner != nil {
			return winner, nil
		}
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	if err := tx.Model(ord).Update("order_number", order.NewOrderNumber(now, ord.ID)).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to assign order number: %w", err)
	}

	if session.CouponCode != "" {
		if err := s.couponService.Redeem(tx, session.CouponCode, userID, ord.ID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to redeem coupon: %w", err)
		}
	}

	if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	ord.OrderNumber = order.NewOrderNumber(now, ord.ID)
	return ord, nil
}

// BuildOrder assembles the immutable order snapshot from the priced cart
func BuildOrder(userID uint, email string, items []cart.CartItemResponse, address *user.Address, totals pricing.Totals, couponCode, receiptID string, now time.Time) *order.Order {
	orderItems := make([]order.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = order.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Color:     item.Color,
			Size:      item.Size,
			Image:     item.Image,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			CreatedAt: now,
		}
	}

	return &order.Order{
		OrderNumber:      "PENDING-" + receiptID,
		UserID:           userID,
		Email:            email,
		Status:           order.StatusProcessing,
		Subtotal:         pricing.Round2(totals.Subtotal),
		Shipping:         pricing.Round2(totals.Shipping),
		Tax:              pricing.Round2(totals.Tax),
		Discount:         pricing.Round2(totals.Discount),
		Total:            pricing.Round2(totals.Total),
		Currency:         "USD",
		CouponCode:       couponCode,
		PaymentReceiptID: receiptID,
		ShippingAddress: order.ShippingAddress{
			Name:    address.Name,
			Phone:   address.Phone,
			Street:  address.Street,
			City:    address.City,
			State:   address.State,
			Zip:     address.Zip,
			Country: address.Country,
		},
		Items: orderItems,
	}
}

// price runs the pricing engine over the cart for the given destination
func (s *Service) price(cartResponse *cart.CartResponse, address *user.Address, applied *coupon.Validation) pricing.Totals {
	items := make([]pricing.LineItem, len(cartResponse.Items))
	for i, item := range cartResponse.Items {
		items[i] = pricing.LineItem{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}

	var dest pricing.Destination
	if address != nil {
		dest = pricing.Destination{Country: address.Country, State: address.State}
	}

	discount := decimal.Zero
	if applied != nil && applied.OK {
		discount = pricing.Round2(applied.DiscountAmount)
	}

	return pricing.ComputeTotals(items, dest, discount)
}

// revalidateApplied re-runs the stored coupon against the current subtotal,
// dropping it when it no longer passes.
func (s *Service) revalidateApplied(userID uint, cartResponse *cart.CartResponse) *coupon.Validation {
	stored := s.couponService.GetApplied(userID)
	if stored == nil {
		return nil
	}

	validation, err := s.couponService.Validate(stored.Code, userID, cartResponse.Totals.Subtotal)
	if err != nil || !validation.OK {
		s.couponService.RemoveApplied(userID)
		return nil
	}

	s.couponService.StoreApplied(userID, validation)
	return validation
}

// Pending session persistence

func (s *Service) savePendingSession(providerOrderID string, session *pendingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal payment session: %w", err)
	}

	ctx := context.Background()
	err = s.redisClient.Set(ctx, pendingSessionKey(providerOrderID), data, pendingSessionTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	return nil
}

func (s *Service) loadPendingSession(providerOrderID string) (*pendingSession, error) {
	ctx := context.Background()
	data, err := s.redisClient.Get(ctx, pendingSessionKey(providerOrderID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("payment session not found or expired")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment session: %w", err)
	}

	var session pendingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment session: %w", err)
	}
	return &session, nil
}

func (s *Service) deletePendingSession(providerOrderID string) {
	ctx := context.Background()
	s.redisClient.Del(ctx, pendingSessionKey(providerOrderID))
}

func pendingSessionKey(providerOrderID string) string {
	return fmt.Sprintf("checkout:pending:%s", providerOrderID)
}
