// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/luxury-storefront/internal/config"
	"github.com/your-org/luxury-storefront/internal/domain/product"
	"gorm.io/gorm"
)

const sessionCartTTL = 24 * time.Hour

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// CartItemResponse represents a cart line in API responses
type CartItemResponse struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartResponse represents a shopping cart with items and counters
type CartResponse struct {
	SessionID string             `json:"session_id,omitempty"`
	UserID    *uint              `json:"user_id,omitempty"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest represents a quantity delta for a cart line
type UpdateQuantityRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	Size      string `json:"size" binding:"required"`
	Delta     int    `json:"delta" binding:"required"`
}

// GetCart retrieves the cart for a user or guest session.
func (s *Service) GetCart(userID *uint, sessionID string) (*CartResponse, error) {
	var items []CartItemResponse

	if userID != nil {
		var dbItems []CartItem
		err := s.db.Where("user_id = ?", *userID).Order("created_at ASC").Find(&dbItems).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve cart: %w", err)
		}

		items = make([]CartItemResponse, len(dbItems))
		for i, item := range dbItems {
			items[i] = CartItemResponse{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Image:     item.Image,
				Color:     item.Color,
				Size:      item.Size,
				Quantity:  item.Quantity,
				AddedAt:   item.CreatedAt,
			}
		}
	} else {
		sessionCart, err := s.getSessionCart(sessionID)
		if err != nil {
			return nil, err
		}

		items = make([]CartItemResponse, len(sessionCart.Items))
		for i, item := range sessionCart.Items {
			items[i] = CartItemResponse{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Image:     item.Image,
				Color:     item.Color,
				Size:      item.Size,
				Quantity:  item.Quantity,
				AddedAt:   item.AddedAt,
			}
		}
	}

	return &CartResponse{
		SessionID: sessionID,
		UserID:    userID,
		Items:     items,
		Totals:    calculateTotals(items),
	}, nil
}

// AddItem upserts a cart line by variant key: when the key already exists the
// quantity is incremented, otherwise a new line is inserted.
func (s *Service) AddItem(userID *uint, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	size := req.Size
	if size == "" {
		size = "One Size"
	}
	if !prod.HasVariant(req.Color, size) {
		return nil, fmt.Errorf("variant %q/%q not offered for %s", req.Color, size, prod.Name)
	}

	key := VariantKey{ProductID: req.ProductID, Color: req.Color, Size: size}

	if userID != nil {
		if err := s.addToUserCart(*userID, key, &prod, qty); err != nil {
			return nil, err
		}
	} else {
		if err := s.addToSessionCart(sessionID, key, &prod, qty); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// UpdateQuantity applies a delta to a cart line. A resulting quantity of zero
// or below removes the line entirely.
func (s *Service) UpdateQuantity(userID *uint, sessionID string, req *UpdateQuantityRequest) (*CartResponse, error) {
	key := VariantKey{ProductID: req.ProductID, Color: req.Color, Size: req.Size}

	if userID != nil {
		if err := s.applyUserDelta(*userID, key, req.Delta); err != nil {
			return nil, err
		}
	} else {
		if err := s.applySessionDelta(sessionID, key, req.Delta); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// RemoveItem removes a cart line unconditionally.
func (s *Service) RemoveItem(userID *uint, sessionID string, key VariantKey) (*CartResponse, error) {
	if userID != nil {
		err := s.db.Where("user_id = ? AND product_id = ? AND color = ? AND size = ?",
			*userID, key.ProductID, key.Color, key.Size).Delete(&CartItem{}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to remove item: %w", err)
		}
	} else {
		sessionCart, err := s.getSessionCart(sessionID)
		if err != nil {
			return nil, err
		}
		sessionCart.Items = removeSessionItem(sessionCart.Items, key)
		sessionCart.UpdatedAt = time.Now().UTC()
		if err := s.saveSessionCart(sessionID, sessionCart); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// ClearCart removes every line from the cart.
func (s *Service) ClearCart(userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error
	}
	ctx := context.Background()
	return s.redisClient.Del(ctx, sessionCartKey(sessionID)).Err()
}

// ItemCount returns the total quantity across all lines.
func (s *Service) ItemCount(userID *uint, sessionID string) (int, error) {
	cartResponse, err := s.GetCart(userID, sessionID)
	if err != nil {
		return 0, nil // empty cart
	}
	return cartResponse.Totals.TotalQuantity, nil
}

// MergeGuestCartToUser reconciles a guest session cart into the signed-in
// user's persisted cart. Quantities are ADDED to any existing server-side
// quantity for the same variant key, then the session cart is deleted, which
// makes a repeated merge of the already-cleared session a no-op.
func (s *Service) MergeGuestCartToUser(userID uint, sessionID string) error {
	sessionCart, err := s.getSessionCart(sessionID)
	if err != nil || len(sessionCart.Items) == 0 {
		return nil // nothing to merge
	}

	var existing []CartItem
	if err := s.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load cart for merge: %w", err)
	}

	existingByKey := make(map[VariantKey]*CartItem, len(existing))
	for i := range existing {
		existingByKey[existing[i].Key()] = &existing[i]
	}

	merged := MergeQuantities(existingByKeyQuantities(existing), sessionCart.Items)

	for _, guestItem := range sessionCart.Items {
		key := guestItem.Key()
		if item, ok := existingByKey[key]; ok {
			item.Quantity = merged[key]
			if err := s.db.Save(item).Error; err != nil {
				return fmt.Errorf("failed to merge cart line: %w", err)
			}
		} else {
			newItem := CartItem{
				UserID:    userID,
				ProductID: guestItem.ProductID,
				Color:     guestItem.Color,
				Size:      guestItem.Size,
				Name:      guestItem.Name,
				UnitPrice: guestItem.UnitPrice,
				Image:     guestItem.Image,
				Quantity:  merged[key],
			}
			if err := s.db.Create(&newItem).Error; err != nil {
				return fmt.Errorf("failed to merge cart line: %w", err)
			}
		}
	}

	return s.ClearCart(nil, sessionID)
}

// MergeQuantities computes the post-merge quantity per variant key: server
// quantities plus guest quantities, never overwritten.
func MergeQuantities(server map[VariantKey]int, guest []SessionCartItem) map[VariantKey]int {
	merged := make(map[VariantKey]int, len(server)+len(guest))
	for key, qty := range server {
		merged[key] = qty
	}
	for _, item := range guest {
		merged[item.Key()] += item.Quantity
	}
	return merged
}

func existingByKeyQuantities(items []CartItem) map[VariantKey]int {
	out := make(map[VariantKey]int, len(items))
	for _, item := range items {
		out[item.Key()] = item.Quantity
	}
	return out
}

// User cart helpers

func (s *Service) addToUserCart(userID uint, key VariantKey, prod *product.Product, qty int) error {
	var existing CartItem
	result := s.db.Where("user_id = ? AND product_id = ? AND color = ? AND size = ?",
		userID, key.ProductID, key.Color, key.Size).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		newItem := CartItem{
			UserID:    userID,
			ProductID: key.ProductID,
			Color:     key.Color,
			Size:      key.Size,
			Name:      prod.Name,
			UnitPrice: prod.Price,
			Image:     prod.Image,
			Quantity:  qty,
		}
		return s.db.Create(&newItem).Error
	} else if result.Error != nil {
		return fmt.Errorf("failed to look up cart line: %w", result.Error)
	}

	existing.Quantity += qty
	existing.UnitPrice = prod.Price // refresh in case the price changed
	return s.db.Save(&existing).Error
}

func (s *Service) applyUserDelta(userID uint, key VariantKey, delta int) error {
	var existing CartItem
	result := s.db.Where("user_id = ? AND product_id = ? AND color = ? AND size = ?",
		userID, key.ProductID, key.Color, key.Size).First(&existing)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return fmt.Errorf("item not found in cart")
		}
		return fmt.Errorf("failed to look up cart line: %w", result.Error)
	}

	newQuantity := existing.Quantity + delta
	if newQuantity <= 0 {
		return s.db.Delete(&existing).Error
	}

	return s.db.Model(&existing).Update("quantity", newQuantity).Error
}

// Session cart helpers

func (s *Service) addToSessionCart(sessionID string, key VariantKey, prod *product.Product, qty int) error {
	sessionCart, err := s.getSessionCart(sessionID)
	if err != nil {
		return err
	}

	sessionCart.Items = upsertSessionItem(sessionCart.Items, SessionCartItem{
		ProductID: key.ProductID,
		Color:     key.Color,
		Size:      key.Size,
		Name:      prod.Name,
		UnitPrice: prod.Price,
		Image:     prod.Image,
		Quantity:  qty,
		AddedAt:   time.Now().UTC(),
	})
	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveSessionCart(sessionID, sessionCart)
}

func (s *Service) applySessionDelta(sessionID string, key VariantKey, delta int) error {
	sessionCart, err := s.getSessionCart(sessionID)
	if err != nil {
		return err
	}

	items, found := applySessionDelta(sessionCart.Items, key, delta)
	if !found {
		return fmt.Errorf("item not found in cart")
	}

	sessionCart.Items = items
	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveSessionCart(sessionID, sessionCart)
}

// upsertSessionItem adds the item's quantity to an existing line with the
// same variant key, or appends a new line.
func upsertSessionItem(items []SessionCartItem, item SessionCartItem) []SessionCartItem {
	for i := range items {
		if items[i].Key() == item.Key() {
			items[i].Quantity += item.Quantity
			items[i].UnitPrice = item.UnitPrice
			return items
		}
	}
	return append(items, item)
}

// applySessionDelta applies a quantity delta to the line with the given key,
// removing it when the result drops to zero or below.
func applySessionDelta(items []SessionCartItem, key VariantKey, delta int) ([]SessionCartItem, bool) {
	for i := range items {
		if items[i].Key() != key {
			continue
		}
		if items[i].Quantity+delta <= 0 {
			return append(items[:i], items[i+1:]...), true
		}
		items[i].Quantity += delta
		return items, true
	}
	return items, false
}

func removeSessionItem(items []SessionCartItem, key VariantKey) []SessionCartItem {
	for i := range items {
		if items[i].Key() == key {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func (s *Service) getSessionCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	ctx := context.Background()
	data, err := s.redisClient.Get(ctx, sessionCartKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: now.Add(sessionCartTTL),
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, err
	}
	return &sessionCart, nil
}

func (s *Service) saveSessionCart(sessionID string, sessionCart *SessionCart) error {
	ctx := context.Background()
	data, err := json.Marshal(sessionCart)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, sessionCartKey(sessionID), data, sessionCartTTL).Err()
}

func sessionCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func calculateTotals(items []CartItemResponse) CartTotals {
	totals := CartTotals{
		ItemCount: len(items),
		Subtotal:  decimal.Zero,
	}
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		totals.Subtotal = totals.Subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return totals
}
