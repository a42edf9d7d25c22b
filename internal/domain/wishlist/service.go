package wishlist

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/luxury-storefront/internal/config"
	"github.com/your-org/luxury-storefront/internal/domain/cart"
	"github.com/your-org/luxury-storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	cartService *cart.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		cartService: cart.NewService(db, redisClient, cfg),
	}
}

// WishlistItemResponse represents a wishlist item with product details
type WishlistItemResponse struct {
	ID          uint             `json:"id"`
	ProductID   uint             `json:"product_id"`
	Product     *product.Product `json:"product,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
	IsAvailable bool             `json:"is_available"`
}

// WishlistResponse represents a wishlist with its items
type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// MoveToCartRequest moves a saved product into the cart as a concrete variant
type MoveToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// GetWishlist retrieves the wishlist for a user, newest first
func (s *Service) GetWishlist(userID uint) (*WishlistResponse, error) {
	var items []WishlistItem
	err := s.db.Where("user_id = ?", userID).Order("added_at DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	responses := make([]WishlistItemResponse, len(items))
	for i, item := range items {
		responses[i] = WishlistItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			AddedAt:   item.AddedAt,
		}
	}

	s.loadProductDetails(responses)

	return &WishlistResponse{
		Items: responses,
		Count: len(responses),
	}, nil
}

// AddToWishlist adds a product to the wishlist
func (s *Service) AddToWishlist(userID uint, req *AddToWishlistRequest) (*WishlistItemResponse, error) {
	var prod product.Product
	result := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod)
	if result.Error != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	var existingItem WishlistItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existingItem).Error
	if err == nil {
		return nil, fmt.Errorf("item already exists in wishlist")
	}

	wishlistItem := WishlistItem{
		UserID:    userID,
		ProductID: req.ProductID,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&wishlistItem).Error; err != nil {
		return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
	}

	return &WishlistItemResponse{
		ID:          wishlistItem.ID,
		ProductID:   wishlistItem.ProductID,
		Product:     &prod,
		AddedAt:     wishlistItem.AddedAt,
		IsAvailable: true,
	}, nil
}

// RemoveFromWishlist removes a product from the wishlist
func (s *Service) RemoveFromWishlist(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item not found in wishlist")
	}
	return nil
}

// ClearWishlist removes all items from the wishlist
func (s *Service) ClearWishlist(userID uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&WishlistItem{}).Error
}

// GetWishlistCount returns the number of items in the wishlist
func (s *Service) GetWishlistCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// IsInWishlist checks if a product is in the user's wishlist
func (s *Service) IsInWishlist(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// MoveToCart adds the chosen variant to the cart and removes the product from
// the wishlist.
func (s *Service) MoveToCart(userID uint, req *MoveToCartRequest) error {
	inWishlist, err := s.IsInWishlist(userID, req.ProductID)
	if err != nil {
		return err
	}
	if !inWishlist {
		return fmt.Errorf("item not found in wishlist")
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	_, err = s.cartService.AddItem(&userID, "", &cart.AddToCartRequest{
		ProductID: req.ProductID,
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  qty,
	})
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.RemoveFromWishlist(userID, req.ProductID)
}

func (s *Service) loadProductDetails(items []WishlistItemResponse) {
	for i := range items {
		var prod product.Product
		err := s.db.Where("id = ?", items[i].ProductID).First(&prod).Error
		if err != nil {
			items[i].IsAvailable = false
			continue
		}
		items[i].Product = &prod
		items[i].IsAvailable = prod.IsActive
	}
}
