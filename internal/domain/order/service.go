// internal/domain/order/service.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/luxury-storefront/internal/config"
	"gorm.io/gorm"
)

// Service handles order retrieval and fulfillment updates. Orders are created
// by checkout finalization, never through this service directly.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    Status `form:"status"`
	SortOrder string `form:"sort_order,default=desc"`
}

// ListResponse represents orders with pagination
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// UpdateStatusRequest represents a fulfillment status change
type UpdateStatusRequest struct {
	Status         Status `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// ListUserOrders returns a user's orders, newest first
func (s *Service) ListUserOrders(userID uint, req *ListRequest) (*ListResponse, error) {
	return s.list(s.db.Where("user_id = ?", userID), req)
}

// ListAllOrders returns orders across all users for the admin dashboard
func (s *Service) ListAllOrders(req *ListRequest) (*ListResponse, error) {
	return s.list(s.db, req)
}

// GetOrder retrieves an order scoped to its owner
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var ord Order
	result := s.db.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &ord, nil
}

// GetByID retrieves an order without an ownership check, for admin use
func (s *Service) GetByID(orderID uint) (*Order, error) {
	var ord Order
	result := s.db.Preload("Items").First(&ord, orderID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &ord, nil
}

// GetByReceiptID finds the order recorded for a payment capture, if any
func (s *Service) GetByReceiptID(receiptID string) (*Order, error) {
	var ord Order
	result := s.db.Preload("Items").
		Where("payment_receipt_id = ?", receiptID).
		First(&ord)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up order by receipt: %w", result.Error)
	}
	return &ord, nil
}

// UpdateStatus moves an order through fulfillment and stamps the transition
func (s *Service) UpdateStatus(orderID uint, req *UpdateStatusRequest) (*Order, error) {
	if !ValidStatus(req.Status) {
		return nil, fmt.Errorf("invalid order status: %s", req.Status)
	}

	ord, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": req.Status}
	now := time.Now().UTC()

	switch req.Status {
	case StatusShipped:
		updates["shipped_at"] = now
		if req.TrackingNumber != "" {
			updates["tracking_number"] = req.TrackingNumber
		}
	case StatusDelivered:
		updates["delivered_at"] = now
	}

	if err := s.db.Model(ord).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return s.GetByID(orderID)
}

// CancelOrder cancels an order on the owner's behalf while it is still
// processing
func (s *Service) CancelOrder(userID, orderID uint) (*Order, error) {
	ord, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if !ord.CanBeCancelled() {
		return nil, fmt.Errorf("order can no longer be cancelled")
	}

	if err := s.db.Model(ord).Update("status", StatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	return s.GetOrder(userID, orderID)
}

func (s *Service) list(query *gorm.DB, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	if req.Status != "" {
		if !ValidStatus(req.Status) {
			return nil, fmt.Errorf("invalid order status: %s", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Model(&Order{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	direction := "DESC"
	if req.SortOrder == "asc" {
		direction = "ASC"
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").
		Order("created_at " + direction).
		Offset(offset).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}
