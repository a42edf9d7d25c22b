// internal/domain/user/admin_service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/luxury-storefront/internal/config"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents admin user listing query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // admin, user, all
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// UserListResponse represents paginated admin user listing
type UserListResponse struct {
	Users      []UserWithStats `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// UserWithStats pairs a user with lifetime order aggregates
type UserWithStats struct {
	User        User            `json:"user"`
	OrderCount  int64           `json:"order_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	LastOrderAt *time.Time      `json:"last_order_at"`
}

// UserStatusUpdateRequest toggles a user's active flag
type UserStatusUpdateRequest struct {
	IsActive bool `json:"is_active"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&User{})

	if req.Search != "" {
		pattern := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	switch req.Role {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "user":
		query = query.Where("is_admin = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	sortBy := req.SortBy
	switch sortBy {
	case "created_at", "email", "last_login_at":
	default:
		sortBy = "created_at"
	}
	orderClause := sortBy
	if req.SortOrder != "asc" {
		orderClause += " DESC"
	}

	var users []User
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(orderClause).Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	usersWithStats := make([]UserWithStats, 0, len(users))
	for _, u := range users {
		stats := s.orderStats(u.ID)
		stats.User = u
		usersWithStats = append(usersWithStats, stats)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &UserListResponse{
		Users:      usersWithStats,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID with order aggregates
func (s *AdminService) GetUser(userID uint) (*UserWithStats, error) {
	var u User
	if err := s.db.Preload("Addresses").First(&u, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	stats := s.orderStats(userID)
	stats.User = u

	return &stats, nil
}

// UpdateUserStatus activates or deactivates a user account. Deactivated
// users fail the login check but keep their order history.
func (s *AdminService) UpdateUserStatus(userID uint, req *UserStatusUpdateRequest) error {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	if err := s.db.Model(&u).Update("is_active", req.IsActive).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

// orderStats aggregates the user's completed orders. Errors degrade to zero
// values rather than failing the listing.
func (s *AdminService) orderStats(userID uint) UserWithStats {
	stats := UserWithStats{TotalSpent: decimal.Zero}

	type row struct {
		Count int64
		Total decimal.Decimal
		Last  *time.Time
	}
	var r row
	err := s.db.Table("orders").
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, MAX(created_at) AS last").
		Where("user_id = ? AND deleted_at IS NULL AND status <> ?", userID, "cancelled").
		Scan(&r).Error
	if err != nil {
		return stats
	}

	stats.OrderCount = r.Count
	stats.TotalSpent = r.Total
	stats.LastOrderAt = r.Last

	return stats
}
