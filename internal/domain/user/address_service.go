// internal/domain/user/address_service.go
package user

import (
	"fmt"

	"github.com/your-org/luxury-storefront/internal/config"
	"gorm.io/gorm"
)

// AddressService handles address business logic
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	Zip       string `json:"zip" binding:"required"`
	Country   string `json:"country" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

// UpdateAddressRequest represents address update data
type UpdateAddressRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
	Country *string `json:"country"`
}

// GetUserAddresses retrieves all addresses for a user, default first
func (s *AddressService) GetUserAddresses(userID uint) ([]Address, error) {
	var addresses []Address
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves a specific address for a user
func (s *AddressService) GetAddress(userID, addressID uint) (*Address, error) {
	var address Address
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("address not found")
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", result.Error)
	}
	return &address, nil
}

// GetDefaultAddress gets the user's default address
func (s *AddressService) GetDefaultAddress(userID uint) (*Address, error) {
	var address Address
	result := s.db.Where("user_id = ? AND is_default = ?", userID, true).First(&address)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no default address found")
		}
		return nil, fmt.Errorf("failed to retrieve default address: %w", result.Error)
	}
	return &address, nil
}

// CreateAddress creates a new address for a user. The user's first address
// becomes the default automatically.
func (s *AddressService) CreateAddress(userID uint, req *CreateAddressRequest) (*Address, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var count int64
	if err := tx.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to count addresses: %w", err)
	}

	isDefault := req.IsDefault || count == 0
	if isDefault {
		if err := tx.Model(&Address{}).Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to clear default flags: %w", err)
		}
	}

	address := Address{
		UserID:    userID,
		Name:      req.Name,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: isDefault,
	}

	if err := tx.Create(&address).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &address, nil
}

// UpdateAddress updates an existing address
func (s *AddressService) UpdateAddress(userID, addressID uint, req *UpdateAddressRequest) (*Address, error) {
	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Street != nil {
		updates["street"] = *req.Street
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Zip != nil {
		updates["zip"] = *req.Zip
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}

	if len(updates) > 0 {
		if err := s.db.Model(address).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update address: %w", err)
		}
	}

	return s.GetAddress(userID, addressID)
}

// DeleteAddress deletes an address
func (s *AddressService) DeleteAddress(userID, addressID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("address not found")
	}
	return nil
}

// SetDefaultAddress marks one address as default. Every address the user has
// is rewritten in the same transaction so exactly one ends up flagged.
func (s *AddressService) SetDefaultAddress(userID, addressID uint) error {
	if _, err := s.GetAddress(userID, addressID); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var addresses []Address
	if err := tx.Where("user_id = ?", userID).Find(&addresses).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to load addresses: %w", err)
	}

	for _, addr := range ApplyDefaultFlags(addresses, addressID) {
		if err := tx.Model(&Address{}).Where("id = ?", addr.ID).
			Update("is_default", addr.IsDefault).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to set default address: %w", err)
		}
	}

	return tx.Commit().Error
}

// ApplyDefaultFlags returns the addresses with IsDefault true on the target
// and false everywhere else.
func ApplyDefaultFlags(addresses []Address, targetID uint) []Address {
	out := make([]Address, len(addresses))
	for i, addr := range addresses {
		addr.IsDefault = addr.ID == targetID
		out[i] = addr
	}
	return out
}

// ValidateForCheckout checks that an address is complete enough to price and
// ship an order. State is required for United States destinations because the
// tax table needs it.
func ValidateForCheckout(address *Address) error {
	if address == nil {
		return fmt.Errorf("shipping address is required")
	}
	if address.Name == "" {
		return fmt.Errorf("recipient name is required")
	}
	if address.Street == "" {
		return fmt.Errorf("street is required")
	}
	if address.City == "" {
		return fmt.Errorf("city is required")
	}
	if address.Zip == "" {
		return fmt.Errorf("zip code is required")
	}
	if address.Country == "" {
		return fmt.Errorf("country is required")
	}
	if address.Country == "United States" && address.State == "" {
		return fmt.Errorf("state is required for United States addresses")
	}
	return nil
}
