// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/luxury-storefront/internal/domain/cart"
	"github.com/your-org/luxury-storefront/internal/domain/coupon"
	"github.com/your-org/luxury-storefront/internal/domain/order"
	"github.com/your-org/luxury-storefront/internal/domain/product"
	"github.com/your-org/luxury-storefront/internal/domain/user"
	"github.com/your-org/luxury-storefront/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order: referenced tables first
	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Product{},

		&cart.CartItem{},

		&coupon.Coupon{},
		&coupon.CouponUse{},

		&order.Order{},
		&order.OrderItem{},

		&wishlist.WishlistItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_limited ON products(is_limited, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupon_uses_code_user ON coupon_uses(coupon_code, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_coupon_uses_order ON coupon_uses(order_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Wishlist indexes
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_user ON wishlist_items(user_id, added_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedTestUser(); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedSampleProducts(); err != nil {
		return fmt.Errorf("failed to seed sample products: %w", err)
	}

	if err := m.seedSampleCoupons(); err != nil {
		return fmt.Errorf("failed to seed sample coupons: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin1234"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@example.com")
	return nil
}

func (m *Migration) seedTestUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "test1@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("test1234"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	testUser := user.User{
		Email:     "test1@example.com",
		Password:  string(hashedPassword),
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   false,
	}

	if err := m.db.Create(&testUser).Error; err != nil {
		return err
	}

	log.Println("✅ Created test user: test1@example.com")
	return nil
}

func (m *Migration) seedSampleProducts() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount > 0 {
		return nil
	}

	sampleProducts := []product.Product{
		{
			Name:        "Cashmere Overcoat",
			Slug:        "cashmere-overcoat",
			Description: "Double-faced cashmere overcoat, hand finished.",
			Price:       decimal.NewFromInt(2800),
			Image:       "/images/products/cashmere-overcoat.jpg",
			Category:    "Outerwear",
			Colors:      "Camel,Charcoal",
			Sizes:       "S,M,L,XL",
			IsActive:    true,
			IsLimited:   false,
		},
		{
			Name:        "Silk Twill Scarf",
			Slug:        "silk-twill-scarf",
			Description: "Hand-rolled silk twill scarf with archive print.",
			Price:       decimal.NewFromInt(450),
			Image:       "/images/products/silk-twill-scarf.jpg",
			Category:    "Accessories",
			Colors:      "Ivory,Navy,Bordeaux",
			Sizes:       "",
			IsActive:    true,
			IsLimited:   false,
		},
		{
			Name:        "Grained Leather Tote",
			Slug:        "grained-leather-tote",
			Description: "Structured tote in grained calfskin with suede lining.",
			Price:       decimal.NewFromInt(1950),
			Image:       "/images/products/grained-leather-tote.jpg",
			Category:    "Bags",
			Colors:      "Black,Taupe",
			Sizes:       "",
			IsActive:    true,
			IsLimited:   true,
		},
	}

	for _, prod := range sampleProducts {
		if err := m.db.Create(&prod).Error; err != nil {
			log.Printf("⚠️ Failed to create sample product %s: %v", prod.Slug, err)
		}
	}

	log.Printf("✅ Created %d sample products", len(sampleProducts))
	return nil
}

func (m *Migration) seedSampleCoupons() error {
	var couponCount int64
	m.db.Model(&coupon.Coupon{}).Count(&couponCount)
	if couponCount > 0 {
		return nil
	}

	expiry := time.Now().AddDate(0, 3, 0)
	minSubtotal := decimal.NewFromInt(500)
	maxUses := 100

	sampleCoupons := []coupon.Coupon{
		{
			Code:          "WELCOME10",
			Type:          coupon.DiscountTypePercent,
			DiscountValue: decimal.RequireFromString("0.10"),
			ExpiresAt:     &expiry,
			PerUserLimit:  1,
		},
		{
			Code:          "VIP100",
			Type:          coupon.DiscountTypeFixed,
			DiscountValue: decimal.NewFromInt(100),
			ExpiresAt:     &expiry,
			MinSubtotal:   &minSubtotal,
			MaxUses:       &maxUses,
			PerUserLimit:  1,
		},
	}

	for _, c := range sampleCoupons {
		if err := m.db.Create(&c).Error; err != nil {
			log.Printf("⚠️ Failed to create sample coupon %s: %v", c.Code, err)
		}
	}

	log.Printf("✅ Created %d sample coupons", len(sampleCoupons))
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"wishlist_items",
		"order_items",
		"orders",
		"coupon_uses",
		"coupons",
		"cart_items",
		"products",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		}
	}

	log.Println("✅ All tables dropped")
	return nil
}
