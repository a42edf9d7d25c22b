// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the closed catalog record. Data entering from feeds or the admin
// API is normalized into this shape once, at the boundary, instead of
// re-deriving optional-field fallbacks at every read site.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Image       string          `gorm:"size:500" json:"image"`
	Category    string          `gorm:"index;size:100" json:"category"`
	Colors      string          `gorm:"size:500" json:"colors"` // comma-separated
	Sizes       string          `gorm:"size:500" json:"sizes"`  // comma-separated
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	IsLimited   bool            `gorm:"default:false" json:"is_limited"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// ColorList splits the comma-separated color options.
func (p *Product) ColorList() []string {
	return splitOptions(p.Colors)
}

// SizeList splits the comma-separated size options. Products without sizes
// sell as "One Size".
func (p *Product) SizeList() []string {
	sizes := splitOptions(p.Sizes)
	if len(sizes) == 0 {
		return []string{"One Size"}
	}
	return sizes
}

// HasVariant reports whether the color/size pair is a valid option for this
// product. Empty color is accepted for single-color products.
func (p *Product) HasVariant(color, size string) bool {
	if color != "" && !contains(p.ColorList(), color) {
		return false
	}
	return contains(p.SizeList(), size)
}

func splitOptions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
