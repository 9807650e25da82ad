package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultCategory = "General"

type Product struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_store_code,priority:1;column:store_id" json:"store_id"`
	Code           string    `gorm:"not null;uniqueIndex:idx_product_store_code,priority:2;column:code" json:"code"`
	Name           string    `gorm:"not null;column:name" json:"name"`
	CostPrice      float64   `gorm:"not null;default:0;column:cost_price" json:"cost_price"`
	Price          float64   `gorm:"not null;default:0;column:price" json:"price"`
	WholesalePrice float64   `gorm:"not null;default:0;column:wholesale_price" json:"wholesale_price"`
	Stock          int       `gorm:"not null;default:0;column:stock" json:"stock"`
	MinStock       int       `gorm:"not null;default:0;column:min_stock" json:"min_stock"`
	Category       string    `gorm:"not null;default:General;index;column:category" json:"category"`
	Image          string    `gorm:"column:image" json:"image,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return nil
}

// LowStock reports stock at or below the alert threshold.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}
