package sales

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentPaypal   PaymentMethod = "paypal"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPaypal, PaymentTransfer:
		return true
	}
	return false
}

// Label is the Spanish name printed on receipts.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Efectivo"
	case PaymentCard:
		return "Tarjeta"
	case PaymentPaypal:
		return "PayPal"
	case PaymentTransfer:
		return "Transferencia"
	}
	return string(m)
}

// SaleItem is a snapshot of a product at the moment it was sold.
type SaleItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
}

func (it SaleItem) Subtotal() float64 {
	return it.Price * float64(it.Quantity)
}

type Sale struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID       uuid.UUID                    `gorm:"type:uuid;not null;index:idx_sale_store_date,priority:1;column:store_id" json:"store_id"`
	Date          time.Time                    `gorm:"not null;index:idx_sale_store_date,priority:2;column:date" json:"date"`
	Total         float64                      `gorm:"not null;column:total" json:"total"`
	PaymentMethod PaymentMethod                `gorm:"not null;column:payment_method" json:"payment_method"`
	SoldBy        string                       `gorm:"not null;column:sold_by" json:"sold_by"`
	Items         datatypes.JSONSlice[SaleItem] `gorm:"column:items" json:"items"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Sale) TableName() string { return "sale" }

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Date.IsZero() {
		s.Date = time.Now().UTC()
	}
	return nil
}

// ItemCount sums the quantities across lines.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
