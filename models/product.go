package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product stock counters:
//   - Quantity: total ever stocked
//   - AvailableQuantity: currently sellable, never below zero
//   - SoldQuantity: cumulative settled sales
//
// AvailableQuantity + SoldQuantity == Quantity is the steady state but is not
// enforced; admins may restock by editing both Quantity and AvailableQuantity.
type Product struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string          `gorm:"not null" json:"name"`
	Description       string          `gorm:"size:1000" json:"description"`
	Price             decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Discount          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"discount"`
	Quantity          int             `gorm:"not null;default:0" json:"quantity"`
	AvailableQuantity int             `gorm:"not null;default:0" json:"available_quantity"`
	SoldQuantity      int             `gorm:"not null;default:0" json:"sold_quantity"`
	Color             string          `gorm:"size:50" json:"color"`
	SKU               string          `gorm:"size:50" json:"sku"`
	Image             string          `json:"image"`
	Categories        []Category      `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Tags              []Tag           `gorm:"many2many:product_tags;" json:"tags,omitempty"`
	Version           int             `gorm:"not null;default:0" json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// UnitPrice is the price an order line is frozen at: price minus discount.
func (p Product) UnitPrice() decimal.Decimal {
	return p.Price.Sub(p.Discount)
}

// SoldPercentage of everything ever stocked; 0 when nothing was stocked.
func (p Product) SoldPercentage() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return float64(p.SoldQuantity) / float64(p.Quantity) * 100
}
