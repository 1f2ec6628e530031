package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string
type StockState string

const (
	OrderStatusPending     OrderStatus = "PENDING"       // Order placed, awaiting payment
	OrderStatusConfirmed   OrderStatus = "CONFIRMED"     // Payment settled
	OrderStatusReadyToShip OrderStatus = "READY_TO_SHIP" // Packed and ready for dispatch
	OrderStatusShipped     OrderStatus = "SHIPPED"       // Out for delivery
	OrderStatusDelivered   OrderStatus = "DELIVERED"     // Customer received the item
	OrderStatusCancelled   OrderStatus = "CANCELLED"     // Cancelled or payment failed

	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"

	// StockState records which inventory effect has already been applied to
	// an order so settlement and restoration each run at most once.
	StockUntouched StockState = "NONE"
	StockSettled   StockState = "SETTLED"
	StockRestored  StockState = "RESTORED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusReadyToShip,
	OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
	PaymentStatusCancelled, PaymentStatusRefunded,
}

// Final reports whether no further gateway outcome may change the status.
func (s PaymentStatus) Final() bool {
	switch s {
	case PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// CustomerDetails are captured when payment is initiated, not at checkout.
type CustomerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `gorm:"type:text" json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type Order struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OrderRef           string          `gorm:"uniqueIndex;size:64" json:"order_ref"`
	UserID             string          `gorm:"index;not null" json:"user_id"`
	Items              []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status             OrderStatus     `gorm:"type:VARCHAR(20);not null;default:'PENDING'" json:"status"`
	PaymentStatus      PaymentStatus   `gorm:"type:VARCHAR(20);not null;default:'PENDING'" json:"payment_status"`
	PaymentID          string          `json:"payment_id"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentCompletedAt *time.Time      `json:"payment_completed_at"`
	StockState         StockState      `gorm:"type:VARCHAR(20);not null;default:'NONE'" json:"stock_state"`
	Customer           CustomerDetails `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// OrderItem is written once with its order and never updated. Price and
// ProductName are frozen at checkout.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
}

// LineTotal is price * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
