package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRate is the pricing tier an order was placed at.
type OrderRate string

const (
	RateStandard  OrderRate = "standard"
	RateCorporate OrderRate = "corporate"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order represents a ticket purchase owned by a User. Corporate-rate orders
// carry the authoritative billing company name, which overrides the user's
// own badge company field and cannot be changed via profile edit.
type Order struct {
	ID          uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uint        `json:"user_id" gorm:"not null;index"`
	Rate        OrderRate   `json:"rate" gorm:"type:varchar(20);not null;default:'standard';index"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	BillingName string      `json:"billing_name" gorm:"size:255"`
	ChargeID    string      `json:"charge_id,omitempty" gorm:"size:64;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User    User     `json:"-" gorm:"foreignKey:UserID"`
	Tickets []Ticket `json:"tickets,omitempty" gorm:"foreignKey:OrderID"`
}

// BeforeCreate sets UUID before creating the record.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Total sums the prices of all ticket line items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range o.Tickets {
		total = total.Add(t.Price)
	}
	return total
}

// TotalMinorUnits returns the order total in integer minor units (pence),
// the unit the payment provider charges in.
func (o *Order) TotalMinorUnits() int64 {
	return o.Total().Mul(decimal.NewFromInt(100)).IntPart()
}

// Ticket is a single line item of an Order. Price is in major currency units;
// the payment gateway converts to minor units at the boundary.
type Ticket struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:char(36);not null;index"`
	Description string          `json:"description" gorm:"size:255"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Order Order `json:"-" gorm:"foreignKey:OrderID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// PriceMinorUnits returns the ticket price in integer minor units (pence).
func (t *Ticket) PriceMinorUnits() int64 {
	return t.Price.Mul(decimal.NewFromInt(100)).IntPart()
}
