package models

import (
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "DELIVERY"
	OrderTypePickup   OrderType = "PICKUP"
	OrderTypeDineIn   OrderType = "DINE_IN"
)

// Valid reports whether t is a known order type
func (t OrderType) Valid() bool {
	return t == OrderTypeDelivery || t == OrderTypePickup || t == OrderTypeDineIn
}

type Order struct {
	Base
	RestaurantID  *string          `gorm:"type:varchar(36);index" json:"restaurantId,omitempty"`
	Restaurant    *Restaurant      `json:"restaurant,omitempty"`
	CustomerID    string           `gorm:"type:varchar(36);not null;index" json:"customerId"`
	Customer      *Customer        `json:"customer,omitempty"`
	Items         []OrderItem      `json:"items"`
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status        OrderStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Type          OrderType        `gorm:"type:varchar(20);not null" json:"type"`
	Notes         string           `json:"notes,omitempty"`
	Delivery      *Delivery        `json:"delivery,omitempty"`
	Payment       *Payment         `json:"payment,omitempty"`
	Chat          *Chat            `json:"chat,omitempty"`
	StatusHistory []OrderStatusLog `json:"statusHistory,omitempty"`
}

// OrderItem snapshots the unit price at order time so later menu edits do not rewrite history
type OrderItem struct {
	Base
	OrderID  string          `gorm:"type:varchar(36);not null;index" json:"orderId"`
	FoodID   string          `gorm:"type:varchar(36);not null;index" json:"foodId"`
	Food     *Food           `json:"food,omitempty"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// LineTotal is price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusLog records every applied status change
type OrderStatusLog struct {
	Base
	OrderID   string      `gorm:"type:varchar(36);not null;index" json:"orderId"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	ChangedBy string      `json:"changedBy"`
	Note      string      `json:"note,omitempty"`
}

// CustomerName returns a display name for the order's customer
func (o *Order) CustomerName() string {
	return o.Customer.DisplayName()
}
