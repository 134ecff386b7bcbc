package models

import "github.com/shopspring/decimal"

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryOnTheWay  DeliveryStatus = "ON_THE_WAY"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "CARD"
	PaymentMomo   PaymentMethod = "MOMO"
	PaymentPaypal PaymentMethod = "PAYPAL"
	PaymentCash   PaymentMethod = "CASH"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentMomo, PaymentPaypal, PaymentCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Delivery exists only for DELIVERY orders
type Delivery struct {
	Base
	OrderID       string         `gorm:"type:varchar(36);not null;uniqueIndex" json:"orderId"`
	Order         *Order         `json:"order,omitempty"`
	CustomerID    string         `gorm:"type:varchar(36);not null;index" json:"customerId"`
	Address       string         `gorm:"not null" json:"address"`
	Status        DeliveryStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod PaymentMethod  `gorm:"type:varchar(20);not null" json:"paymentMethod"`
}

// Payment is recorded for every order; settlement is out of band
type Payment struct {
	Base
	OrderID string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"orderId"`
	Amount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method  PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Status  PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
}
