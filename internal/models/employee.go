package models

import "github.com/shopspring/decimal"

type Employee struct {
	Base
	RestaurantID *string         `gorm:"type:varchar(36);index" json:"restaurantId,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Position     string          `json:"position,omitempty"`
	Salary       decimal.Decimal `gorm:"type:decimal(10,2)" json:"salary"`
}
