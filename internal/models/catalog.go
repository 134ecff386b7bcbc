package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups foods on a restaurant menu
type Category struct {
	Base
	Name         string  `gorm:"not null" json:"name"`
	RestaurantID *string `gorm:"type:varchar(36);index" json:"restaurantId,omitempty"`
}

// Food is a menu item. Deletes are soft so that order history keeps its references.
type Food struct {
	Base
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image        string          `json:"image,omitempty"`
	Available    bool            `gorm:"not null" json:"available"`
	PrepTime     *int            `json:"prepTime,omitempty"`
	CategoryID   string          `gorm:"type:varchar(36);not null;index" json:"categoryId"`
	Category     *Category       `json:"category,omitempty"`
	RestaurantID *string         `gorm:"type:varchar(36);index" json:"restaurantId,omitempty"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}
