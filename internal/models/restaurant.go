package models

// Restaurant is a tenant: it owns categories, foods, employees and orders
type Restaurant struct {
	Base
	Name        string     `gorm:"not null" json:"name"`
	Location    string     `gorm:"not null" json:"location"`
	Description string     `json:"description"`
	Logo        string     `json:"logo,omitempty"`
	Banner      string     `json:"banner,omitempty"`
	Enabled     bool       `gorm:"not null" json:"enabled"`
	AdminID     *string    `gorm:"type:varchar(36);uniqueIndex" json:"adminId,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	FoodCount   int64      `gorm:"-" json:"foodCount"`
}
