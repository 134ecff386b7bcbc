package models

import "gorm.io/datatypes"

// Settings is the singleton store profile shown on the public site
type Settings struct {
	Base
	StoreName    string            `json:"storeName"`
	Address      string            `json:"address"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Currency     string            `json:"currency"`
	Description  string            `json:"description,omitempty"`
	OpeningHours datatypes.JSONMap `json:"openingHours"`
}
