package models

// Customer is identified by email or phone; both columns are unique when present
type Customer struct {
	Base
	Email *string `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Phone *string `gorm:"type:varchar(64);uniqueIndex" json:"phone,omitempty"`
	Name  string  `json:"name,omitempty"`
}

// DisplayName returns the best human label available for the customer
func (c *Customer) DisplayName() string {
	switch {
	case c == nil:
		return "Unknown"
	case c.Name != "":
		return c.Name
	case c.Email != nil && *c.Email != "":
		return *c.Email
	case c.Phone != nil && *c.Phone != "":
		return *c.Phone
	default:
		return "Unknown"
	}
}
