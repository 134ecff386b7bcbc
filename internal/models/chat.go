package models

type SenderRole string

const (
	SenderCustomer SenderRole = "CUSTOMER"
	SenderAdmin    SenderRole = "ADMIN"
)

// Valid reports whether r is a known sender role
func (r SenderRole) Valid() bool {
	return r == SenderCustomer || r == SenderAdmin
}

// Chat is the single conversation attached to an order
type Chat struct {
	Base
	OrderID  string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"orderId"`
	Order    *Order    `json:"order,omitempty"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Base
	ChatID  string     `gorm:"type:varchar(36);not null;index" json:"chatId"`
	Sender  SenderRole `gorm:"type:varchar(20);not null" json:"sender"`
	Content string     `gorm:"type:text;not null" json:"content"`
}
