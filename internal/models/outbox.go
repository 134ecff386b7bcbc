package models

import (
	"time"

	"gorm.io/datatypes"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxPublished OutboxStatus = "PUBLISHED"
	// OutboxFailed events reached the attempt limit and are no longer relayed
	OutboxFailed OutboxStatus = "FAILED"
)

// Routing keys for domain events
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventChatMessage        = "chat.message"
)

// OutboxEvent is written in the same transaction as the change it describes
// and relayed to the broker afterwards
type OutboxEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RoutingKey  string         `gorm:"not null;index" json:"routingKey"`
	AggregateID string         `gorm:"type:varchar(36);index" json:"aggregateId"`
	Payload     datatypes.JSON `json:"payload"`
	Status      OutboxStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts    int            `json:"attempts"`
	LastError   string         `json:"lastError,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
