package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/events"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/realtime"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatSummary is one row of the admin inbox
type ChatSummary struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	Order        *models.Order   `json:"order"`
	CustomerName string          `json:"customerName"`
	LastMessage  *models.Message `json:"lastMessage,omitempty"`
	MessageCount int             `json:"messageCount"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type ChatService interface {
	// PostMessage appends to the order's chat, creating the chat on first use
	PostMessage(ctx context.Context, orderID, content string, sender models.SenderRole) (*models.Message, error)
	// FetchMessages returns messages oldest first, or an empty list when the order has no chat
	FetchMessages(ctx context.Context, orderID string) ([]models.Message, error)
	ListChats(ctx context.Context, scope Scope) ([]ChatSummary, error)
	// Subscribe streams message and status events of an existing order
	Subscribe(ctx context.Context, orderID string) (<-chan realtime.Event, func(), error)
}

type chatService struct {
	db  *gorm.DB
	hub realtime.Hub
	log *logrus.Logger
}

func NewChatService(db *gorm.DB, hub realtime.Hub, log *logrus.Logger) ChatService {
	return &chatService{db: db, hub: hub, log: log}
}

type chatMessageEvent struct {
	OrderID   string            `json:"orderId"`
	ChatID    string            `json:"chatId"`
	MessageID string            `json:"messageId"`
	Sender    models.SenderRole `json:"sender"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (s *chatService) PostMessage(ctx context.Context, orderID, content string, sender models.SenderRole) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError(models.ErrMissingFields, "content is required")
	}
	if !sender.Valid() {
		return nil, validationError(models.ErrValidationFailed, fmt.Sprintf("unknown sender %q", sender))
	}

	var message models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFoundError(models.ErrOrderNotFound, "order not found")
		}

		// Concurrent first posts race on the unique order_id; the loser inserts nothing
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).Create(&models.Chat{OrderID: orderID}).Error; err != nil {
			return fmt.Errorf("ensure chat: %w", err)
		}

		var chat models.Chat
		if err := tx.Where("order_id = ?", orderID).First(&chat).Error; err != nil {
			return fmt.Errorf("load chat: %w", err)
		}

		message = models.Message{ChatID: chat.ID, Sender: sender, Content: content}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := tx.Model(&models.Chat{}).Where("id = ?", chat.ID).Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("touch chat: %w", err)
		}

		return events.Enqueue(tx, models.EventChatMessage, orderID, newChatMessageEvent(orderID, &message))
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"chat_id":  message.ChatID,
		"sender":   sender,
	}).Debug("Chat message posted")

	ev, err := realtime.NewEvent(realtime.EventMessage, orderID, newChatMessageEvent(orderID, &message))
	if err == nil {
		err = s.hub.Publish(ctx, ev)
	}
	if err != nil {
		s.log.WithError(err).WithField("order_id", orderID).Warn("Realtime publish failed")
	}

	return &message, nil
}

func newChatMessageEvent(orderID string, m *models.Message) chatMessageEvent {
	return chatMessageEvent{
		OrderID:   orderID,
		ChatID:    m.ChatID,
		MessageID: m.ID,
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func (s *chatService) FetchMessages(ctx context.Context, orderID string) ([]models.Message, error) {
	messages := []models.Message{}
	err := s.db.WithContext(ctx).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.order_id = ?", orderID).
		Order("messages.created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *chatService) ListChats(ctx context.Context, scope Scope) ([]ChatSummary, error) {
	q := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Customer").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })

	if !scope.Global() {
		scoped := s.db.Model(&models.Order{}).Select("id").Where("restaurant_id = ?", scope.RestaurantID)
		q = q.Where("order_id IN (?)", scoped)
	}

	var chats []models.Chat
	if err := q.Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for i := range chats {
		chat := &chats[i]
		summary := ChatSummary{
			ID:           chat.ID,
			OrderID:      chat.OrderID,
			Order:        chat.Order,
			MessageCount: len(chat.Messages),
			UpdatedAt:    chat.UpdatedAt,
		}
		if chat.Order != nil {
			summary.CustomerName = chat.Order.CustomerName()
		}
		if n := len(chat.Messages); n > 0 {
			last := chat.Messages[n-1]
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *chatService) Subscribe(ctx context.Context, orderID string) (<-chan realtime.Event, func(), error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, nil, err
	}
	if count == 0 {
		return nil, nil, notFoundError(models.ErrOrderNotFound, "order not found")
	}
	return s.hub.Subscribe(ctx, orderID)
}
