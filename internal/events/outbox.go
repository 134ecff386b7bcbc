package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Enqueue records an event inside the caller's transaction
func Enqueue(tx *gorm.DB, routingKey, aggregateID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}
	event := models.OutboxEvent{
		RoutingKey:  routingKey,
		AggregateID: aggregateID,
		Payload:     data,
		Status:      models.OutboxPending,
	}
	return tx.Create(&event).Error
}

// Relay moves pending outbox rows to a Publisher
type Relay struct {
	db          *gorm.DB
	publisher   Publisher
	batch       int
	interval    time.Duration
	// maxAttempts is the number of failed publishes after which an event is marked FAILED
	maxAttempts int
	log         *logrus.Logger
	now         func() time.Time
}

const defaultMaxAttempts = 10

func NewRelay(db *gorm.DB, publisher Publisher, batch int, interval time.Duration, maxAttempts int, log *logrus.Logger) *Relay {
	if batch <= 0 {
		batch = 50
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Relay{
		db:          db,
		publisher:   publisher,
		batch:       batch,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log,
		now:         time.Now,
	}
}

// Run flushes on every tick until ctx is cancelled
func (r *Relay) Run(ctx context.Context) error {
	r.log.WithField("interval", r.interval.String()).Info("Outbox relay started")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				r.log.WithError(err).Error("Outbox flush failed")
			}
		}
	}
}

// Flush publishes one batch of pending events in id order and returns how many were published.
// A failed event stays pending with its attempt count raised, and the batch stops there to keep ordering.
// Once an event has failed maxAttempts times it is marked FAILED and the batch moves past it.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	var pending []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.OutboxPending).
		Order("id ASC").
		Limit(r.batch).
		Find(&pending).Error
	if err != nil {
		return 0, fmt.Errorf("load pending events: %w", err)
	}

	published := 0
	for _, event := range pending {
		if pubErr := r.publisher.Publish(ctx, event.RoutingKey, event.Payload); pubErr != nil {
			attempts := event.Attempts + 1
			exhausted := attempts >= r.maxAttempts
			entry := r.log.WithFields(logrus.Fields{
				"event_id":    event.ID,
				"routing_key": event.RoutingKey,
				"attempts":    attempts,
			}).WithError(pubErr)

			updates := map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": pubErr.Error(),
			}
			if exhausted {
				updates["status"] = models.OutboxFailed
			}
			if err := r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
				Where("id = ?", event.ID).
				Updates(updates).Error; err != nil {
				return published, fmt.Errorf("record failure of event %d: %w", event.ID, err)
			}

			if !exhausted {
				entry.Warn("Publishing outbox event failed")
				return published, nil
			}
			entry.Error("Outbox event gave up after max attempts")
			continue
		}

		publishedAt := r.now()
		if err := r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]interface{}{
				"status":       models.OutboxPublished,
				"attempts":     gorm.Expr("attempts + 1"),
				"last_error":   "",
				"published_at": &publishedAt,
			}).Error; err != nil {
			return published, fmt.Errorf("mark event %d published: %w", event.ID, err)
		}
		published++
	}

	if published > 0 {
		r.log.WithField("count", published).Debug("Outbox events published")
	}
	return published, nil
}
