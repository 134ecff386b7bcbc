package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event types pushed to order subscribers
const (
	EventMessage = "message"
	EventStatus  = "status"
)

const subscriberBuffer = 16

// Event is a notification scoped to a single order
type Event struct {
	Type    string          `json:"type"`
	OrderID string          `json:"orderId"`
	Data    json.RawMessage `json:"data"`
}

// NewEvent encodes payload into an event
func NewEvent(eventType, orderID string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, OrderID: orderID, Data: data}, nil
}

// Hub fans order events out to live subscribers
type Hub interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a channel of events for orderID and a function that ends the subscription
	Subscribe(ctx context.Context, orderID string) (<-chan Event, func(), error)
}

// New returns a Redis pub/sub hub when a client is given and an in-process hub otherwise
func New(client *redis.Client, log *logrus.Logger) Hub {
	if client == nil {
		return NewMemoryHub(log)
	}
	return NewRedisHub(client, log)
}

type memoryHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	log         *logrus.Logger
}

// NewMemoryHub returns a hub that only reaches subscribers of this process
func NewMemoryHub(log *logrus.Logger) Hub {
	return &memoryHub{subscribers: make(map[string]map[chan Event]struct{}), log: log}
}

func (h *memoryHub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[event.OrderID] {
		select {
		case ch <- event:
		default:
			h.log.WithFields(logrus.Fields{
				"order_id": event.OrderID,
				"type":     event.Type,
			}).Warn("Dropping event for slow subscriber")
		}
	}
	return nil
}

func (h *memoryHub) Subscribe(_ context.Context, orderID string) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[orderID] == nil {
		h.subscribers[orderID] = make(map[chan Event]struct{})
	}
	h.subscribers[orderID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[orderID], ch)
			if len(h.subscribers[orderID]) == 0 {
				delete(h.subscribers, orderID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

type redisHub struct {
	client *redis.Client
	log    *logrus.Logger
}

// NewRedisHub returns a hub shared by every instance connected to the same Redis
func NewRedisHub(client *redis.Client, log *logrus.Logger) Hub {
	return &redisHub{client: client, log: log}
}

func channelName(orderID string) string {
	return "orders:" + orderID + ":events"
}

func (h *redisHub) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, channelName(event.OrderID), data).Err()
}

func (h *redisHub) Subscribe(ctx context.Context, orderID string) (<-chan Event, func(), error) {
	pubsub := h.client.Subscribe(ctx, channelName(orderID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					h.log.WithError(err).Warn("Discarding malformed realtime event")
					continue
				}
				select {
				case out <- event:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}
