package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/events"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/realtime"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderItemInput is one requested line. Client-side prices are never accepted.
type OrderItemInput struct {
	FoodID   string `json:"foodId"`
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (i OrderItemInput) foodID() string {
	if i.FoodID != "" {
		return i.FoodID
	}
	return i.ID
}

type CreateOrderInput struct {
	CustomerName  string               `json:"customerName"`
	CustomerEmail string               `json:"customerEmail"`
	CustomerPhone string               `json:"customerPhone"`
	Items         []OrderItemInput     `json:"items"`
	Type          models.OrderType     `json:"type"`
	Address       string               `json:"address"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Notes         string               `json:"notes"`
}

// OrderFilter narrows admin order listings. Zero values do not filter.
type OrderFilter struct {
	Status models.OrderStatus
	Type   models.OrderType
	Limit  int
}

// OrderService is the order engine: creation, lookup and the status state machine
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	// GetScopedOrder is GetOrder restricted to the caller's restaurant
	GetScopedOrder(ctx context.Context, scope Scope, id string) (*models.Order, error)
	ListOrders(ctx context.Context, scope Scope, filter OrderFilter) ([]models.Order, error)
	ListDeliveries(ctx context.Context, scope Scope) ([]models.Delivery, error)
	UpdateOrderStatus(ctx context.Context, scope Scope, id string, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	db  *gorm.DB
	hub realtime.Hub
	log *logrus.Logger
}

func NewOrderService(db *gorm.DB, hub realtime.Hub, log *logrus.Logger) OrderService {
	return &orderService{db: db, hub: hub, log: log}
}

// orderEvent is the outbox and realtime payload describing an order change
type orderEvent struct {
	OrderID        string             `json:"orderId"`
	RestaurantID   string             `json:"restaurantId,omitempty"`
	CustomerID     string             `json:"customerId,omitempty"`
	Type           models.OrderType   `json:"type"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	ChangedBy      string             `json:"changedBy,omitempty"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

func newOrderEvent(o *models.Order) orderEvent {
	ev := orderEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Type:        o.Type,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
	if o.RestaurantID != nil {
		ev.RestaurantID = *o.RestaurantID
	}
	return ev
}

type normalizedLine struct {
	foodID   string
	quantity int
}

func (s *orderService) validateCreate(in *CreateOrderInput) ([]normalizedLine, error) {
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Address = strings.TrimSpace(in.Address)

	if len(in.Items) == 0 {
		return nil, validationError(models.ErrMissingFields, "at least one item is required")
	}
	if in.CustomerEmail == "" && in.CustomerPhone == "" {
		return nil, validationError(models.ErrMissingFields, "customer email or phone is required")
	}

	if in.Type == "" {
		in.Type = models.OrderTypeDineIn
	}
	if !in.Type.Valid() {
		return nil, validationError(models.ErrValidationFailed, fmt.Sprintf("unknown order type %q", in.Type))
	}
	if in.Type == models.OrderTypeDelivery && in.Address == "" {
		return nil, validationError(models.ErrMissingFields, "address is required for delivery orders")
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCard
	}
	if !in.PaymentMethod.Valid() {
		return nil, validationError(models.ErrValidationFailed, fmt.Sprintf("unknown payment method %q", in.PaymentMethod))
	}

	lines := make([]normalizedLine, 0, len(in.Items))
	for _, item := range in.Items {
		id := strings.TrimSpace(item.foodID())
		if id == "" {
			return nil, validationError(models.ErrMissingFields, "every item needs a foodId")
		}
		quantity := item.Quantity
		if quantity < 0 {
			return nil, validationError(models.ErrValidationFailed, "quantity cannot be negative")
		}
		if quantity == 0 {
			quantity = 1
		}
		lines = append(lines, normalizedLine{foodID: id, quantity: quantity})
	}
	return lines, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	lines, err := s.validateCreate(&in)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := resolveCustomer(tx, in.CustomerName, in.CustomerEmail, in.CustomerPhone)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.foodID)
		}
		var foods []models.Food
		if err := tx.Where("id IN ?", ids).Find(&foods).Error; err != nil {
			return err
		}
		byID := make(map[string]models.Food, len(foods))
		for _, f := range foods {
			byID[f.ID] = f
		}

		var restaurantID *string
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for i, line := range lines {
			food, ok := byID[line.foodID]
			if !ok {
				e := notFoundError(models.ErrFoodNotFound, fmt.Sprintf("food %s not found", line.foodID))
				e.Details = map[string]interface{}{"foodId": line.foodID}
				return e
			}
			if !food.Available {
				e := validationError(models.ErrFoodUnavailable, fmt.Sprintf("%s is not available", food.Name))
				e.Details = map[string]interface{}{"foodId": food.ID}
				return e
			}
			if i == 0 {
				restaurantID = food.RestaurantID
			} else if !sameRestaurant(restaurantID, food.RestaurantID) {
				return validationError(models.ErrMixedRestaurants, "all items must come from the same restaurant")
			}

			item := models.OrderItem{FoodID: food.ID, Quantity: line.quantity, Price: food.Price}
			total = total.Add(item.LineTotal())
			items = append(items, item)
		}

		if restaurantID != nil {
			var restaurant models.Restaurant
			if err := tx.Select("id", "name", "enabled").First(&restaurant, "id = ?", *restaurantID).Error; err != nil {
				return notFoundOr(err, models.ErrRestaurantNotFound, "restaurant not found")
			}
			if !restaurant.Enabled {
				e := validationError(models.ErrRestaurantUnavailable, fmt.Sprintf("%s is not taking orders", restaurant.Name))
				e.Details = map[string]interface{}{"restaurantId": restaurant.ID}
				return e
			}
		}

		order = models.Order{
			RestaurantID: restaurantID,
			CustomerID:   customer.ID,
			Items:        items,
			TotalAmount:  total,
			Status:       models.OrderPending,
			Type:         in.Type,
			Notes:        in.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if in.Type == models.OrderTypeDelivery {
			delivery := models.Delivery{
				OrderID:       order.ID,
				CustomerID:    customer.ID,
				Address:       in.Address,
				Status:        models.DeliveryPending,
				PaymentMethod: in.PaymentMethod,
			}
			if err := tx.Create(&delivery).Error; err != nil {
				return fmt.Errorf("create delivery: %w", err)
			}
		}

		payment := models.Payment{
			OrderID: order.ID,
			Amount:  total,
			Method:  in.PaymentMethod,
			Status:  models.PaymentPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if err := tx.Create(&models.Chat{OrderID: order.ID}).Error; err != nil {
			return fmt.Errorf("create chat: %w", err)
		}

		statusLog := models.OrderStatusLog{OrderID: order.ID, Status: models.OrderPending, ChangedBy: "customer"}
		if err := tx.Create(&statusLog).Error; err != nil {
			return fmt.Errorf("create status log: %w", err)
		}

		return events.Enqueue(tx, models.EventOrderCreated, order.ID, newOrderEvent(&order))
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"type":         order.Type,
		"items":        len(order.Items),
		"total_amount": order.TotalAmount.StringFixed(2),
	}).Info("Order created")

	return s.GetOrder(ctx, order.ID)
}

func sameRestaurant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// resolveCustomer finds a customer by email, then by phone, creating one when neither matches
func resolveCustomer(tx *gorm.DB, name, email, phone string) (*models.Customer, error) {
	lookups := []struct {
		column string
		value  string
	}{{"email", email}, {"phone", phone}}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		var found []models.Customer
		if err := tx.Where(l.column+" = ?", l.value).Limit(1).Find(&found).Error; err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return &found[0], nil
		}
	}

	customer := models.Customer{Name: name}
	if email != "" {
		customer.Email = &email
	}
	if phone != "" {
		customer.Phone = &phone
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &customer, nil
}

// withFoods preloads order items with their food, including soft-deleted foods
func withFoods(db *gorm.DB, path string) *gorm.DB {
	return db.Preload(path, func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *orderService) orderQuery(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Preload("Restaurant").
		Preload("Delivery").
		Preload("Payment").
		Preload("Chat").
		Preload("Chat.Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	return withFoods(q, "Items.Food")
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.orderQuery(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrOrderNotFound, "order not found")
	}
	return &order, nil
}

func (s *orderService) GetScopedOrder(ctx context.Context, scope Scope, id string) (*models.Order, error) {
	var order models.Order
	q := scope.apply(s.orderQuery(ctx), "restaurant_id")
	if err := q.First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrOrderNotFound, "order not found")
	}
	return &order, nil
}

func (s *orderService) ListOrders(ctx context.Context, scope Scope, filter OrderFilter) ([]models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Preload("Delivery").
		Preload("Payment")
	q = withFoods(q, "Items.Food")
	q = scope.apply(q, "restaurant_id")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) ListDeliveries(ctx context.Context, scope Scope) ([]models.Delivery, error) {
	q := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Customer").
		Preload("Order.Items")
	q = withFoods(q, "Order.Items.Food")

	if !scope.Global() {
		scoped := s.db.Model(&models.Order{}).Select("id").Where("restaurant_id = ?", scope.RestaurantID)
		q = q.Where("order_id IN (?)", scoped)
	}

	var deliveries []models.Delivery
	if err := q.Order("created_at DESC").Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// UpdateOrderStatus applies one transition of the state machine.
// Writing the current status again is a no-op. The write is a compare-and-set on the
// status that was read, so a concurrent writer that got there first causes a Conflict.
func (s *orderService) UpdateOrderStatus(ctx context.Context, scope Scope, id string, status models.OrderStatus) (*models.Order, error) {
	next, err := models.ParseOrderStatus(string(status))
	if err != nil {
		return nil, validationError(models.ErrInvalidStatus, err.Error())
	}

	var (
		changed bool
		event   orderEvent
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := scope.apply(tx, "restaurant_id").First(&order, "id = ?", id).Error; err != nil {
			return notFoundOr(err, models.ErrOrderNotFound, "order not found")
		}

		if order.Status == next {
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			e := conflictError(models.ErrInvalidStatusTransition,
				fmt.Sprintf("cannot change status from %s to %s", order.Status, next))
			e.Details = map[string]interface{}{
				"from":    order.Status,
				"to":      next,
				"allowed": order.Status.NextStatuses(),
			}
			return e
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflictError(models.ErrStatusChanged, "order status was changed concurrently, reload and retry")
		}

		if order.Type == models.OrderTypeDelivery {
			if deliveryStatus, ok := models.DeliveryStatusFor(next); ok {
				if err := tx.Model(&models.Delivery{}).
					Where("order_id = ?", order.ID).
					Update("status", deliveryStatus).Error; err != nil {
					return fmt.Errorf("update delivery status: %w", err)
				}
			}
		}

		statusLog := models.OrderStatusLog{OrderID: order.ID, Status: next, ChangedBy: scope.Username}
		if err := tx.Create(&statusLog).Error; err != nil {
			return fmt.Errorf("create status log: %w", err)
		}

		previous := order.Status
		order.Status = next
		event = newOrderEvent(&order)
		event.PreviousStatus = previous
		event.ChangedBy = scope.Username
		changed = true

		return events.Enqueue(tx, models.EventOrderStatusChanged, order.ID, event)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.WithFields(logrus.Fields{
			"order_id":   id,
			"from":       event.PreviousStatus,
			"to":         event.Status,
			"changed_by": event.ChangedBy,
		}).Info("Order status changed")
		s.publish(ctx, realtime.EventStatus, id, event)
	}

	return s.GetOrder(ctx, id)
}

func (s *orderService) publish(ctx context.Context, eventType, orderID string, payload interface{}) {
	ev, err := realtime.NewEvent(eventType, orderID, payload)
	if err == nil {
		err = s.hub.Publish(ctx, ev)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).WithField("order_id", orderID).Warn("Realtime publish failed")
	}
}
