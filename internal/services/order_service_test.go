package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/realtime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderService(db *gorm.DB) (OrderService, realtime.Hub) {
	hub := realtime.NewMemoryHub(quietLogger())
	return NewOrderService(db, hub, quietLogger()), hub
}

func dineInOrder(f fixture) CreateOrderInput {
	return CreateOrderInput{
		CustomerName:  "Ann",
		CustomerEmail: "ann@example.com",
		CustomerPhone: "+15550001",
		Items: []OrderItemInput{
			{FoodID: f.burger.ID, Quantity: 2},
			{FoodID: f.fries.ID, Quantity: 1},
		},
	}
}

func TestCreateOrderComputesSnapshotTotal(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)

	order, err := svc.CreateOrder(context.Background(), dineInOrder(f))
	require.NoError(t, err)

	assert.Equal(t, "30.97", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.OrderTypeDineIn, order.Type)
	require.NotNil(t, order.RestaurantID)
	assert.Equal(t, f.restaurant.ID, *order.RestaurantID)
	require.Len(t, order.Items, 2)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.LineTotal())
		require.NotNil(t, item.Food)
	}
	assert.True(t, sum.Equal(order.TotalAmount))

	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentPending, order.Payment.Status)
	assert.Equal(t, models.PaymentCard, order.Payment.Method)
	assert.True(t, order.Payment.Amount.Equal(order.TotalAmount))

	require.NotNil(t, order.Chat)
	assert.Empty(t, order.Chat.Messages)
	assert.Nil(t, order.Delivery)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.OrderPending, order.StatusHistory[0].Status)

	var outbox models.OutboxEvent
	require.NoError(t, db.First(&outbox).Error)
	assert.Equal(t, models.EventOrderCreated, outbox.RoutingKey)
	assert.Equal(t, order.ID, outbox.AggregateID)
}

func TestCreateOrderPriceIsNotRecomputed(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	require.NoError(t, db.Model(f.burger).Update("price", decimal.RequireFromString("20.00")).Error)
	require.NoError(t, db.Delete(f.fries).Error)

	reloaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.97", reloaded.TotalAmount.StringFixed(2))
	for _, item := range reloaded.Items {
		require.NotNil(t, item.Food, "soft-deleted food must still resolve")
		if item.FoodID == f.burger.ID {
			assert.Equal(t, "12.99", item.Price.StringFixed(2))
		}
	}
}

func TestCreateOrderUnknownFoodWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)

	in := dineInOrder(f)
	in.Type = models.OrderTypeDelivery
	in.Address = "1 Main St"
	in.Items = append(in.Items, OrderItemInput{FoodID: "missing-food", Quantity: 1})

	_, err := svc.CreateOrder(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.ErrFoodNotFound, svcErr.Code)

	for _, model := range []interface{}{&models.Order{}, &models.OrderItem{}, &models.Delivery{}, &models.Payment{}, &models.Chat{}, &models.Customer{}, &models.OutboxEvent{}} {
		assert.Zero(t, countRows(t, db, model), "%T", model)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)

	testCases := []struct {
		name   string
		mutate func(in *CreateOrderInput)
		code   string
	}{
		{"no items", func(in *CreateOrderInput) { in.Items = nil }, models.ErrMissingFields},
		{"no contact", func(in *CreateOrderInput) { in.CustomerEmail, in.CustomerPhone = "", "" }, models.ErrMissingFields},
		{"delivery without address", func(in *CreateOrderInput) { in.Type = models.OrderTypeDelivery }, models.ErrMissingFields},
		{"unknown type", func(in *CreateOrderInput) { in.Type = "DRONE" }, models.ErrValidationFailed},
		{"unknown payment", func(in *CreateOrderInput) { in.PaymentMethod = "BITCOIN" }, models.ErrValidationFailed},
		{"negative quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = -1 }, models.ErrValidationFailed},
		{"missing food id", func(in *CreateOrderInput) { in.Items[0].FoodID = "" }, models.ErrMissingFields},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			in := dineInOrder(f)
			tt.mutate(&in)

			_, err := svc.CreateOrder(context.Background(), in)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var svcErr *Error
			require.True(t, errors.As(err, &svcErr))
			assert.Equal(t, tt.code, svcErr.Code)
		})
	}
	assert.Zero(t, countRows(t, db, &models.Order{}))
}

func TestCreateOrderRejectsUnavailableAndMixedRestaurants(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	require.NoError(t, db.Model(f.fries).Update("available", false).Error)
	_, err := svc.CreateOrder(ctx, dineInOrder(f))
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.ErrFoodUnavailable, svcErr.Code)

	other := createRestaurant(t, db, "Pizza Express")
	pizza := createFood(t, db, other, f.category, "Margherita", "9.50")
	in := dineInOrder(f)
	in.Items = []OrderItemInput{{FoodID: f.burger.ID}, {FoodID: pizza.ID}}
	_, err = svc.CreateOrder(ctx, in)
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.ErrMixedRestaurants, svcErr.Code)
}

func TestCreateOrderRejectsDisabledRestaurant(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)

	require.NoError(t, db.Model(f.restaurant).Update("enabled", false).Error)
	_, err := svc.CreateOrder(context.Background(), dineInOrder(f))

	assert.True(t, errors.Is(err, ErrValidation))
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.ErrRestaurantUnavailable, svcErr.Code)
	assert.Equal(t, f.restaurant.ID, svcErr.Details["restaurantId"])
	assert.Zero(t, countRows(t, db, &models.Order{}))
	assert.Zero(t, countRows(t, db, &models.Customer{}))
	assert.Zero(t, countRows(t, db, &models.OutboxEvent{}))
}

func TestCreateOrderDefaultsQuantityAndAcceptsLegacyID(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)

	in := dineInOrder(f)
	in.Items = []OrderItemInput{{ID: f.fries.ID}}
	order, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Equal(t, "4.99", order.TotalAmount.StringFixed(2))
}

func TestCreateOrderReusesCustomerByEmailThenPhone(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	byPhone := dineInOrder(f)
	byPhone.CustomerEmail = ""
	second, err := svc.CreateOrder(ctx, byPhone)
	require.NoError(t, err)

	newEmail := dineInOrder(f)
	newEmail.CustomerEmail = "other@example.com"
	third, err := svc.CreateOrder(ctx, newEmail)
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Equal(t, first.CustomerID, third.CustomerID, "phone match reuses the customer")
	assert.Equal(t, int64(1), countRows(t, db, &models.Customer{}))
}

func TestCreateDeliveryOrder(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)

	in := dineInOrder(f)
	in.Type = models.OrderTypeDelivery
	in.Address = "1 Main St"
	in.PaymentMethod = models.PaymentCash

	order, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, order.Delivery)
	assert.Equal(t, models.DeliveryPending, order.Delivery.Status)
	assert.Equal(t, "1 Main St", order.Delivery.Address)
	assert.Equal(t, models.PaymentCash, order.Delivery.PaymentMethod)
	assert.Equal(t, models.PaymentCash, order.Payment.Method)
}

func TestUpdateOrderStatusDeliverySideEffects(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	in := dineInOrder(f)
	in.Type = models.OrderTypeDelivery
	in.Address = "1 Main St"
	order, err := svc.CreateOrder(ctx, in)
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{models.OrderAccepted, models.OrderPreparing, models.OrderDelivering} {
		order, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, status)
		require.NoError(t, err)
	}
	assert.Equal(t, models.DeliveryOnTheWay, order.Delivery.Status)

	order, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.Equal(t, models.DeliveryDelivered, order.Delivery.Status)
	assert.Len(t, order.StatusHistory, 5)
	assert.Equal(t, "danger", order.StatusHistory[4].ChangedBy)

	var changed int64
	db.Model(&models.OutboxEvent{}).Where("routing_key = ?", models.EventOrderStatusChanged).Count(&changed)
	assert.Equal(t, int64(4), changed)
}

func TestUpdateOrderStatusDineInHasNoDelivery(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{models.OrderAccepted, models.OrderPreparing, models.OrderReady, models.OrderCompleted} {
		order, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, status)
		require.NoError(t, err)
	}

	assert.Equal(t, models.OrderCompleted, order.Status)
	assert.Equal(t, "30.97", order.TotalAmount.StringFixed(2))
	assert.Zero(t, countRows(t, db, &models.Delivery{}))
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.ErrInvalidStatusTransition, svcErr.Code)

	_, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderCancelled)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderPending)
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, "SHIPPED")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateOrderStatusLosesRaceWithConcurrentWriter(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	// Another admin accepts the order between our read and our guarded update
	raced := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:concurrent_accept", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "orders" {
			return
		}
		raced = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE orders SET status = ? WHERE id = ?", models.OrderAccepted, order.ID).Error)
	}))

	_, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderRejected)
	require.True(t, raced)
	assert.True(t, errors.Is(err, ErrConflict))
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, models.ErrStatusChanged, svcErr.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderPending, stored.Status, "losing transaction is rolled back")
	assert.Equal(t, int64(1), countRows(t, db, &models.OrderStatusLog{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.OutboxEvent{}))
}

func TestUpdateOrderStatusSameStatusIsNoop(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		order, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderAccepted)
		require.NoError(t, err)
	}

	assert.Equal(t, models.OrderAccepted, order.Status)
	assert.Len(t, order.StatusHistory, 2)
}

func TestUpdateOrderStatusScopedToRestaurant(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, restaurantAdmin("someone-else"), order.ID, models.OrderAccepted)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.UpdateOrderStatus(ctx, restaurantAdmin(f.restaurant.ID), order.ID, models.OrderAccepted)
	assert.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, superAdmin, "missing", models.OrderAccepted)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateOrderStatusPublishesRealtimeEvent(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, hub := newOrderService(db)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	events, cancel, err := hub.Subscribe(ctx, order.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = svc.UpdateOrderStatus(ctx, superAdmin, order.ID, models.OrderAccepted)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, realtime.EventStatus, ev.Type)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		assert.Equal(t, "ACCEPTED", payload["status"])
		assert.Equal(t, "PENDING", payload["previousStatus"])
	case <-time.After(time.Second):
		t.Fatal("no status event published")
	}
}

func TestListOrdersAndDeliveriesScope(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc, _ := newOrderService(db)
	ctx := context.Background()

	delivery := dineInOrder(f)
	delivery.Type = models.OrderTypeDelivery
	delivery.Address = "1 Main St"
	_, err := svc.CreateOrder(ctx, delivery)
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, dineInOrder(f))
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, superAdmin, OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt), "newest first")

	onlyDelivery, err := svc.ListOrders(ctx, restaurantAdmin(f.restaurant.ID), OrderFilter{Type: models.OrderTypeDelivery})
	require.NoError(t, err)
	assert.Len(t, onlyDelivery, 1)

	none, err := svc.ListOrders(ctx, restaurantAdmin("other"), OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	deliveries, err := svc.ListDeliveries(ctx, restaurantAdmin(f.restaurant.ID))
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.NotNil(t, deliveries[0].Order)
	assert.Equal(t, "Ann", deliveries[0].Order.CustomerName())

	deliveries, err = svc.ListDeliveries(ctx, restaurantAdmin("other"))
	require.NoError(t, err)
	assert.Empty(t, deliveries)
}

func TestGetOrderNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newOrderService(db)

	_, err := svc.GetOrder(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}
