package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	testCases := []struct {
		from     OrderStatus
		to       OrderStatus
		expected bool
	}{
		{OrderPending, OrderAccepted, true},
		{OrderPending, OrderRejected, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderPreparing, false},
		{OrderAccepted, OrderPreparing, true},
		{OrderAccepted, OrderRejected, false},
		{OrderPreparing, OrderReady, true},
		{OrderPreparing, OrderDelivering, true},
		{OrderReady, OrderCompleted, true},
		{OrderReady, OrderCancelled, false},
		{OrderDelivering, OrderCancelled, false},
		{OrderPreparing, OrderRejected, false},
		{OrderDelivering, OrderCompleted, true},
		{OrderDelivering, OrderReady, false},
		{OrderCompleted, OrderPending, false},
		{OrderCancelled, OrderAccepted, false},
		{OrderRejected, OrderPending, false},
		{OrderCompleted, OrderCompleted, true},
	}

	for _, tt := range testCases {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range AllOrderStatuses() {
		terminal := s == OrderCompleted || s == OrderCancelled || s == OrderRejected
		assert.Equal(t, terminal, s.IsTerminal(), s)
		assert.Equal(t, terminal, len(s.NextStatuses()) == 0, s)
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("READY")
	require.NoError(t, err)
	assert.Equal(t, OrderReady, s)

	_, err = ParseOrderStatus("ready")
	assert.Error(t, err)

	_, err = ParseOrderStatus("SHIPPED")
	assert.Error(t, err)
}

func TestDeliveryStatusFor(t *testing.T) {
	d, ok := DeliveryStatusFor(OrderDelivering)
	assert.True(t, ok)
	assert.Equal(t, DeliveryOnTheWay, d)

	d, ok = DeliveryStatusFor(OrderCompleted)
	assert.True(t, ok)
	assert.Equal(t, DeliveryDelivered, d)

	_, ok = DeliveryStatusFor(OrderReady)
	assert.False(t, ok)
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Price: decimal.RequireFromString("12.99"), Quantity: 2}
	assert.True(t, decimal.RequireFromString("25.98").Equal(item.LineTotal()))
}

func TestCustomerDisplayName(t *testing.T) {
	email := "a@example.com"
	phone := "+100"

	assert.Equal(t, "Ann", (&Customer{Name: "Ann", Email: &email}).DisplayName())
	assert.Equal(t, email, (&Customer{Email: &email, Phone: &phone}).DisplayName())
	assert.Equal(t, phone, (&Customer{Phone: &phone}).DisplayName())
	assert.Equal(t, "Unknown", (&Customer{}).DisplayName())

	var missing *Customer
	assert.Equal(t, "Unknown", missing.DisplayName())
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("12345"))

	assert.NotEqual(t, "12345", u.PasswordHash)
	assert.True(t, u.CheckPassword("12345"))
	assert.False(t, u.CheckPassword("54321"))
}

func TestOAuthClientVerifyPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("s3cret"))
	c := &OAuthClient{ID: "c1", Secret: u.PasswordHash, UserID: "u1"}

	assert.True(t, c.VerifyPassword("s3cret"))
	assert.False(t, c.VerifyPassword("nope"))
	assert.Equal(t, "u1", c.GetUserID())
	assert.False(t, c.IsPublic())
}
