package models

import "fmt"

// OrderStatus is a step of the order lifecycle
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderAccepted   OrderStatus = "ACCEPTED"
	OrderPreparing  OrderStatus = "PREPARING"
	OrderReady      OrderStatus = "READY"
	OrderDelivering OrderStatus = "DELIVERING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRejected   OrderStatus = "REJECTED"
)

// orderTransitions lists the statuses reachable from each status.
// Terminal statuses have no entry. Cancellation is only possible until the order is ready
// and rejection only while it is pending, so not every non-terminal status can reach them.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderAccepted, OrderCancelled, OrderRejected},
	OrderAccepted:   {OrderPreparing, OrderCancelled},
	OrderPreparing:  {OrderReady, OrderDelivering, OrderCancelled},
	OrderReady:      {OrderDelivering, OrderCompleted},
	OrderDelivering: {OrderCompleted},
}

// AllOrderStatuses returns every status in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderPending, OrderAccepted, OrderPreparing, OrderReady,
		OrderDelivering, OrderCompleted, OrderCancelled, OrderRejected,
	}
}

// ParseOrderStatus validates a raw status string
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	for _, known := range AllOrderStatuses() {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	_, ok := orderTransitions[s]
	return !ok
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Staying on the same status is always allowed and treated as a no-op by callers.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// DeliveryStatusFor returns the delivery status implied by an order status, if any
func DeliveryStatusFor(s OrderStatus) (DeliveryStatus, bool) {
	switch s {
	case OrderDelivering:
		return DeliveryOnTheWay, true
	case OrderCompleted:
		return DeliveryDelivered, true
	default:
		return "", false
	}
}
