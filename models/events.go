package models

import "time"

// Order event types published to the events topic.
const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderDelivered = "order.delivered"
)

// OrderEvent is the message shape for order lifecycle notifications.
// Publication is best-effort; consumers must tolerate gaps.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id"`
	PaymentMethod string    `json:"payment_method"`
	Total         float64   `json:"total"`
	Timestamp     time.Time `json:"timestamp"`
}
