// Package notify delivers order confirmation messages outside the order
// transaction. A Queue accepts messages without blocking the request path;
// workers hand them to a Sender with bounded retries.
package notify

import (
	"context"
	"errors"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// Message is the structured payload of an order confirmation.
type Message struct {
	OrderNumber       string        `json:"order_number"`
	CustomerName      string        `json:"customer_name"`
	CustomerEmail     string        `json:"customer_email"`
	CustomerPhone     string        `json:"customer_phone"`
	PickupDate        string        `json:"pickup_date"` // YYYY-MM-DD
	PickupTime        string        `json:"pickup_time"`
	TotalAmount       int64         `json:"total_amount"`
	PriceUndetermined bool          `json:"is_price_undetermined"`
	Items             []MessageItem `json:"items"`
}

// MessageItem is one ordered line as the customer should read it.
type MessageItem struct {
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	Usage       string `json:"usage,omitempty"`
	Flavor      string `json:"flavor,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// Queue accepts messages for later delivery.
type Queue interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
