package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
	"github.com/rs/zerolog/log"
)

// RoomOrders receives every order event.
const RoomOrders = "orders"

// PickupRoom is the room for orders picked up on date (YYYY-MM-DD).
func PickupRoom(date string) string {
	return "pickup:" + date
}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent routes an event to one room.
type roomEvent struct {
	Room  string
	Event Event
}

// OrderPayload is the order summary carried by order events.
type OrderPayload struct {
	ID           uuid.UUID `json:"id"`
	OrderNumber  string    `json:"order_number"`
	CustomerName string    `json:"customer_name"`
	PickupDate   string    `json:"pickup_date"`
	PickupTime   string    `json:"pickup_time"`
	TotalAmount  int64     `json:"total_amount"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing
// every client's send channel.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				log.Error().Err(err).Str("type", event.Event.Type).Msg("marshal websocket event")
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Room] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client from its room. Callers hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

// Broadcast queues event for every client in room. The event is dropped
// when the queue is full so publishers never block on slow sockets.
func (h *Hub) Broadcast(room string, event Event) {
	select {
	case h.broadcast <- &roomEvent{Room: room, Event: event}:
	default:
		log.Warn().Str("room", room).Str("type", event.Type).Msg("websocket broadcast queue full, event dropped")
	}
}

// PublishOrderEvent broadcasts an order summary to the all-orders room and
// to the room of the order's pickup date.
func (h *Hub) PublishOrderEvent(eventType string, order database.Order) {
	p := OrderPayload{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		PickupTime:   order.PickupTime,
		TotalAmount:  order.TotalAmount,
		Status:       string(order.Status),
		StatusLabel:  enum.OrderStatusLabel(string(order.Status)),
	}
	if order.PickupDate.Valid {
		p.PickupDate = order.PickupDate.Time.Format("2006-01-02")
	}

	payload, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("marshal order event")
		return
	}
	event := Event{Type: eventType, Payload: payload}

	h.Broadcast(RoomOrders, event)
	if p.PickupDate != "" {
		h.Broadcast(PickupRoom(p.PickupDate), event)
	}
}
