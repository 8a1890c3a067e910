package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maruko-pickup/api/internal/database"
	"github.com/maruko-pickup/api/internal/enum"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrOrderNotFound     = errors.New("order not found")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)

// transitions is the strict status graph. Terminal states have no entry.
var transitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// ValidStatus reports whether s is one of the five order statuses.
func ValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusPreparing, enum.OrderStatusReady,
		enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the strict graph allows from -> to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusStore defines the DB methods needed to update order status.
type StatusStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// StatusService changes order status. In strict mode only the transitions
// in the status graph are accepted; otherwise staff may set any status.
type StatusService struct {
	store  StatusStore
	events EventPublisher
	strict bool
}

// NewStatusService creates a new StatusService. events may be nil.
func NewStatusService(store StatusStore, events EventPublisher, strict bool) *StatusService {
	return &StatusService{store: store, events: events, strict: strict}
}

// UpdateStatus sets the status of order id. Setting the current status is a
// no-op that returns the order unchanged.
func (s *StatusService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (database.Order, error) {
	if !ValidStatus(status) {
		return database.Order{}, ErrInvalidStatus
	}

	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if string(current.Status) == status {
		return current, nil
	}
	if s.strict && !CanTransition(string(current.Status), status) {
		return database.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	// Conditional on the status just read so a concurrent change is not
	// silently overwritten.
	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:       id,
		Status:   database.OrderStatus(status),
		Status_2: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}

	if s.events != nil {
		s.events.PublishOrderEvent(enum.EventOrderStatusUpdated, updated)
	}
	return updated, nil
}
