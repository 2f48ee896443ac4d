package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidOrder is returned when required order fields are missing.
var ErrInvalidOrder = errors.New("orders: missing required order fields")

// Notifier delivers an order confirmation through one channel (email,
// chat bot). Implementations live in the notify package; failures are
// never fatal to placement.
type Notifier interface {
	Name() string
	NotifyOrder(ctx context.Context, o *Order) error
}

// Receipt is the outcome of a successful placement. Warnings collect
// notification channels that failed after the order was persisted.
type Receipt struct {
	OrderID  string   `json:"order_id"`
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

// Service places orders: persist first, notify best-effort.
type Service struct {
	store     *Store
	notifiers []Notifier
	logger    *slog.Logger
}

// NewService creates the placement service.
func NewService(store *Store, logger *slog.Logger, notifiers ...Notifier) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, notifiers: notifiers, logger: logger}
}

// Place validates and persists the order, then fans out to every
// registered notifier. Persistence failure is fatal; each notification
// failure becomes a warning on an otherwise successful receipt.
func (s *Service) Place(ctx context.Context, o *Order) (*Receipt, error) {
	o.Name = strings.TrimSpace(o.Name)
	o.Phone = strings.TrimSpace(o.Phone)
	o.Address = strings.TrimSpace(o.Address)
	o.Email = strings.TrimSpace(o.Email)

	if o.Name == "" || o.Phone == "" || o.Address == "" || len(o.Quote) == 0 {
		return nil, ErrInvalidOrder
	}

	if err := s.store.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("orders: place: %w", err)
	}

	var warnings []string
	for _, n := range s.notifiers {
		if err := n.NotifyOrder(ctx, o); err != nil {
			s.logger.Warn("order notification failed",
				"order_id", o.ID, "channel", n.Name(), "error", err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", n.Name(), err))
		}
	}

	msg := "order placed"
	if len(warnings) > 0 {
		msg = "order placed, but some notifications failed"
	}
	s.logger.Info("order placed", "order_id", o.ID, "warnings", len(warnings))
	return &Receipt{OrderID: o.ID, Message: msg, Warnings: warnings}, nil
}
