package order

import (
	"context"

	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/metrics"
	"atelier/internal/notify"

	"go.uber.org/zap"
)

type FulfillmentClient interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (string, error)
}

type SessionGate interface {
	Authenticated() bool
}

// Board owns the fetched order collection in server-returned order and the
// per-order expand flags. Orders are never created or deleted here; the only
// mutation is a status transition, and every successful transition ends in a
// full resync rather than a local patch.
type Board struct {
	client  FulfillmentClient
	session SessionGate
	notify  notify.Notifier
	logger  *zap.Logger

	orders   []domain.Order
	expanded map[string]bool
	loading  bool
}

func NewBoard(client FulfillmentClient, session SessionGate, notifier notify.Notifier, logger *zap.Logger) *Board {
	return &Board{
		client:   client,
		session:  session,
		notify:   notifier,
		logger:   logger,
		expanded: make(map[string]bool),
		loading:  true,
	}
}

// Resync replaces the order collection with a full re-fetch. Without a
// session there is nothing to fetch and the loading affordance clears.
func (b *Board) Resync(ctx context.Context) error {
	if !b.session.Authenticated() {
		b.loading = false
		return nil
	}

	b.loading = true
	defer func() { b.loading = false }()

	metrics.CollectionResyncs.WithLabelValues("orders").Inc()

	orders, err := b.client.ListOrders(ctx)
	if err != nil {
		b.logger.Warn("fetching orders failed", zap.Error(err))
		b.notify.Error("Failed to fetch orders")
		return err
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	b.orders = orders
	return nil
}

func (b *Board) Orders() []domain.Order {
	return b.orders
}

func (b *Board) Loading() bool {
	return b.loading
}

// SetStatus sends the transition immediately, with no confirmation and no
// optimistic local update. On success the whole collection is re-fetched; on
// failure nothing local changed, so the visible status reverts on the next
// render by itself.
func (b *Board) SetStatus(ctx context.Context, orderID, status string) error {
	if !domain.ValidStatus(status) {
		b.notify.Error("invalid order status")
		return apperrors.NewValidationError("status", "invalid order status")
	}

	if _, err := b.client.UpdateOrderStatus(ctx, orderID, status); err != nil {
		b.logger.Warn("updating order status failed",
			zap.String("orderId", orderID),
			zap.String("status", status),
			zap.Error(err))
		b.notify.Error(statusMessage(err))
		return err
	}

	return b.Resync(ctx)
}

// ToggleExpand flips an order's presentation-only expanded flag.
func (b *Board) ToggleExpand(orderID string) {
	b.expanded[orderID] = !b.expanded[orderID]
}

// Expanded reports the expand flag; orders default collapsed.
func (b *Board) Expanded(orderID string) bool {
	return b.expanded[orderID]
}

func statusMessage(err error) string {
	if re, ok := apperrors.IsRemoteError(err); ok && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
