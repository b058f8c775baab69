package order

import (
	"context"
	"testing"

	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementations

type mockFulfillment struct {
	ListOrdersFunc        func(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatusFunc func(ctx context.Context, orderID, status string) (string, error)

	listCalls   int
	updateCalls int
}

func (m *mockFulfillment) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.listCalls++
	if m.ListOrdersFunc == nil {
		return nil, nil
	}
	return m.ListOrdersFunc(ctx)
}

func (m *mockFulfillment) UpdateOrderStatus(ctx context.Context, orderID, status string) (string, error) {
	m.updateCalls++
	if m.UpdateOrderStatusFunc == nil {
		return "", nil
	}
	return m.UpdateOrderStatusFunc(ctx, orderID, status)
}

type stubGate bool

func (g stubGate) Authenticated() bool { return bool(g) }

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:     "ord-1",
			Status: domain.StatusPacking,
			Amount: 59.98,
			Items:  []domain.OrderItem{{Name: "Tee", Quantity: 2, Size: "M"}},
			Address: domain.Address{
				FirstName: "Asha", LastName: "Rao", Street: "12 Lake Rd",
				City: "Pune", State: "MH", PinCode: "411001", Country: "IN",
				Phone: "9999999999",
			},
			PaymentMethod: "COD",
		},
		{ID: "ord-2", Status: domain.StatusDelivered, Payment: true},
	}
}

// Tests

func TestBoard_Resync_WithoutSessionIsNoop(t *testing.T) {
	client := &mockFulfillment{}
	b := NewBoard(client, stubGate(false), notify.NewFlash(), zap.NewNop())

	require.NoError(t, b.Resync(context.Background()))

	assert.Equal(t, 0, client.listCalls)
	assert.False(t, b.Loading(), "loading cleared even without a fetch")
}

func TestBoard_Resync_KeepsServerOrder(t *testing.T) {
	client := &mockFulfillment{
		ListOrdersFunc: func(ctx context.Context) ([]domain.Order, error) {
			return sampleOrders(), nil
		},
	}
	b := NewBoard(client, stubGate(true), notify.NewFlash(), zap.NewNop())

	require.NoError(t, b.Resync(context.Background()))

	require.Len(t, b.Orders(), 2)
	assert.Equal(t, "ord-1", b.Orders()[0].ID)
	assert.False(t, b.Loading())
}

func TestBoard_Resync_NilOrdersBecomesEmpty(t *testing.T) {
	client := &mockFulfillment{}
	b := NewBoard(client, stubGate(true), notify.NewFlash(), zap.NewNop())

	require.NoError(t, b.Resync(context.Background()))
	assert.NotNil(t, b.Orders())
	assert.Empty(t, b.Orders())
}

func TestBoard_Resync_FailureNotifiesAndKeepsCollection(t *testing.T) {
	fail := false
	client := &mockFulfillment{
		ListOrdersFunc: func(ctx context.Context) ([]domain.Order, error) {
			if fail {
				return nil, apperrors.NewTransportError("request failed", nil)
			}
			return sampleOrders(), nil
		},
	}
	flash := notify.NewFlash()
	b := NewBoard(client, stubGate(true), flash, zap.NewNop())
	require.NoError(t, b.Resync(context.Background()))

	fail = true
	require.Error(t, b.Resync(context.Background()))

	assert.Len(t, b.Orders(), 2)
	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Failed to fetch orders", toasts[0].Message)
}

func TestBoard_Resync_UnauthorizedOnlyNotifies(t *testing.T) {
	// Unlike the product list, the order board never redirects on 401; the
	// operator just sees the generic fetch failure.
	client := &mockFulfillment{
		ListOrdersFunc: func(ctx context.Context) ([]domain.Order, error) {
			return nil, apperrors.NewUnauthorizedError("session expired")
		},
	}
	flash := notify.NewFlash()
	b := NewBoard(client, stubGate(true), flash, zap.NewNop())

	require.Error(t, b.Resync(context.Background()))

	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Failed to fetch orders", toasts[0].Message)
}

func TestBoard_SetStatus_RejectsUnknownStatus(t *testing.T) {
	client := &mockFulfillment{}
	flash := notify.NewFlash()
	b := NewBoard(client, stubGate(true), flash, zap.NewNop())

	err := b.SetStatus(context.Background(), "ord-1", "Cancelled")

	require.Error(t, err)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, client.updateCalls)
}

func TestBoard_SetStatus_SendsTransitionAndResyncsOnce(t *testing.T) {
	var gotOrderID, gotStatus string
	serverStatus := domain.StatusPacking
	client := &mockFulfillment{
		ListOrdersFunc: func(ctx context.Context) ([]domain.Order, error) {
			return []domain.Order{{ID: "ord-1", Status: serverStatus}}, nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID, status string) (string, error) {
			gotOrderID, gotStatus = orderID, status
			serverStatus = status
			return "Status Updated", nil
		},
	}
	b := NewBoard(client, stubGate(true), notify.NewFlash(), zap.NewNop())
	require.NoError(t, b.Resync(context.Background()))
	listCallsBefore := client.listCalls

	require.NoError(t, b.SetStatus(context.Background(), "ord-1", domain.StatusShipped))

	assert.Equal(t, "ord-1", gotOrderID)
	assert.Equal(t, "Shipped", gotStatus)
	assert.Equal(t, listCallsBefore+1, client.listCalls, "exactly one resync per transition")

	// The refreshed collection reflects the new status and its progress.
	require.Len(t, b.Orders(), 1)
	assert.Equal(t, domain.StatusShipped, b.Orders()[0].Status)
	assert.Equal(t, domain.Progress{Percent: 60, Color: "indigo"}, domain.StatusProgress(b.Orders()[0].Status))
}

func TestBoard_SetStatus_FailureLeavesCollectionUntouched(t *testing.T) {
	client := &mockFulfillment{
		ListOrdersFunc: func(ctx context.Context) ([]domain.Order, error) {
			return sampleOrders(), nil
		},
		UpdateOrderStatusFunc: func(ctx context.Context, orderID, status string) (string, error) {
			return "", apperrors.NewRemoteError("order locked")
		},
	}
	flash := notify.NewFlash()
	b := NewBoard(client, stubGate(true), flash, zap.NewNop())
	require.NoError(t, b.Resync(context.Background()))
	listCallsBefore := client.listCalls

	err := b.SetStatus(context.Background(), "ord-1", domain.StatusShipped)

	require.Error(t, err)
	assert.Equal(t, domain.StatusPacking, b.Orders()[0].Status, "no optimistic local mutation")
	assert.Equal(t, listCallsBefore, client.listCalls, "no resync on failure")
	toasts := flash.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "order locked", toasts[0].Message)
}

func TestBoard_ExpandFlags(t *testing.T) {
	b := NewBoard(&mockFulfillment{}, stubGate(true), notify.NewFlash(), zap.NewNop())

	assert.False(t, b.Expanded("ord-1"), "orders default collapsed")

	b.ToggleExpand("ord-1")
	assert.True(t, b.Expanded("ord-1"))
	assert.False(t, b.Expanded("ord-2"), "flags are independent")

	b.ToggleExpand("ord-1")
	assert.False(t, b.Expanded("ord-1"))
}
