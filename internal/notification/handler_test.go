package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/order"
)

// fakeSender records confirmation sends and can fail on demand.
type fakeSender struct {
	sent []*domain.Order
	err  error
}

func (f *fakeSender) SendOrderConfirmation(o *domain.Order) error {
	f.sent = append(f.sent, o)
	return f.err
}

func encodeEvent(t *testing.T, event order.Event) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestHandler_OrderCreatedSendsConfirmation(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender)

	event := order.Event{
		Type:      order.EventOrderCreated,
		Reference: "ORD-1",
		Order: &domain.Order{
			Reference: "ORD-1",
			Email:     "jurgita@example.lt",
			Items:     []domain.Item{{ID: "A", Name: "Item A", Price: 10.00, Quantity: 1}},
		},
	}

	require.NoError(t, h.HandleEvent(context.Background(), []byte("ORD-1"), encodeEvent(t, event)))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ORD-1", sender.sent[0].Reference)
}

func TestHandler_IgnoresOtherEventTypes(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender)

	event := order.Event{Type: order.EventOrderStatusUpdated, Reference: "ORD-1", Status: domain.StatusCompleted}

	require.NoError(t, h.HandleEvent(context.Background(), []byte("ORD-1"), encodeEvent(t, event)))
	assert.Empty(t, sender.sent)
}

func TestHandler_SkipsOrderWithoutEmail(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender)

	event := order.Event{
		Type:      order.EventOrderCreated,
		Reference: "ORD-1",
		Order:     &domain.Order{Reference: "ORD-1"},
	}

	require.NoError(t, h.HandleEvent(context.Background(), []byte("ORD-1"), encodeEvent(t, event)))
	assert.Empty(t, sender.sent)
}

func TestHandler_MalformedEvent(t *testing.T) {
	h := NewHandler(&fakeSender{})

	err := h.HandleEvent(context.Background(), nil, []byte("not json"))
	assert.Error(t, err)
}

func TestHandler_SendFailurePropagates(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	h := NewHandler(sender)

	event := order.Event{
		Type:      order.EventOrderCreated,
		Reference: "ORD-1",
		Order:     &domain.Order{Reference: "ORD-1", Email: "jurgita@example.lt"},
	}

	assert.Error(t, h.HandleEvent(context.Background(), []byte("ORD-1"), encodeEvent(t, event)))
}
