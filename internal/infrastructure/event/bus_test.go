package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type billEvent struct {
	shared.BaseDomainEvent
	InvoiceNo string `json:"invoice_no"`
}

func billGenerated(eventType string) *billEvent {
	return &billEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Bill", uuid.New()),
		InvoiceNo:       "MUM/2526/B-1",
	}
}

// recordingHandler collects every event it receives; err, when set, is
// returned from Handle so dispatch error paths can be exercised.
type recordingHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) failWith(err error) *recordingHandler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
	return h
}

func (h *recordingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func newBus() *InMemoryEventBus {
	return NewInMemoryEventBus(zap.NewNop())
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to subscribed handler", func(t *testing.T) {
		bus := newBus()
		handler := newRecordingHandler("BillGenerated")
		bus.Subscribe(handler, "BillGenerated")

		event := billGenerated("BillGenerated")
		require.NoError(t, bus.Publish(context.Background(), event))

		require.Len(t, handler.received(), 1)
		assert.Equal(t, event, handler.received()[0])
	})

	t.Run("delivers every event in a batch", func(t *testing.T) {
		bus := newBus()
		handler := newRecordingHandler("BillGenerated")
		bus.Subscribe(handler, "BillGenerated")

		err := bus.Publish(context.Background(),
			billGenerated("BillGenerated"), billGenerated("BillGenerated"))

		require.NoError(t, err)
		assert.Len(t, handler.received(), 2)
	})

	t.Run("fans out to every matching handler", func(t *testing.T) {
		bus := newBus()
		first := newRecordingHandler("BillGenerated")
		second := newRecordingHandler("BillGenerated")
		bus.Subscribe(first, "BillGenerated")
		bus.Subscribe(second, "BillGenerated")

		require.NoError(t, bus.Publish(context.Background(), billGenerated("BillGenerated")))

		assert.Len(t, first.received(), 1)
		assert.Len(t, second.received(), 1)
	})

	t.Run("handler without event types receives everything", func(t *testing.T) {
		bus := newBus()
		wildcard := newRecordingHandler()
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(context.Background(), billGenerated("WalletCredited")))

		assert.Len(t, wildcard.received(), 1)
	})

	t.Run("failing handler does not block the rest", func(t *testing.T) {
		bus := newBus()
		broken := newRecordingHandler("BillGenerated").failWith(errors.New("projection refresh failed"))
		healthy := newRecordingHandler("BillGenerated")
		bus.Subscribe(broken, "BillGenerated")
		bus.Subscribe(healthy, "BillGenerated")

		require.NoError(t, bus.Publish(context.Background(), billGenerated("BillGenerated")))

		assert.Len(t, broken.received(), 1)
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("no matching handlers is not an error", func(t *testing.T) {
		bus := newBus()
		handler := newRecordingHandler("WalletCredited")
		bus.Subscribe(handler, "WalletCredited")

		require.NoError(t, bus.Publish(context.Background(), billGenerated("BillGenerated")))

		assert.Empty(t, handler.received())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newBus()
	handler := newRecordingHandler("BillGenerated")
	bus.Subscribe(handler, "BillGenerated")

	_ = bus.Publish(context.Background(), billGenerated("BillGenerated"))
	require.Len(t, handler.received(), 1)

	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), billGenerated("BillGenerated"))
	assert.Len(t, handler.received(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := newBus()
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))

	handler := newRecordingHandler("BillGenerated")
	bus.Subscribe(handler, "BillGenerated")
	require.NoError(t, bus.Publish(ctx, billGenerated("BillGenerated")))
	assert.Len(t, handler.received(), 1)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
}
