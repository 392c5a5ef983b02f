package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher(t *testing.T) {
	t.Run("delivers to subscribers of the event type", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		var received []Event
		dispatcher.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
			received = append(received, event)
			return nil
		})

		err := dispatcher.Publish(context.Background(), Event{ID: "e1", Type: EventTicketCreated, TicketID: 7})
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, int64(7), received[0].TicketID)
	})

	t.Run("does not deliver other event types", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		called := false
		dispatcher.Subscribe(EventTicketResolved, func(ctx context.Context, event Event) error {
			called = true
			return nil
		})

		err := dispatcher.Publish(context.Background(), Event{Type: EventTicketClosed})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("a failing handler never blocks the rest", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		var order []string
		dispatcher.Subscribe(EventTicketEscalated, func(ctx context.Context, event Event) error {
			order = append(order, "first")
			return errors.New("boom")
		})
		dispatcher.Subscribe(EventTicketEscalated, func(ctx context.Context, event Event) error {
			order = append(order, "second")
			return nil
		})

		err := dispatcher.Publish(context.Background(), Event{Type: EventTicketEscalated})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("publish with no subscribers is a no-op", func(t *testing.T) {
		dispatcher := NewInMemoryDispatcher()
		assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned}))
	})
}
