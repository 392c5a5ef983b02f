package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("legal edges", func(t *testing.T) {
		legal := []struct{ from, to TicketStatus }{
			{TicketStatusOpen, TicketStatusAssigned},
			{TicketStatusOpen, TicketStatusCancelled},
			{TicketStatusAssigned, TicketStatusInProgress},
			{TicketStatusInProgress, TicketStatusWaitingUser},
			{TicketStatusInProgress, TicketStatusWaitingAdmin},
			{TicketStatusInProgress, TicketStatusResolved},
			{TicketStatusWaitingUser, TicketStatusInProgress},
			{TicketStatusWaitingUser, TicketStatusResolved},
			{TicketStatusWaitingAdmin, TicketStatusResolved},
			{TicketStatusResolved, TicketStatusClosed},
			{TicketStatusResolved, TicketStatusOpen},
		}
		for _, edge := range legal {
			assert.True(t, CanTransition(edge.from, edge.to), "%s -> %s", edge.from, edge.to)
		}
	})

	t.Run("illegal edges", func(t *testing.T) {
		illegal := []struct{ from, to TicketStatus }{
			{TicketStatusOpen, TicketStatusResolved},
			{TicketStatusOpen, TicketStatusInProgress},
			{TicketStatusAssigned, TicketStatusResolved},
			{TicketStatusInProgress, TicketStatusClosed},
			{TicketStatusWaitingUser, TicketStatusWaitingAdmin},
			{TicketStatusClosed, TicketStatusOpen},
			{TicketStatusCancelled, TicketStatusOpen},
			{TicketStatusResolved, TicketStatusInProgress},
		}
		for _, edge := range illegal {
			assert.False(t, CanTransition(edge.from, edge.to), "%s -> %s", edge.from, edge.to)
		}
	})

	t.Run("cancel reachable from every non-terminal state except resolved", func(t *testing.T) {
		for _, status := range []TicketStatus{
			TicketStatusOpen,
			TicketStatusAssigned,
			TicketStatusInProgress,
			TicketStatusWaitingUser,
			TicketStatusWaitingAdmin,
		} {
			assert.True(t, CanTransition(status, TicketStatusCancelled), string(status))
		}
		assert.False(t, CanTransition(TicketStatusResolved, TicketStatusCancelled))
	})

	t.Run("terminal states have no outgoing edges", func(t *testing.T) {
		all := []TicketStatus{
			TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress,
			TicketStatusWaitingUser, TicketStatusWaitingAdmin,
			TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled,
		}
		for _, next := range all {
			assert.False(t, CanTransition(TicketStatusClosed, next))
			assert.False(t, CanTransition(TicketStatusCancelled, next))
		}
	})
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, IsTerminal(TicketStatusClosed))
	assert.True(t, IsTerminal(TicketStatusCancelled))
	assert.False(t, IsTerminal(TicketStatusResolved))

	assert.True(t, IsSettled(TicketStatusResolved))
	assert.True(t, IsSettled(TicketStatusClosed))
	assert.True(t, IsSettled(TicketStatusCancelled))
	assert.False(t, IsSettled(TicketStatusWaitingUser))
}

func TestValidPriority(t *testing.T) {
	for _, p := range []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent} {
		assert.True(t, ValidPriority(p), string(p))
	}
	assert.False(t, ValidPriority(TicketPriority("CRITICAL")))
	assert.False(t, ValidPriority(TicketPriority("")))
}
