package apiclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatest_NewFetchCancelsPrevious(t *testing.T) {
	var l Latest

	ctxA, ticketA := l.Begin(context.Background())
	ctxB, ticketB := l.Begin(context.Background())

	assert.ErrorIs(t, ctxA.Err(), context.Canceled)
	assert.NoError(t, ctxB.Err())
	assert.False(t, l.Current(ticketA))
	assert.True(t, l.Current(ticketB))
}

func TestLatest_OutOfOrderResultsOnlyApplyNewest(t *testing.T) {
	var l Latest
	applied := ""

	_, ticketA := l.Begin(context.Background())
	_, ticketB := l.Begin(context.Background())

	commit := func(t Ticket, value string) {
		if l.Current(t) {
			applied = value
		}
	}

	commit(ticketB, "B")
	commit(ticketA, "A")
	assert.Equal(t, "B", applied)
}

func TestLatest_CancelInvalidates(t *testing.T) {
	var l Latest
	ctx, ticket := l.Begin(context.Background())
	l.Cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, l.Current(ticket))
	assert.False(t, l.Current(Ticket{}))
}

func TestLatest_FinishKeepsTicketCurrent(t *testing.T) {
	var l Latest
	ctx, ticket := l.Begin(context.Background())
	l.Finish(ticket)

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, l.Current(ticket))
}
