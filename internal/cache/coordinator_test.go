package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateMarksDependentViews(t *testing.T) {
	c := NewCoordinator()
	raffleID := "raffle-1"

	assert.False(t, c.IsStale(ViewStats, raffleID), "untouched view is fresh")

	c.Invalidate(MutationSubmissionApproved, raffleID)
	assert.True(t, c.IsStale(ViewSubmissions, raffleID))
	assert.True(t, c.IsStale(ViewTickets, raffleID))
	assert.True(t, c.IsStale(ViewStats, raffleID))
	assert.False(t, c.IsStale(ViewRaffles, raffleID), "approval does not touch raffle lists")
	assert.False(t, c.IsStale(ViewStats, "raffle-2"), "other raffles unaffected")
}

// Rejection creates no tickets, so the ticket view must stay fresh.
func TestRejectionLeavesTicketsFresh(t *testing.T) {
	c := NewCoordinator()
	c.Invalidate(MutationSubmissionRejected, "raffle-1")

	assert.True(t, c.IsStale(ViewSubmissions, "raffle-1"))
	assert.True(t, c.IsStale(ViewStats, "raffle-1"))
	assert.False(t, c.IsStale(ViewTickets, "raffle-1"))
}

func TestMarkFresh(t *testing.T) {
	c := NewCoordinator()
	c.Invalidate(MutationSubmissionApproved, "raffle-1")

	c.MarkFresh(ViewStats, "raffle-1")
	assert.False(t, c.IsStale(ViewStats, "raffle-1"))
	assert.True(t, c.IsStale(ViewSubmissions, "raffle-1"), "other views stay stale")
}

func TestInvalidateUnknownMutationIsNoop(t *testing.T) {
	c := NewCoordinator()
	c.Invalidate(Mutation("bogus"), "raffle-1")

	for _, v := range []View{ViewSubmissions, ViewTickets, ViewStats, ViewRaffles, ViewCurrentRaffle} {
		assert.False(t, c.IsStale(v, "raffle-1"))
	}
}

func TestRaffleMutationsInvalidateProcessWideViews(t *testing.T) {
	c := NewCoordinator()
	c.Invalidate(MutationRaffleCreated, "raffle-1")

	// List views are tracked under the empty raffle ID as well
	assert.True(t, c.IsStale(ViewRaffles, ""))
	assert.True(t, c.IsStale(ViewCurrentRaffle, ""))
}

func TestRefreshStaleRunsRegisteredRefreshers(t *testing.T) {
	c := NewCoordinator()
	var statsCalls, submissionCalls int32
	c.RegisterRefresher(ViewStats, func(ctx context.Context, raffleID string) error {
		atomic.AddInt32(&statsCalls, 1)
		return nil
	})
	c.RegisterRefresher(ViewSubmissions, func(ctx context.Context, raffleID string) error {
		atomic.AddInt32(&submissionCalls, 1)
		return nil
	})

	c.Invalidate(MutationSubmissionApproved, "raffle-1")
	require.NoError(t, c.RefreshStale(context.Background(), "raffle-1"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&statsCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&submissionCalls))
	assert.False(t, c.IsStale(ViewStats, "raffle-1"))
	assert.False(t, c.IsStale(ViewSubmissions, "raffle-1"))
	// No refresher for tickets was registered, so the view stays stale
	assert.True(t, c.IsStale(ViewTickets, "raffle-1"))
}

// A transient failure gets one retry; success on the retry marks the view
// fresh.
func TestRefreshStaleRetriesTransientFailure(t *testing.T) {
	c := NewCoordinator()
	var calls int32
	c.RegisterRefresher(ViewStats, func(ctx context.Context, raffleID string) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return &models.TransportError{Err: errors.New("connection reset")}
		}
		return nil
	})

	c.Invalidate(MutationSubmissionRejected, "raffle-1")
	require.NoError(t, c.RefreshStale(context.Background(), "raffle-1"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.False(t, c.IsStale(ViewStats, "raffle-1"))
}

func TestRefreshStaleKeepsViewStaleOnFailure(t *testing.T) {
	c := NewCoordinator()
	refreshErr := errors.New("source of truth unavailable")
	c.RegisterRefresher(ViewStats, func(ctx context.Context, raffleID string) error {
		return refreshErr
	})

	c.Invalidate(MutationSubmissionRejected, "raffle-1")
	err := c.RefreshStale(context.Background(), "raffle-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, refreshErr))
	assert.True(t, c.IsStale(ViewStats, "raffle-1"), "failed refresh must not mark fresh")
}

func TestRefreshStaleNothingPending(t *testing.T) {
	c := NewCoordinator()
	assert.NoError(t, c.RefreshStale(context.Background(), "raffle-1"))
}
