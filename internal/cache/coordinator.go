// Package cache tracks which derived views are invalidated by which
// mutations. The coordinator is the process-wide invalidation registry:
// initialized empty at startup, entries are only ever marked stale or
// fresh, never removed. Stale views must be refetched from the source of
// truth before the next read; a stale read is never served silently.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/rafflehq/raffle-backend/internal/utils"
	"golang.org/x/exp/slog"
)

// View names a derived aggregate the coordinator tracks.
type View string

const (
	ViewSubmissions   View = "submissions"
	ViewTickets       View = "tickets"
	ViewStats         View = "stats"
	ViewRaffles       View = "raffles"
	ViewCurrentRaffle View = "currentRaffle"
)

// Mutation names a write that invalidates derived views.
type Mutation string

const (
	MutationSubmissionCreated  Mutation = "submissionCreated"
	MutationSubmissionApproved Mutation = "submissionApproved"
	MutationSubmissionRejected Mutation = "submissionRejected"
	MutationRaffleCreated      Mutation = "raffleCreated"
	MutationRaffleUpdated      Mutation = "raffleUpdated"
	MutationRaffleDeleted      Mutation = "raffleDeleted"
)

// dependencies maps each mutation kind to the views it invalidates.
// Rejection leaves ticket lists untouched: no tickets are created or
// destroyed on that path.
var dependencies = map[Mutation][]View{
	MutationSubmissionCreated:  {ViewSubmissions, ViewStats},
	MutationSubmissionApproved: {ViewSubmissions, ViewTickets, ViewStats},
	MutationSubmissionRejected: {ViewSubmissions, ViewStats},
	MutationRaffleCreated:      {ViewRaffles, ViewCurrentRaffle},
	MutationRaffleUpdated:      {ViewRaffles, ViewCurrentRaffle, ViewStats},
	MutationRaffleDeleted:      {ViewRaffles, ViewCurrentRaffle, ViewSubmissions, ViewTickets, ViewStats},
}

// Refresher refetches one view for one raffle from the source of truth.
// Refreshers must be idempotent and safe to retry.
type Refresher func(ctx context.Context, raffleID string) error

type viewKey struct {
	view     View
	raffleID string
}

// Coordinator is the invalidation registry. All access is serialized under
// an internal mutex; refreshers for distinct views run in parallel.
type Coordinator struct {
	mu         sync.Mutex
	stale      map[viewKey]bool
	refreshers map[View]Refresher
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		stale:      make(map[viewKey]bool),
		refreshers: make(map[View]Refresher),
	}
}

// RegisterRefresher installs the refresh function for a view. At most one
// refresher per view; later registrations replace earlier ones.
func (c *Coordinator) RegisterRefresher(view View, fn Refresher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshers[view] = fn
}

// Invalidate marks every view dependent on the mutation stale for the
// given raffle. Views scoped to the whole process (raffle lists, current
// raffle) are tracked under an empty raffle ID as well.
func (c *Coordinator) Invalidate(mutation Mutation, raffleID string) {
	views, ok := dependencies[mutation]
	if !ok {
		slog.Warn("Unknown mutation kind, nothing invalidated", "mutation", mutation)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range views {
		c.stale[viewKey{view: v, raffleID: raffleID}] = true
		if v == ViewRaffles || v == ViewCurrentRaffle {
			c.stale[viewKey{view: v, raffleID: ""}] = true
		}
	}
	slog.Debug("Views invalidated", "mutation", mutation, "raffleId", raffleID, "views", len(views))
}

// IsStale reports whether the view must be refetched before its next read.
// A view the coordinator has never seen is not stale.
func (c *Coordinator) IsStale(view View, raffleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale[viewKey{view: view, raffleID: raffleID}]
}

// MarkFresh records that the view has been refetched from the source of
// truth.
func (c *Coordinator) MarkFresh(view View, raffleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale[viewKey{view: view, raffleID: raffleID}] = false
}

// RefreshStale runs the registered refreshers for every stale view of the
// given raffle in parallel. Each refresher is retried once on transient
// failure; a view is marked fresh only when its refresher succeeds. The
// first error is returned after all refreshers finish.
func (c *Coordinator) RefreshStale(ctx context.Context, raffleID string) error {
	c.mu.Lock()
	var pending []View
	for key, isStale := range c.stale {
		if isStale && key.raffleID == raffleID {
			if _, ok := c.refreshers[key.view]; ok {
				pending = append(pending, key.view)
			}
		}
	}
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		errc = make(chan error, len(pending))
	)
	for _, view := range pending {
		view := view
		c.mu.Lock()
		fn := c.refreshers[view]
		c.mu.Unlock()
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := utils.WithRetry(ctx, func() error { return fn(ctx, raffleID) })
			if err != nil {
				slog.Error("View refresh failed", "view", view, "raffleId", raffleID, "error", err)
				errc <- fmt.Errorf("refresh %s: %w", view, err)
				return
			}
			c.MarkFresh(view, raffleID)
		}()
	}
	wg.Wait()
	close(errc)
	return <-errc
}
