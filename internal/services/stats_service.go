package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rafflehq/raffle-backend/internal/cache"
	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/repositories"
	"github.com/rafflehq/raffle-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure StatsServiceImpl implements StatsService
var _ StatsService = (*StatsServiceImpl)(nil)

// StatsServiceImpl derives per-raffle summary aggregates. Snapshots are
// replaced wholesale on recompute, never incrementally mutated, so a
// partial update can never drift the counts.
type StatsServiceImpl struct {
	raffleRepo     repositories.RaffleRepository
	submissionRepo repositories.SubmissionRepository
	ticketRepo     repositories.TicketRepository
	coordinator    *cache.Coordinator

	mu        sync.Mutex
	snapshots map[string]*models.RaffleStats
}

// NewStatsService creates a new StatsServiceImpl
func NewStatsService(
	raffleRepo repositories.RaffleRepository,
	submissionRepo repositories.SubmissionRepository,
	ticketRepo repositories.TicketRepository,
	coordinator *cache.Coordinator,
) *StatsServiceImpl {
	return &StatsServiceImpl{
		raffleRepo:     raffleRepo,
		submissionRepo: submissionRepo,
		ticketRepo:     ticketRepo,
		coordinator:    coordinator,
		snapshots:      make(map[string]*models.RaffleStats),
	}
}

// GetStats returns the raffle's stats. A cached snapshot is served only
// while the coordinator reports the view fresh; otherwise the aggregate is
// recomputed from the submission and ticket collections first.
func (s *StatsServiceImpl) GetStats(ctx context.Context, raffleID primitive.ObjectID) (*models.RaffleStats, error) {
	key := raffleID.Hex()

	s.mu.Lock()
	snapshot, ok := s.snapshots[key]
	s.mu.Unlock()
	if ok && !s.coordinator.IsStale(cache.ViewStats, key) {
		return snapshot, nil
	}

	if err := s.Refresh(ctx, key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[key], nil
}

// Refresh recomputes the aggregate from the source of truth and replaces
// the cached snapshot. It is idempotent and safe to retry, so it doubles
// as the coordinator's stats refresher.
func (s *StatsServiceImpl) Refresh(ctx context.Context, raffleID string) error {
	id, err := primitive.ObjectIDFromHex(raffleID)
	if err != nil {
		return fmt.Errorf("invalid raffle id %q: %w", raffleID, models.ErrNotFound)
	}

	raffle, err := s.raffleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("raffle lookup: %w", err)
	}

	var (
		submissions []*models.Submission
		issuedCount int64
	)
	err = utils.WithRetry(ctx, func() error {
		var ferr error
		submissions, ferr = s.submissionRepo.FindAllByRaffle(ctx, id)
		if ferr != nil {
			return ferr
		}
		issuedCount, ferr = s.ticketRepo.CountByRaffle(ctx, id)
		return ferr
	})
	if err != nil {
		slog.Error("Failed to recompute stats", "error", err, "raffleId", raffleID)
		return fmt.Errorf("failed to recompute stats: %w", err)
	}

	stats := aggregate(raffle, submissions, issuedCount)

	s.mu.Lock()
	s.snapshots[raffleID] = stats
	s.mu.Unlock()
	s.coordinator.MarkFresh(cache.ViewStats, raffleID)
	slog.Debug("Stats recomputed", "raffleId", raffleID, "submissions", stats.TotalSubmissions, "revenue", stats.Revenue)
	return nil
}

// aggregate is the pure reduction over a raffle's submissions. Revenue
// counts approved submissions only.
func aggregate(raffle *models.Raffle, submissions []*models.Submission, issuedCount int64) *models.RaffleStats {
	stats := &models.RaffleStats{
		RaffleID:   raffle.ID.Hex(),
		ComputedAt: time.Now(),
	}
	for _, sub := range submissions {
		stats.TotalSubmissions++
		stats.RequestedTickets += sub.TicketQuantity
		switch sub.Status {
		case models.SubmissionStatusPending:
			stats.PendingSubmissions++
		case models.SubmissionStatusApproved:
			stats.ApprovedSubmissions++
			stats.Revenue += float64(sub.TicketQuantity) * raffle.TicketPrice
		case models.SubmissionStatusRejected:
			stats.RejectedSubmissions++
		}
	}
	stats.IssuedTickets = int(issuedCount)
	return stats
}
