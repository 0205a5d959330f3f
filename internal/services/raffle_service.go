package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafflehq/raffle-backend/internal/cache"
	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/numberspace"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"github.com/rafflehq/raffle-backend/internal/repositories"
	"github.com/rafflehq/raffle-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RaffleServiceImpl implements RaffleService
var _ RaffleService = (*RaffleServiceImpl)(nil)

// RaffleServiceImpl handles raffle lifecycle, ticket listings and candidate
// number generation.
type RaffleServiceImpl struct {
	raffleRepo     repositories.RaffleRepository
	submissionRepo repositories.SubmissionRepository
	ticketRepo     repositories.TicketRepository
	allocator      *numberspace.Allocator
	coordinator    *cache.Coordinator
	maxPageSize    int
}

// NewRaffleService creates a new RaffleServiceImpl
func NewRaffleService(
	raffleRepo repositories.RaffleRepository,
	submissionRepo repositories.SubmissionRepository,
	ticketRepo repositories.TicketRepository,
	allocator *numberspace.Allocator,
	coordinator *cache.Coordinator,
	maxPageSize int,
) *RaffleServiceImpl {
	return &RaffleServiceImpl{
		raffleRepo:     raffleRepo,
		submissionRepo: submissionRepo,
		ticketRepo:     ticketRepo,
		allocator:      allocator,
		coordinator:    coordinator,
		maxPageSize:    maxPageSize,
	}
}

// Create creates a raffle in DRAFT state. The digit width is validated and
// fixed here for the life of the raffle.
func (s *RaffleServiceImpl) Create(ctx context.Context, req *models.CreateRaffleRequest) (*models.Raffle, error) {
	if req.DigitWidth < numberspace.MinDigitWidth || req.DigitWidth > numberspace.MaxDigitWidth {
		return nil, fmt.Errorf("digit width %d: %w", req.DigitWidth, models.ErrOutOfRange)
	}

	raffle := &models.Raffle{
		Name:        req.Name,
		Description: req.Description,
		DigitWidth:  req.DigitWidth,
		Status:      models.RaffleStatusDraft,
		TicketPrice: req.TicketPrice,
	}
	if err := s.raffleRepo.Create(ctx, raffle); err != nil {
		slog.Error("Failed to create raffle", "error", err, "name", req.Name)
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	s.coordinator.Invalidate(cache.MutationRaffleCreated, raffle.ID.Hex())
	slog.Info("Raffle created", "raffleId", raffle.ID, "name", raffle.Name, "digitWidth", raffle.DigitWidth)
	return raffle, nil
}

// GetByID retrieves a raffle by its ID.
func (s *RaffleServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve raffle: %w", err)
	}
	return raffle, nil
}

// Update applies the non-nil fields of req. The digit width is immutable:
// any request carrying a different value is refused outright rather than
// silently dropped, so the operator learns the rule instead of assuming
// the edit took.
func (s *RaffleServiceImpl) Update(ctx context.Context, id primitive.ObjectID, req *models.UpdateRaffleRequest) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("raffle lookup: %w", err)
	}

	if req.DigitWidth != nil && *req.DigitWidth != raffle.DigitWidth {
		slog.Warn("Rejected digit width change", "raffleId", id, "current", raffle.DigitWidth, "requested", *req.DigitWidth)
		return nil, models.ErrImmutableDigitWidth
	}
	if req.Status != nil {
		if !models.ValidRaffleStatus(*req.Status) {
			return nil, fmt.Errorf("unknown raffle status %q", *req.Status)
		}
		raffle.Status = *req.Status
	}
	if req.Name != nil {
		raffle.Name = *req.Name
	}
	if req.Description != nil {
		raffle.Description = *req.Description
	}
	if req.TicketPrice != nil {
		raffle.TicketPrice = *req.TicketPrice
	}

	if err := s.raffleRepo.Update(ctx, raffle); err != nil {
		slog.Error("Failed to update raffle", "error", err, "raffleId", id)
		return nil, fmt.Errorf("failed to update raffle: %w", err)
	}

	s.coordinator.Invalidate(cache.MutationRaffleUpdated, id.Hex())
	slog.Info("Raffle updated", "raffleId", id, "status", raffle.Status)
	return raffle, nil
}

// Delete removes a raffle together with its submissions and tickets.
func (s *RaffleServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.raffleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete raffle: %w", err)
	}
	if err := s.submissionRepo.DeleteByRaffle(ctx, id); err != nil {
		slog.Error("Failed to delete raffle submissions", "error", err, "raffleId", id)
		return fmt.Errorf("failed to delete raffle submissions: %w", err)
	}
	if err := s.ticketRepo.DeleteByRaffle(ctx, id); err != nil {
		slog.Error("Failed to delete raffle tickets", "error", err, "raffleId", id)
		return fmt.Errorf("failed to delete raffle tickets: %w", err)
	}

	s.coordinator.Invalidate(cache.MutationRaffleDeleted, id.Hex())
	slog.Info("Raffle deleted", "raffleId", id)
	return nil
}

// List returns one page of raffles, newest first.
func (s *RaffleServiceImpl) List(ctx context.Context, cursorToken string, limit int) (pagination.Page[*models.Raffle], error) {
	var page pagination.Page[*models.Raffle]
	cursor, err := pagination.Decode(cursorToken)
	if err != nil {
		return page, err
	}
	limit = clampLimit(limit, s.maxPageSize)

	var items []*models.Raffle
	err = utils.WithRetry(ctx, func() error {
		var ferr error
		items, ferr = s.raffleRepo.FindPage(ctx, cursor, limit)
		return ferr
	})
	if err != nil {
		slog.Error("Failed to list raffles", "error", err)
		return page, fmt.Errorf("failed to list raffles: %w", err)
	}
	s.coordinator.MarkFresh(cache.ViewRaffles, "")
	return pagination.Trim(items, limit, raffleCursor), nil
}

// Current returns the most recently created open raffle.
func (s *RaffleServiceImpl) Current(ctx context.Context) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.FindLatestByStatus(ctx, []models.RaffleStatus{models.RaffleStatusOpen})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("no open raffle: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve current raffle: %w", err)
	}
	s.coordinator.MarkFresh(cache.ViewCurrentRaffle, "")
	return raffle, nil
}

// ListTickets returns every ticket issued within a raffle, in number order.
func (s *RaffleServiceImpl) ListTickets(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := utils.WithRetry(ctx, func() error {
		var ferr error
		tickets, ferr = s.ticketRepo.FindByRaffle(ctx, raffleID)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	s.coordinator.MarkFresh(cache.ViewTickets, raffleID.Hex())
	return tickets, nil
}

// ListTicketPage returns one page of a raffle's issued tickets, newest first.
func (s *RaffleServiceImpl) ListTicketPage(ctx context.Context, raffleID primitive.ObjectID, cursorToken string, limit int) (pagination.Page[*models.Ticket], error) {
	var page pagination.Page[*models.Ticket]
	cursor, err := pagination.Decode(cursorToken)
	if err != nil {
		return page, err
	}
	limit = clampLimit(limit, s.maxPageSize)

	var items []*models.Ticket
	err = utils.WithRetry(ctx, func() error {
		var ferr error
		items, ferr = s.ticketRepo.FindPage(ctx, raffleID, cursor, limit)
		return ferr
	})
	if err != nil {
		slog.Error("Failed to list ticket page", "error", err, "raffleId", raffleID)
		return page, fmt.Errorf("failed to list tickets: %w", err)
	}
	return pagination.Trim(items, limit, ticketCursor), nil
}

// GenerateNumbers produces count candidate ticket numbers unused within the
// raffle. The batch is generated against a snapshot of the issued set and
// is not reserved; approval re-verifies against the persisted set, and on
// conflict the caller regenerates rather than forcing acceptance.
func (s *RaffleServiceImpl) GenerateNumbers(ctx context.Context, raffleID primitive.ObjectID, count int) ([]string, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("raffle lookup: %w", err)
	}

	issued, err := s.ticketRepo.IssuedNumbers(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("issued numbers lookup: %w", err)
	}

	numbers, err := s.allocator.Allocate(count, raffle.DigitWidth, issued)
	if err != nil {
		slog.Warn("Number allocation failed", "error", err, "raffleId", raffleID, "count", count, "issued", len(issued))
		return nil, err
	}
	slog.Info("Candidate numbers generated", "raffleId", raffleID, "count", count)
	return numbers, nil
}

func raffleCursor(r *models.Raffle) pagination.Cursor {
	return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID.Hex()}
}

func ticketCursor(t *models.Ticket) pagination.Cursor {
	return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID.Hex()}
}
