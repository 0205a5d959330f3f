package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"context"

	"github.com/rafflehq/raffle-backend/internal/cache"
	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/numberspace"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"github.com/rafflehq/raffle-backend/internal/repositories"
	"github.com/rafflehq/raffle-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure SubmissionServiceImpl implements SubmissionService
var _ SubmissionService = (*SubmissionServiceImpl)(nil)

// SubmissionServiceImpl is the submission state machine. It is the only
// writer of submission status, admin notes and (through the ticket
// repository) ticket creation.
type SubmissionServiceImpl struct {
	submissionRepo repositories.SubmissionRepository
	ticketRepo     repositories.TicketRepository
	raffleRepo     repositories.RaffleRepository
	coordinator    *cache.Coordinator
	maxPageSize    int
}

// NewSubmissionService creates a new SubmissionServiceImpl
func NewSubmissionService(
	submissionRepo repositories.SubmissionRepository,
	ticketRepo repositories.TicketRepository,
	raffleRepo repositories.RaffleRepository,
	coordinator *cache.Coordinator,
	maxPageSize int,
) *SubmissionServiceImpl {
	return &SubmissionServiceImpl{
		submissionRepo: submissionRepo,
		ticketRepo:     ticketRepo,
		raffleRepo:     raffleRepo,
		coordinator:    coordinator,
		maxPageSize:    maxPageSize,
	}
}

// Create records a new purchase claim in PENDING state.
func (s *SubmissionServiceImpl) Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.Submission, error) {
	raffleID, err := primitive.ObjectIDFromHex(req.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("invalid raffle id %q: %w", req.RaffleID, models.ErrNotFound)
	}
	if _, err := s.raffleRepo.FindByID(ctx, raffleID); err != nil {
		return nil, fmt.Errorf("raffle lookup: %w", err)
	}
	if req.TicketQuantity < 1 {
		return nil, fmt.Errorf("ticket quantity must be at least 1: %w", models.ErrQuantityMismatch)
	}

	submission := &models.Submission{
		RaffleID:       raffleID,
		EntrantName:    req.EntrantName,
		EntrantPhone:   req.EntrantPhone,
		TicketQuantity: req.TicketQuantity,
		Status:         models.SubmissionStatusPending,
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		slog.Error("Failed to create submission", "error", err, "raffleId", req.RaffleID)
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	s.coordinator.Invalidate(cache.MutationSubmissionCreated, raffleID.Hex())
	slog.Info("Submission created", "submissionId", submission.ID, "raffleId", req.RaffleID, "quantity", req.TicketQuantity)
	return submission, nil
}

// GetByID retrieves a submission by its ID.
func (s *SubmissionServiceImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve submission: %w", err)
	}
	return submission, nil
}

// TicketsFor returns the tickets bound to a submission. Pending and
// rejected submissions own no tickets, so the result is empty for them.
func (s *SubmissionServiceImpl) TicketsFor(ctx context.Context, id primitive.ObjectID) ([]*models.Ticket, error) {
	tickets, err := s.ticketRepo.FindBySubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tickets: %w", err)
	}
	return tickets, nil
}

// List returns one page of submissions, newest first.
func (s *SubmissionServiceImpl) List(ctx context.Context, status models.SubmissionStatus, raffleID primitive.ObjectID, cursorToken string, limit int) (pagination.Page[*models.Submission], error) {
	var page pagination.Page[*models.Submission]
	if status != "" && !models.ValidSubmissionStatus(status) {
		return page, fmt.Errorf("unknown submission status %q", status)
	}
	cursor, err := pagination.Decode(cursorToken)
	if err != nil {
		return page, err
	}
	limit = clampLimit(limit, s.maxPageSize)

	var items []*models.Submission
	err = utils.WithRetry(ctx, func() error {
		var ferr error
		items, ferr = s.submissionRepo.FindPage(ctx, status, raffleID, cursor, limit)
		return ferr
	})
	if err != nil {
		slog.Error("Failed to list submissions", "error", err, "status", status, "raffleId", raffleID)
		return page, fmt.Errorf("failed to list submissions: %w", err)
	}
	return pagination.Trim(items, limit, submissionCursor), nil
}

// Approve transitions a pending submission to APPROVED and binds the
// proposed ticket numbers. The numbers may have been generated from a
// stale snapshot of the issued set, so everything is re-verified here:
// quantity, digit width, batch distinctness, and disjointness from the
// raffle's persisted issued numbers. The ticket collection's unique index
// is the last line of defense against a concurrent approval racing past
// the pre-check; the conditional status flip guarantees at most one
// reviewer wins. Either every ticket binds and the status flips, or
// nothing persists.
func (s *SubmissionServiceImpl) Approve(ctx context.Context, id primitive.ObjectID, ticketNumbers []string) (*models.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("submission lookup: %w", err)
	}
	if submission.Status.Terminal() {
		slog.Warn("Approve attempted on terminal submission", "submissionId", id, "status", submission.Status)
		return nil, fmt.Errorf("submission %s is %s: %w", id.Hex(), submission.Status, models.ErrInvalidTransition)
	}

	raffle, err := s.raffleRepo.FindByID(ctx, submission.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("raffle lookup: %w", err)
	}

	if len(ticketNumbers) != submission.TicketQuantity {
		return nil, fmt.Errorf("got %d numbers for quantity %d: %w",
			len(ticketNumbers), submission.TicketQuantity, models.ErrQuantityMismatch)
	}
	seen := make(map[string]bool, len(ticketNumbers))
	for _, n := range ticketNumbers {
		if !numberspace.IsValid(n, raffle.DigitWidth) {
			return nil, fmt.Errorf("ticket number %q is not %d digits: %w", n, raffle.DigitWidth, models.ErrOutOfRange)
		}
		if seen[n] {
			return nil, fmt.Errorf("ticket number %q: %w", n, models.ErrDuplicateInBatch)
		}
		seen[n] = true
	}

	issued, err := s.ticketRepo.IssuedNumbers(ctx, submission.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("issued numbers lookup: %w", err)
	}
	var conflicts []string
	for _, n := range ticketNumbers {
		if issued[n] {
			conflicts = append(conflicts, n)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		slog.Warn("Approval rejected, numbers already issued", "submissionId", id, "conflicts", conflicts)
		return nil, &models.ConflictError{Numbers: conflicts}
	}

	tickets := make([]*models.Ticket, len(ticketNumbers))
	for i, n := range ticketNumbers {
		tickets[i] = &models.Ticket{
			RaffleID:     submission.RaffleID,
			SubmissionID: submission.ID,
			Number:       n,
		}
	}
	if err := s.ticketRepo.CreateMany(ctx, tickets); err != nil {
		slog.Error("Failed to bind tickets", "error", err, "submissionId", id)
		return nil, fmt.Errorf("failed to bind tickets: %w", err)
	}

	now := time.Now()
	submission.Status = models.SubmissionStatusApproved
	submission.ApprovedAt = now
	ok, err := s.submissionRepo.TransitionStatus(ctx, id, submission)
	if err != nil || !ok {
		// The flip lost a race or failed outright; take the tickets back
		// out so nothing partial survives.
		if delErr := s.ticketRepo.DeleteBySubmission(ctx, id); delErr != nil {
			slog.Error("CRITICAL: failed to roll back tickets after lost transition", "error", delErr, "submissionId", id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to commit approval: %w", err)
		}
		slog.Warn("Approve lost transition race", "submissionId", id)
		return nil, fmt.Errorf("submission %s already reviewed: %w", id.Hex(), models.ErrInvalidTransition)
	}

	s.coordinator.Invalidate(cache.MutationSubmissionApproved, submission.RaffleID.Hex())
	slog.Info("Submission approved", "submissionId", id, "raffleId", submission.RaffleID, "tickets", len(tickets))
	return submission, nil
}

// Reject transitions a pending submission to REJECTED. The note is
// mandatory; rejection never creates tickets.
func (s *SubmissionServiceImpl) Reject(ctx context.Context, id primitive.ObjectID, note string) (*models.Submission, error) {
	if strings.TrimSpace(note) == "" {
		return nil, models.ErrMissingReason
	}

	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("submission lookup: %w", err)
	}
	if submission.Status.Terminal() {
		slog.Warn("Reject attempted on terminal submission", "submissionId", id, "status", submission.Status)
		return nil, fmt.Errorf("submission %s is %s: %w", id.Hex(), submission.Status, models.ErrInvalidTransition)
	}

	submission.Status = models.SubmissionStatusRejected
	submission.AdminNotes = note
	submission.RejectedAt = time.Now()
	ok, err := s.submissionRepo.TransitionStatus(ctx, id, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}
	if !ok {
		slog.Warn("Reject lost transition race", "submissionId", id)
		return nil, fmt.Errorf("submission %s already reviewed: %w", id.Hex(), models.ErrInvalidTransition)
	}

	s.coordinator.Invalidate(cache.MutationSubmissionRejected, submission.RaffleID.Hex())
	slog.Info("Submission rejected", "submissionId", id, "raffleId", submission.RaffleID)
	return submission, nil
}

func submissionCursor(s *models.Submission) pagination.Cursor {
	return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID.Hex()}
}

// clampLimit normalizes a client-supplied page size.
func clampLimit(limit, max int) int {
	if limit < 1 {
		return defaultPageSize
	}
	if limit > max {
		return max
	}
	return limit
}

const defaultPageSize = 20
