package services

import (
	"context"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleService defines the interface for raffle-related operations
type RaffleService interface {
	// Create creates a raffle in DRAFT state. DigitWidth is fixed here
	// and can never change afterwards.
	Create(ctx context.Context, req *models.CreateRaffleRequest) (*models.Raffle, error)

	// GetByID retrieves a raffle by its ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)

	// Update applies the non-nil fields of req. Attempts to change the
	// digit width fail with ErrImmutableDigitWidth.
	Update(ctx context.Context, id primitive.ObjectID, req *models.UpdateRaffleRequest) (*models.Raffle, error)

	// Delete removes a raffle together with its submissions and tickets
	Delete(ctx context.Context, id primitive.ObjectID) error

	// List returns one page of raffles, newest first
	List(ctx context.Context, cursorToken string, limit int) (pagination.Page[*models.Raffle], error)

	// Current returns the most recently created open raffle
	Current(ctx context.Context) (*models.Raffle, error)

	// ListTickets returns every ticket issued within a raffle
	ListTickets(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Ticket, error)

	// ListTicketPage returns one page of a raffle's issued tickets,
	// newest first
	ListTicketPage(ctx context.Context, raffleID primitive.ObjectID, cursorToken string, limit int) (pagination.Page[*models.Ticket], error)

	// GenerateNumbers produces a candidate batch of count unused ticket
	// numbers for the raffle. Candidates are not reserved; the submission
	// state machine re-verifies them at commit time.
	GenerateNumbers(ctx context.Context, raffleID primitive.ObjectID, count int) ([]string, error)
}

// SubmissionService validates and executes the submission lifecycle:
// PENDING is the only non-terminal state, APPROVED and REJECTED are
// terminal, and approval atomically binds ticket numbers.
type SubmissionService interface {
	// Create records a new purchase claim in PENDING state
	Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.Submission, error)

	// GetByID retrieves a submission by its ID
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error)

	// TicketsFor returns the tickets bound to an approved submission
	TicketsFor(ctx context.Context, id primitive.ObjectID) ([]*models.Ticket, error)

	// List returns one page of submissions, optionally filtered by status
	// and raffle, newest first
	List(ctx context.Context, status models.SubmissionStatus, raffleID primitive.ObjectID, cursorToken string, limit int) (pagination.Page[*models.Submission], error)

	// Approve transitions a pending submission to APPROVED, binding the
	// proposed ticket numbers after re-verifying them against the
	// raffle's persisted issued set
	Approve(ctx context.Context, id primitive.ObjectID, ticketNumbers []string) (*models.Submission, error)

	// Reject transitions a pending submission to REJECTED with a
	// non-empty admin note
	Reject(ctx context.Context, id primitive.ObjectID, note string) (*models.Submission, error)
}

// StatsService derives the per-raffle summary aggregate
type StatsService interface {
	// GetStats returns the raffle's stats, recomputing from the source of
	// truth whenever the cache coordinator reports the view stale
	GetStats(ctx context.Context, raffleID primitive.ObjectID) (*models.RaffleStats, error)

	// Refresh recomputes and replaces the cached snapshot for a raffle
	Refresh(ctx context.Context, raffleID string) error
}

// AuthService defines the interface for admin authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
}
