package repositories

import (
	"context"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleRepository defines the interface for raffle data operations
type RaffleRepository interface {
	Create(ctx context.Context, raffle *models.Raffle) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	Update(ctx context.Context, raffle *models.Raffle) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindPage returns up to limit+1 raffles strictly older than the
	// cursor, newest first. The caller trims the overflow item.
	FindPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*models.Raffle, error)
	// FindLatestByStatus returns the most recently created raffle in one
	// of the given statuses.
	FindLatestByStatus(ctx context.Context, statuses []models.RaffleStatus) (*models.Raffle, error)
}

// SubmissionRepository defines the interface for submission data operations
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error)
	// FindPage filters by status and/or raffle when non-zero, newest
	// first, up to limit+1 items.
	FindPage(ctx context.Context, status models.SubmissionStatus, raffleID primitive.ObjectID, cursor *pagination.Cursor, limit int) ([]*models.Submission, error)
	FindAllByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Submission, error)
	// TransitionStatus flips the submission out of PENDING with a
	// conditional update. It reports false when the submission was not
	// pending, i.e. a concurrent reviewer already committed a terminal
	// state.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, update *models.Submission) (bool, error)
	DeleteByRaffle(ctx context.Context, raffleID primitive.ObjectID) error
}

// TicketRepository defines the interface for ticket data operations
type TicketRepository interface {
	// CreateMany inserts a batch of tickets. The unique (raffleId, number)
	// index is the authoritative collision check; on a duplicate-key
	// failure it returns *models.ConflictError naming the offending
	// numbers and leaves none of the batch behind.
	CreateMany(ctx context.Context, tickets []*models.Ticket) error
	FindByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Ticket, error)
	FindBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]*models.Ticket, error)
	FindPage(ctx context.Context, raffleID primitive.ObjectID, cursor *pagination.Cursor, limit int) ([]*models.Ticket, error)
	// IssuedNumbers returns the set of all ticket numbers already bound
	// within the raffle.
	IssuedNumbers(ctx context.Context, raffleID primitive.ObjectID) (map[string]bool, error)
	CountByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error)
	DeleteBySubmission(ctx context.Context, submissionID primitive.ObjectID) error
	DeleteByRaffle(ctx context.Context, raffleID primitive.ObjectID) error
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
