package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"github.com/rafflehq/raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the Mongo implementations'
// contracts: limit+1 page fetches with a strictly-older cursor filter, a
// conditional status flip, and the unique (raffleId, number) check inside
// CreateMany.

type fakeRaffleRepo struct {
	raffles map[primitive.ObjectID]*models.Raffle
}

var _ repositories.RaffleRepository = (*fakeRaffleRepo)(nil)

func newFakeRaffleRepo() *fakeRaffleRepo {
	return &fakeRaffleRepo{raffles: make(map[primitive.ObjectID]*models.Raffle)}
}

func (f *fakeRaffleRepo) Create(ctx context.Context, raffle *models.Raffle) error {
	if raffle.ID.IsZero() {
		raffle.ID = primitive.NewObjectID()
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now()
	}
	raffle.UpdatedAt = raffle.CreatedAt
	f.raffles[raffle.ID] = raffle
	return nil
}

func (f *fakeRaffleRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	raffle, ok := f.raffles[id]
	if !ok {
		return nil, fmt.Errorf("raffle %s: %w", id.Hex(), models.ErrNotFound)
	}
	return raffle, nil
}

func (f *fakeRaffleRepo) Update(ctx context.Context, raffle *models.Raffle) error {
	if _, ok := f.raffles[raffle.ID]; !ok {
		return fmt.Errorf("raffle %s: %w", raffle.ID.Hex(), models.ErrNotFound)
	}
	raffle.UpdatedAt = time.Now()
	f.raffles[raffle.ID] = raffle
	return nil
}

func (f *fakeRaffleRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(f.raffles, id)
	return nil
}

func (f *fakeRaffleRepo) FindPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*models.Raffle, error) {
	all := make([]*models.Raffle, 0, len(f.raffles))
	for _, r := range f.raffles {
		all = append(all, r)
	}
	sortNewestFirst(all, func(r *models.Raffle) (time.Time, string) { return r.CreatedAt, r.ID.Hex() })
	return pageOf(all, cursor, limit, func(r *models.Raffle) (time.Time, string) { return r.CreatedAt, r.ID.Hex() }), nil
}

func (f *fakeRaffleRepo) FindLatestByStatus(ctx context.Context, statuses []models.RaffleStatus) (*models.Raffle, error) {
	var latest *models.Raffle
	for _, r := range f.raffles {
		for _, s := range statuses {
			if r.Status == s && (latest == nil || r.CreatedAt.After(latest.CreatedAt)) {
				latest = r
			}
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}

type fakeSubmissionRepo struct {
	submissions map[primitive.ObjectID]*models.Submission

	// beforeTransition, when set, runs just before the conditional flip.
	// Tests use it to interleave a concurrent reviewer.
	beforeTransition func()
}

var _ repositories.SubmissionRepository = (*fakeSubmissionRepo)(nil)

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[primitive.ObjectID]*models.Submission)}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID.IsZero() {
		submission.ID = primitive.NewObjectID()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}
	submission.UpdatedAt = submission.CreatedAt
	stored := *submission
	f.submissions[submission.ID] = &stored
	return nil
}

func (f *fakeSubmissionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	stored, ok := f.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id.Hex(), models.ErrNotFound)
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeSubmissionRepo) FindPage(ctx context.Context, status models.SubmissionStatus, raffleID primitive.ObjectID, cursor *pagination.Cursor, limit int) ([]*models.Submission, error) {
	var all []*models.Submission
	for _, s := range f.submissions {
		if status != "" && s.Status != status {
			continue
		}
		if !raffleID.IsZero() && s.RaffleID != raffleID {
			continue
		}
		all = append(all, s)
	}
	sortNewestFirst(all, func(s *models.Submission) (time.Time, string) { return s.CreatedAt, s.ID.Hex() })
	return pageOf(all, cursor, limit, func(s *models.Submission) (time.Time, string) { return s.CreatedAt, s.ID.Hex() }), nil
}

func (f *fakeSubmissionRepo) FindAllByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Submission, error) {
	var out []*models.Submission
	for _, s := range f.submissions {
		if s.RaffleID == raffleID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, update *models.Submission) (bool, error) {
	if f.beforeTransition != nil {
		f.beforeTransition()
	}
	stored, ok := f.submissions[id]
	if !ok || stored.Status != models.SubmissionStatusPending {
		return false, nil
	}
	copied := *update
	copied.UpdatedAt = time.Now()
	f.submissions[id] = &copied
	return true, nil
}

func (f *fakeSubmissionRepo) DeleteByRaffle(ctx context.Context, raffleID primitive.ObjectID) error {
	for id, s := range f.submissions {
		if s.RaffleID == raffleID {
			delete(f.submissions, id)
		}
	}
	return nil
}

type fakeTicketRepo struct {
	tickets []*models.Ticket
}

var _ repositories.TicketRepository = (*fakeTicketRepo)(nil)

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{}
}

func (f *fakeTicketRepo) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	var conflicts []string
	for _, t := range tickets {
		for _, existing := range f.tickets {
			if existing.RaffleID == t.RaffleID && existing.Number == t.Number {
				conflicts = append(conflicts, t.Number)
			}
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &models.ConflictError{Numbers: conflicts}
	}
	for _, t := range tickets {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		f.tickets = append(f.tickets, t)
	}
	return nil
}

func (f *fakeTicketRepo) FindByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Ticket, error) {
	out := []*models.Ticket{}
	for _, t := range f.tickets {
		if t.RaffleID == raffleID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) FindBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]*models.Ticket, error) {
	out := []*models.Ticket{}
	for _, t := range f.tickets {
		if t.SubmissionID == submissionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) FindPage(ctx context.Context, raffleID primitive.ObjectID, cursor *pagination.Cursor, limit int) ([]*models.Ticket, error) {
	all, _ := f.FindByRaffle(ctx, raffleID)
	sortNewestFirst(all, func(t *models.Ticket) (time.Time, string) { return t.CreatedAt, t.ID.Hex() })
	return pageOf(all, cursor, limit, func(t *models.Ticket) (time.Time, string) { return t.CreatedAt, t.ID.Hex() }), nil
}

func (f *fakeTicketRepo) IssuedNumbers(ctx context.Context, raffleID primitive.ObjectID) (map[string]bool, error) {
	issued := make(map[string]bool)
	for _, t := range f.tickets {
		if t.RaffleID == raffleID {
			issued[t.Number] = true
		}
	}
	return issued, nil
}

func (f *fakeTicketRepo) CountByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	var n int64
	for _, t := range f.tickets {
		if t.RaffleID == raffleID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTicketRepo) DeleteBySubmission(ctx context.Context, submissionID primitive.ObjectID) error {
	kept := f.tickets[:0]
	for _, t := range f.tickets {
		if t.SubmissionID != submissionID {
			kept = append(kept, t)
		}
	}
	f.tickets = kept
	return nil
}

func (f *fakeTicketRepo) DeleteByRaffle(ctx context.Context, raffleID primitive.ObjectID) error {
	kept := f.tickets[:0]
	for _, t := range f.tickets {
		if t.RaffleID != raffleID {
			kept = append(kept, t)
		}
	}
	f.tickets = kept
	return nil
}

// sortNewestFirst orders by (createdAt desc, id desc), the repositories'
// page sort.
func sortNewestFirst[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

// pageOf applies the strictly-older cursor filter and caps at limit+1, the
// overflow contract the services trim against.
func pageOf[T any](sorted []T, cursor *pagination.Cursor, limit int, key func(T) (time.Time, string)) []T {
	var out []T
	for _, item := range sorted {
		if cursor != nil {
			t, id := key(item)
			older := t.Before(cursor.CreatedAt) || (t.Equal(cursor.CreatedAt) && id < cursor.ID)
			if !older {
				continue
			}
		}
		out = append(out, item)
		if len(out) == limit+1 {
			break
		}
	}
	return out
}
