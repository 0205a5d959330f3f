package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rafflehq/raffle-backend/internal/cache"
	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/numberspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type raffleFixture struct {
	raffleRepo     *fakeRaffleRepo
	submissionRepo *fakeSubmissionRepo
	ticketRepo     *fakeTicketRepo
	coordinator    *cache.Coordinator
	service        *RaffleServiceImpl
}

func newRaffleFixture(t *testing.T) *raffleFixture {
	t.Helper()
	f := &raffleFixture{
		raffleRepo:     newFakeRaffleRepo(),
		submissionRepo: newFakeSubmissionRepo(),
		ticketRepo:     newFakeTicketRepo(),
		coordinator:    cache.NewCoordinator(),
	}
	f.service = NewRaffleService(f.raffleRepo, f.submissionRepo, f.ticketRepo, numberspace.NewSeededAllocator(1), f.coordinator, 100)
	return f
}

func TestCreateRaffleStartsDraft(t *testing.T) {
	f := newRaffleFixture(t)

	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{
		Name:        "Summer Raffle",
		DigitWidth:  4,
		TicketPrice: 2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDraft, raffle.Status)
	assert.Equal(t, 4, raffle.DigitWidth)
	assert.False(t, raffle.ID.IsZero())
	assert.True(t, f.coordinator.IsStale(cache.ViewRaffles, ""))
}

func TestCreateRaffleRejectsBadDigitWidth(t *testing.T) {
	f := newRaffleFixture(t)

	for _, width := range []int{0, -1, 11} {
		_, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{
			Name:       "Bad",
			DigitWidth: width,
		})
		assert.True(t, errors.Is(err, models.ErrOutOfRange), "width %d", width)
	}
}

func TestUpdateRaffleMergesFields(t *testing.T) {
	f := newRaffleFixture(t)
	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Summer", DigitWidth: 3})
	require.NoError(t, err)

	status := models.RaffleStatusOpen
	price := 10.0
	updated, err := f.service.Update(context.Background(), raffle.ID, &models.UpdateRaffleRequest{
		Status:      &status,
		TicketPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusOpen, updated.Status)
	assert.Equal(t, 10.0, updated.TicketPrice)
	assert.Equal(t, "Summer", updated.Name, "untouched fields survive")
	assert.Equal(t, 3, updated.DigitWidth)
}

func TestUpdateRaffleDigitWidthIsImmutable(t *testing.T) {
	f := newRaffleFixture(t)
	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Summer", DigitWidth: 3})
	require.NoError(t, err)

	width := 5
	_, err = f.service.Update(context.Background(), raffle.ID, &models.UpdateRaffleRequest{DigitWidth: &width})
	assert.True(t, errors.Is(err, models.ErrImmutableDigitWidth))

	// Restating the current width is not a change
	same := 3
	_, err = f.service.Update(context.Background(), raffle.ID, &models.UpdateRaffleRequest{DigitWidth: &same})
	assert.NoError(t, err)
}

func TestUpdateRaffleUnknownStatus(t *testing.T) {
	f := newRaffleFixture(t)
	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Summer", DigitWidth: 3})
	require.NoError(t, err)

	status := models.RaffleStatus("ARCHIVED")
	_, err = f.service.Update(context.Background(), raffle.ID, &models.UpdateRaffleRequest{Status: &status})
	assert.Error(t, err)
}

func TestDeleteRaffleCascades(t *testing.T) {
	f := newRaffleFixture(t)
	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Summer", DigitWidth: 3})
	require.NoError(t, err)

	submission := &models.Submission{RaffleID: raffle.ID, EntrantName: "Ada", TicketQuantity: 1, Status: models.SubmissionStatusApproved}
	require.NoError(t, f.submissionRepo.Create(context.Background(), submission))
	require.NoError(t, f.ticketRepo.CreateMany(context.Background(), []*models.Ticket{
		{RaffleID: raffle.ID, SubmissionID: submission.ID, Number: "001"},
	}))

	require.NoError(t, f.service.Delete(context.Background(), raffle.ID))

	_, err = f.service.GetByID(context.Background(), raffle.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	remaining, err := f.submissionRepo.FindAllByRaffle(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	count, err := f.ticketRepo.CountByRaffle(context.Background(), raffle.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCurrentReturnsLatestOpenRaffle(t *testing.T) {
	f := newRaffleFixture(t)

	_, err := f.service.Current(context.Background())
	assert.True(t, errors.Is(err, models.ErrNotFound))

	first, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "First", DigitWidth: 3})
	require.NoError(t, err)
	second, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Second", DigitWidth: 3})
	require.NoError(t, err)

	// Only open raffles count
	_, err = f.service.Current(context.Background())
	assert.True(t, errors.Is(err, models.ErrNotFound))

	open := models.RaffleStatusOpen
	_, err = f.service.Update(context.Background(), first.ID, &models.UpdateRaffleRequest{Status: &open})
	require.NoError(t, err)
	_, err = f.service.Update(context.Background(), second.ID, &models.UpdateRaffleRequest{Status: &open})
	require.NoError(t, err)

	current, err := f.service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestGenerateNumbersSkipsIssued(t *testing.T) {
	f := newRaffleFixture(t)
	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Summer", DigitWidth: 3})
	require.NoError(t, err)

	submission := &models.Submission{RaffleID: raffle.ID, EntrantName: "Ada", TicketQuantity: 2, Status: models.SubmissionStatusApproved}
	require.NoError(t, f.submissionRepo.Create(context.Background(), submission))
	require.NoError(t, f.ticketRepo.CreateMany(context.Background(), []*models.Ticket{
		{RaffleID: raffle.ID, SubmissionID: submission.ID, Number: "007"},
		{RaffleID: raffle.ID, SubmissionID: submission.ID, Number: "123"},
	}))

	numbers, err := f.service.GenerateNumbers(context.Background(), raffle.ID, 100)
	require.NoError(t, err)
	require.Len(t, numbers, 100)
	seen := make(map[string]bool)
	for _, n := range numbers {
		assert.True(t, numberspace.IsValid(n, 3))
		assert.NotEqual(t, "007", n)
		assert.NotEqual(t, "123", n)
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestGenerateNumbersSpaceExhausted(t *testing.T) {
	f := newRaffleFixture(t)
	raffle, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Tiny", DigitWidth: 1})
	require.NoError(t, err)

	_, err = f.service.GenerateNumbers(context.Background(), raffle.ID, 11)
	assert.True(t, errors.Is(err, models.ErrSpaceExhausted))
}

func TestGenerateNumbersUnknownRaffle(t *testing.T) {
	f := newRaffleFixture(t)
	_, err := f.service.GenerateNumbers(context.Background(), primitive.NewObjectID(), 5)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestListRafflesPages(t *testing.T) {
	f := newRaffleFixture(t)
	for i := 0; i < 15; i++ {
		_, err := f.service.Create(context.Background(), &models.CreateRaffleRequest{Name: "Raffle", DigitWidth: 3})
		require.NoError(t, err)
	}

	page, err := f.service.List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.Pagination.HasMore)

	page2, err := f.service.List(context.Background(), page.Pagination.NextCursor, 10)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 5)
	assert.False(t, page2.Pagination.HasMore)
	assert.False(t, f.coordinator.IsStale(cache.ViewRaffles, ""))
}
