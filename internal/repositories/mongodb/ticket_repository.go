package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"github.com/rafflehq/raffle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// EnsureIndexes creates the unique (raffleId, number) index. The index is
// the authoritative uniqueness check: two submissions approved concurrently
// with overlapping candidate numbers are caught here, not only against the
// snapshot used for generation.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("tickets").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "raffleId", Value: 1}, {Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return wrapErr(err)
}

// CreateMany inserts a batch of tickets. On a duplicate-key failure the
// whole batch is rolled back by submission and the offending numbers are
// reported as a ConflictError.
func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, len(tickets))
	for i, t := range tickets {
		t.CreatedAt = now
		docs[i] = t
	}

	// Unordered insert so every non-conflicting document is attempted and
	// the write exception reports all duplicates, not just the first.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		var conflicts []string
		for _, we := range bwe.WriteErrors {
			if we.Code == 11000 && we.Index >= 0 && we.Index < len(tickets) {
				conflicts = append(conflicts, tickets[we.Index].Number)
			}
		}
		if len(conflicts) > 0 {
			// Remove whatever part of the batch did insert. All tickets in
			// a batch share a submission.
			if _, delErr := r.collection.DeleteMany(ctx, bson.M{"submissionId": tickets[0].SubmissionID}); delErr != nil {
				return wrapErr(delErr)
			}
			return &models.ConflictError{Numbers: conflicts}
		}
	}
	return wrapErr(err)
}

// FindByRaffle finds every ticket issued within a raffle
func (r *TicketRepository) FindByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{"raffleId": raffleID}, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var tickets []*models.Ticket
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, wrapErr(err)
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// FindBySubmission finds the tickets bound to a submission
func (r *TicketRepository) FindBySubmission(ctx context.Context, submissionID primitive.ObjectID) ([]*models.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cur, err := r.collection.Find(ctx, bson.M{"submissionId": submissionID}, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var tickets []*models.Ticket
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, wrapErr(err)
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// FindPage finds up to limit+1 of a raffle's tickets strictly older than
// the cursor, newest first
func (r *TicketRepository) FindPage(ctx context.Context, raffleID primitive.ObjectID, cursor *pagination.Cursor, limit int) ([]*models.Ticket, error) {
	filter := bson.M{"raffleId": raffleID}
	if err := applyCursor(filter, cursor); err != nil {
		return nil, err
	}
	cur, err := r.collection.Find(ctx, filter, pageFindOptions(limit))
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var tickets []*models.Ticket
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, wrapErr(err)
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// IssuedNumbers returns the set of ticket numbers already bound within the
// raffle
func (r *TicketRepository) IssuedNumbers(ctx context.Context, raffleID primitive.ObjectID) (map[string]bool, error) {
	opts := options.Find().SetProjection(bson.M{"number": 1})
	cur, err := r.collection.Find(ctx, bson.M{"raffleId": raffleID}, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	issued := make(map[string]bool)
	for cur.Next(ctx) {
		var doc struct {
			Number string `bson:"number"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, wrapErr(err)
		}
		issued[doc.Number] = true
	}
	if err := cur.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return issued, nil
}

// CountByRaffle counts the tickets issued within a raffle
func (r *TicketRepository) CountByRaffle(ctx context.Context, raffleID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"raffleId": raffleID})
	return n, wrapErr(err)
}

// DeleteBySubmission deletes the tickets bound to a submission
func (r *TicketRepository) DeleteBySubmission(ctx context.Context, submissionID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"submissionId": submissionID})
	return wrapErr(err)
}

// DeleteByRaffle deletes every ticket issued within a raffle
func (r *TicketRepository) DeleteByRaffle(ctx context.Context, raffleID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"raffleId": raffleID})
	return wrapErr(err)
}
