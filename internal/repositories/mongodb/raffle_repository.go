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

// RaffleRepository implements the repositories.RaffleRepository interface
type RaffleRepository struct {
	collection *mongo.Collection
}

// NewRaffleRepository creates a new RaffleRepository
func NewRaffleRepository(db *mongo.Database) repositories.RaffleRepository {
	return &RaffleRepository{
		collection: db.Collection("raffles"),
	}
}

// Create creates a new raffle
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	raffle.CreatedAt = time.Now()
	raffle.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, raffle)
	if err != nil {
		return wrapErr(err)
	}
	raffle.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a raffle by ID
func (r *RaffleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	var raffle models.Raffle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raffle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, wrapErr(err)
	}
	return &raffle, nil
}

// Update replaces a raffle document
func (r *RaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	raffle.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": raffle.ID}, raffle)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete deletes a raffle by ID
func (r *RaffleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr(err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// FindPage finds up to limit+1 raffles strictly older than the cursor,
// newest first
func (r *RaffleRepository) FindPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*models.Raffle, error) {
	filter := bson.M{}
	if err := applyCursor(filter, cursor); err != nil {
		return nil, err
	}
	cur, err := r.collection.Find(ctx, filter, pageFindOptions(limit))
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var raffles []*models.Raffle
	if err := cur.All(ctx, &raffles); err != nil {
		return nil, wrapErr(err)
	}
	if raffles == nil {
		raffles = []*models.Raffle{}
	}
	return raffles, nil
}

// FindLatestByStatus finds the most recently created raffle in one of the
// given statuses
func (r *RaffleRepository) FindLatestByStatus(ctx context.Context, statuses []models.RaffleStatus) (*models.Raffle, error) {
	filter := bson.M{"status": bson.M{"$in": statuses}}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	var raffle models.Raffle
	err := r.collection.FindOne(ctx, filter, opts).Decode(&raffle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, wrapErr(err)
	}
	return &raffle, nil
}
