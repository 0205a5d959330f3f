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

// SubmissionRepository implements the repositories.SubmissionRepository interface
type SubmissionRepository struct {
	collection *mongo.Collection
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *mongo.Database) repositories.SubmissionRepository {
	return &SubmissionRepository{
		collection: db.Collection("submissions"),
	}
}

// Create creates a new submission in PENDING state
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	submission.Status = models.SubmissionStatusPending
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, submission)
	if err != nil {
		return wrapErr(err)
	}
	submission.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a submission by ID
func (r *SubmissionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var submission models.Submission
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&submission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, wrapErr(err)
	}
	return &submission, nil
}

// FindPage finds up to limit+1 submissions matching the optional status and
// raffle filters, newest first
func (r *SubmissionRepository) FindPage(ctx context.Context, status models.SubmissionStatus, raffleID primitive.ObjectID, cursor *pagination.Cursor, limit int) ([]*models.Submission, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if !raffleID.IsZero() {
		filter["raffleId"] = raffleID
	}
	if err := applyCursor(filter, cursor); err != nil {
		return nil, err
	}

	cur, err := r.collection.Find(ctx, filter, pageFindOptions(limit))
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var submissions []*models.Submission
	if err := cur.All(ctx, &submissions); err != nil {
		return nil, wrapErr(err)
	}
	if submissions == nil {
		submissions = []*models.Submission{}
	}
	return submissions, nil
}

// FindAllByRaffle finds every submission belonging to a raffle, newest first
func (r *SubmissionRepository) FindAllByRaffle(ctx context.Context, raffleID primitive.ObjectID) ([]*models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.M{"raffleId": raffleID}, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var submissions []*models.Submission
	if err := cur.All(ctx, &submissions); err != nil {
		return nil, wrapErr(err)
	}
	if submissions == nil {
		submissions = []*models.Submission{}
	}
	return submissions, nil
}

// TransitionStatus commits a terminal state with a conditional update: the
// filter requires the submission to still be PENDING, so of two concurrent
// reviewers exactly one observes a match. It reports false when the
// submission was already terminal.
func (r *SubmissionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, update *models.Submission) (bool, error) {
	set := bson.M{
		"status":     update.Status,
		"adminNotes": update.AdminNotes,
		"updatedAt":  time.Now(),
	}
	switch update.Status {
	case models.SubmissionStatusApproved:
		set["approvedAt"] = update.ApprovedAt
	case models.SubmissionStatusRejected:
		set["rejectedAt"] = update.RejectedAt
	}

	filter := bson.M{"_id": id, "status": models.SubmissionStatusPending}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, wrapErr(err)
	}
	return res.MatchedCount == 1, nil
}

// DeleteByRaffle deletes every submission belonging to a raffle
func (r *SubmissionRepository) DeleteByRaffle(ctx context.Context, raffleID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"raffleId": raffleID})
	return wrapErr(err)
}
