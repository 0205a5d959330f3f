// Package mongodb implements the repository interfaces on MongoDB
// collections. List queries paginate with an exclusive (createdAt, _id)
// cursor, newest first, fetching one item past the limit so callers can
// detect whether more pages exist.
package mongodb

import (
	"fmt"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/internal/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// applyCursor narrows filter to items strictly before the cursor's
// referenced item in (createdAt desc, _id desc) order.
func applyCursor(filter bson.M, cursor *pagination.Cursor) error {
	if cursor == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(cursor.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidCursor, err)
	}
	filter["$or"] = []bson.M{
		{"createdAt": bson.M{"$lt": cursor.CreatedAt}},
		{"createdAt": cursor.CreatedAt, "_id": bson.M{"$lt": id}},
	}
	return nil
}

// pageFindOptions sorts newest first with _id as the descending tie-break
// and fetches limit+1 items.
func pageFindOptions(limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit) + 1)
}

// wrapErr classifies driver failures: network and timeout errors become
// transient TransportErrors so callers can apply their bounded retry.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return &models.TransportError{Err: err}
	}
	return err
}
