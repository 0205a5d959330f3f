package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket represents one unit of raffle participation. Number is a
// zero-padded decimal string of exactly the raffle's DigitWidth digits and
// is unique within the raffle (enforced by a unique compound index on
// raffleId + number).
type Ticket struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RaffleID     primitive.ObjectID `bson:"raffleId" json:"raffleId"`
	SubmissionID primitive.ObjectID `bson:"submissionId" json:"submissionId"`
	Number       string             `bson:"number" json:"number"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
