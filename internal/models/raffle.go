package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleStatus represents the lifecycle status of a raffle
type RaffleStatus string

const (
	RaffleStatusDraft     RaffleStatus = "DRAFT"
	RaffleStatusOpen      RaffleStatus = "OPEN"
	RaffleStatusClosed    RaffleStatus = "CLOSED"
	RaffleStatusCompleted RaffleStatus = "COMPLETED"
)

// ValidRaffleStatus reports whether s is one of the known raffle statuses.
func ValidRaffleStatus(s RaffleStatus) bool {
	switch s {
	case RaffleStatusDraft, RaffleStatusOpen, RaffleStatusClosed, RaffleStatusCompleted:
		return true
	default:
		return false
	}
}

// Raffle represents a raffle campaign. DigitWidth is fixed at creation time
// and never mutated afterwards; every ticket number issued for the raffle is
// exactly DigitWidth digits long.
type Raffle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	DigitWidth  int                `bson:"digitWidth" json:"digitWidth"`
	Status      RaffleStatus       `bson:"status" json:"status"`
	TicketPrice float64            `bson:"ticketPrice" json:"ticketPrice"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateRaffleRequest defines the payload for creating a raffle
type CreateRaffleRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	DigitWidth  int     `json:"digitWidth" binding:"required,min=1,max=10"`
	TicketPrice float64 `json:"ticketPrice" binding:"min=0"`
}

// UpdateRaffleRequest defines the payload for updating a raffle. DigitWidth
// is accepted only so the handler can detect and reject attempts to change it.
type UpdateRaffleRequest struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *RaffleStatus `json:"status,omitempty"`
	TicketPrice *float64      `json:"ticketPrice,omitempty"`
	DigitWidth  *int          `json:"digitWidth,omitempty"`
}
