package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionStatus represents the review status of a purchase submission
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
)

// ValidSubmissionStatus reports whether s is one of the known submission statuses.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether s permits no further transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// Submission represents an entrant's purchase claim awaiting admin review.
// Tickets are bound to the submission only at approval time; a rejected or
// pending submission owns no tickets.
type Submission struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RaffleID       primitive.ObjectID `bson:"raffleId" json:"raffleId"`
	EntrantName    string             `bson:"entrantName" json:"entrantName"`
	EntrantPhone   string             `bson:"entrantPhone,omitempty" json:"entrantPhone,omitempty"`
	TicketQuantity int                `bson:"ticketQuantity" json:"ticketQuantity"`
	Status         SubmissionStatus   `bson:"status" json:"status"`
	AdminNotes     string             `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	ApprovedAt     time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedAt     time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateSubmissionRequest defines the payload for entry intake
type CreateSubmissionRequest struct {
	RaffleID       string `json:"raffleId" binding:"required"`
	EntrantName    string `json:"entrantName" binding:"required"`
	EntrantPhone   string `json:"entrantPhone"`
	TicketQuantity int    `json:"ticketQuantity" binding:"required,min=1"`
}

// ReviewSubmissionRequest defines the payload for the admin review action.
// Status must be APPROVED (with TicketNumbers) or REJECTED (with AdminNotes).
type ReviewSubmissionRequest struct {
	Status        SubmissionStatus `json:"status" binding:"required"`
	TicketNumbers []string         `json:"ticketNumbers,omitempty"`
	AdminNotes    string           `json:"adminNotes,omitempty"`
}
