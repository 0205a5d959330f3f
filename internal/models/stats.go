package models

import "time"

// RaffleStats is the derived summary for a single raffle. It is recomputed
// from the submission and ticket collections on demand, never incrementally
// mutated.
type RaffleStats struct {
	RaffleID            string    `json:"raffleId"`
	PendingSubmissions  int       `json:"pendingSubmissions"`
	ApprovedSubmissions int       `json:"approvedSubmissions"`
	RejectedSubmissions int       `json:"rejectedSubmissions"`
	TotalSubmissions    int       `json:"totalSubmissions"`
	RequestedTickets    int       `json:"requestedTickets"`
	IssuedTickets       int       `json:"issuedTickets"`
	Revenue             float64   `json:"revenue"`
	ComputedAt          time.Time `json:"computedAt"`
}
