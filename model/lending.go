package model

import "time"

type LendingStatus string

const (
	LendingPending   LendingStatus = "PENDING"
	LendingAccepted  LendingStatus = "ACCEPTED"
	LendingRejected  LendingStatus = "REJECTED"
	LendingActive    LendingStatus = "ACTIVE"
	LendingCompleted LendingStatus = "COMPLETED"
	LendingCancelled LendingStatus = "CANCELLED"
	LendingDisputed  LendingStatus = "DISPUTED"
)

// lendingTransitions is the single allowed-transitions table; every
// lifecycle operation (accept, reject, cancel, complete) consults it
// instead of re-deriving validity inline.
var lendingTransitions = map[LendingStatus][]LendingStatus{
	LendingPending:  {LendingAccepted, LendingRejected, LendingCancelled},
	LendingAccepted: {LendingActive, LendingCompleted, LendingCancelled, LendingDisputed},
	LendingActive:   {LendingCompleted, LendingDisputed},
	LendingDisputed: {LendingCompleted, LendingCancelled},
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle step. Terminal states (REJECTED, COMPLETED, CANCELLED)
// have no outgoing edges.
func (s LendingStatus) CanTransition(next LendingStatus) bool {
	for _, t := range lendingTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s LendingStatus) Terminal() bool {
	return len(lendingTransitions[s]) == 0
}

type LendingRequest struct {
	ID                 int64         `json:"id"`
	ItemID             int64         `json:"item_id"`
	BorrowerID         int64         `json:"borrower_id"`
	LenderID           int64         `json:"lender_id"`
	StartDate          time.Time     `json:"start_date"`
	EndDate            time.Time     `json:"end_date"`
	Status             LendingStatus `json:"status"`
	Message            string        `json:"message,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	TotalCost          float64       `json:"total_cost"`
	SecurityDeposit    float64       `json:"security_deposit"`
	ActualReturnDate   *time.Time    `json:"actual_return_date,omitempty"`
	LateReturnDays     int64         `json:"late_return_days"`
	LateFee            float64       `json:"late_fee"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
