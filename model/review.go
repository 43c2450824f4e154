package model

import "time"

type ReviewType string

const (
	ReviewOfLender   ReviewType = "LENDER"
	ReviewOfBorrower ReviewType = "BORROWER"
)

type Review struct {
	ID               int64      `json:"id"`
	LendingRequestID int64      `json:"lending_request_id"`
	ReviewerID       int64      `json:"reviewer_id"`
	RevieweeID       int64      `json:"reviewee_id"`
	ItemID           int64      `json:"item_id"`
	Rating           int        `json:"rating"`
	Comment          string     `json:"comment,omitempty"`
	Type             ReviewType `json:"type"`
	CreatedAt        time.Time  `json:"created_at"`
}
