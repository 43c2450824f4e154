package model

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func ValidVerificationStatus(s VerificationStatus) bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

// VerificationRequest is one-to-one with a user (unique index on
// user_id); resubmission resets the existing row instead of creating
// a second one.
type VerificationRequest struct {
	ID         int64              `json:"id"`
	UserID     int64              `json:"user_id"`
	Status     VerificationStatus `json:"status"`
	Message    string             `json:"message"`
	AdminNote  string             `json:"admin_note,omitempty"`
	ReviewedBy *int64             `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AdminMessage is an append-only entry on a verification request.
type AdminMessage struct {
	ID                    int64     `json:"id"`
	VerificationRequestID int64     `json:"verification_request_id"`
	SenderID              int64     `json:"sender_id"`
	Content               string    `json:"content"`
	CreatedAt             time.Time `json:"created_at"`
}
