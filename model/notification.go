package model

import "time"

type NotificationType string

const (
	NotifLendingRequest      NotificationType = "LENDING_REQUEST"
	NotifRequestAccepted     NotificationType = "REQUEST_ACCEPTED"
	NotifRequestRejected     NotificationType = "REQUEST_REJECTED"
	NotifRequestCancelled    NotificationType = "REQUEST_CANCELLED"
	NotifRequestCompleted    NotificationType = "REQUEST_COMPLETED"
	NotifVerification        NotificationType = "VERIFICATION"
	NotifVerificationMessage NotificationType = "VERIFICATION_MESSAGE"
	NotifReview              NotificationType = "REVIEW"
	NotifMessage             NotificationType = "MESSAGE"
	NotifAdmin               NotificationType = "ADMIN"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	RelatedID int64            `json:"related_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	Link      string           `json:"link,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
