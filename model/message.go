package model

import "time"

type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	ItemID      *int64    `json:"item_id,omitempty"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is one row of the conversation overview: the peer plus
// the most recent message exchanged with them.
type Conversation struct {
	PeerID       int64     `json:"peer_id"`
	PeerUsername string    `json:"peer_username"`
	LastMessage  string    `json:"last_message"`
	LastAt       time.Time `json:"last_at"`
	UnreadCount  int64     `json:"unread_count"`
}
