package messagerepo

import (
	"context"
	"database/sql"

	"campuscrate/model"
)

type Repo interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	Insert(ctx context.Context, m *model.Message) error

	// Conversations lists distinct peers with the latest message and
	// the caller's unread count per peer.
	Conversations(ctx context.Context, userID int64) ([]model.Conversation, error)

	// Thread returns the two-party history in send order.
	Thread(ctx context.Context, userID, peerID int64) ([]model.Message, error)
	MarkThreadRead(ctx context.Context, userID, peerID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) UserExists(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok)
	return ok, err
}

func (r *repo) Insert(ctx context.Context, m *model.Message) error {
	const q = `
		INSERT INTO messages (sender_id, recipient_id, item_id, content)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		m.SenderID, m.RecipientID, m.ItemID, m.Content,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) Conversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	const q = `
		SELECT DISTINCT ON (peer_id)
			peer_id, u.username, m.content, m.created_at,
			(SELECT COUNT(*) FROM messages
			 WHERE recipient_id = $1 AND sender_id = peer_id AND NOT is_read)
		FROM (
			SELECT *,
				CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS peer_id
			FROM messages
			WHERE sender_id = $1 OR recipient_id = $1
		) m
		JOIN users u ON u.id = m.peer_id
		ORDER BY peer_id, m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.PeerID, &c.PeerUsername, &c.LastMessage, &c.LastAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) Thread(ctx context.Context, userID, peerID int64) ([]model.Message, error) {
	const q = `
		SELECT id, sender_id, recipient_id, item_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, userID, peerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.ItemID,
			&m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) MarkThreadRead(ctx context.Context, userID, peerID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET is_read = true
		WHERE recipient_id = $1
		AND sender_id = $2
		AND NOT is_read`, userID, peerID)
	return err
}
