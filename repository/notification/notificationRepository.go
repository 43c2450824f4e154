package notificationrepo

import (
	"context"
	"database/sql"

	"campuscrate/model"
)

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]model.Notification, error)

	// MarkRead flips is_read for one of the user's notifications.
	// Returns false when the id does not belong to the user.
	MarkRead(ctx context.Context, userID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `
		INSERT INTO notifications (user_id, type, title, message, related_id, link)
		VALUES ($1,$2,$3,$4,NULLIF($5,0),NULLIF($6,''))
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.Link,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, message,
			COALESCE(related_id, 0), is_read, COALESCE(link, ''), created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.RelatedID, &n.IsRead, &n.Link, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repo) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1
		AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE user_id = $1
		AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
