package verificationrepo

import (
	"context"
	"database/sql"
	"time"

	"campuscrate/model"
)

type Repo interface {
	UserVerified(ctx context.Context, userID int64) (bool, error)

	// Upsert creates the user's verification request or, when one
	// already exists, resets it to pending with the new message and
	// clears the previous review fields. The unique index on user_id
	// guarantees at most one row per user.
	Upsert(ctx context.Context, userID int64, message string) (*model.VerificationRequest, error)

	ByID(ctx context.Context, id int64) (*model.VerificationRequest, error)
	ByUserID(ctx context.Context, userID int64) (*model.VerificationRequest, error)
	List(ctx context.Context) ([]model.VerificationRequest, error)

	SetReview(ctx context.Context, tx *sql.Tx, id int64, status model.VerificationStatus, note string, adminID int64, at time.Time) error
	MarkUserVerified(ctx context.Context, tx *sql.Tx, userID int64) error

	AppendMessage(ctx context.Context, msg *model.AdminMessage) error
	ListMessages(ctx context.Context, requestID int64) ([]model.AdminMessage, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) UserVerified(ctx context.Context, userID int64) (bool, error) {
	var v bool
	err := r.db.QueryRowContext(ctx, `
		SELECT is_verified FROM users WHERE id = $1`, userID).Scan(&v)
	return v, err
}

const vrCols = `id, user_id, status, message, COALESCE(admin_note,''),
	reviewed_by, reviewed_at, created_at, updated_at`

func scanVR(scan func(dest ...any) error) (*model.VerificationRequest, error) {
	vr := &model.VerificationRequest{}
	err := scan(&vr.ID, &vr.UserID, &vr.Status, &vr.Message, &vr.AdminNote,
		&vr.ReviewedBy, &vr.ReviewedAt, &vr.CreatedAt, &vr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return vr, nil
}

func (r *repo) Upsert(ctx context.Context, userID int64, message string) (*model.VerificationRequest, error) {
	const q = `
		INSERT INTO verification_requests (user_id, status, message)
		VALUES ($1, 'pending', $2)
		ON CONFLICT (user_id) DO UPDATE
		SET status = 'pending',
			message = EXCLUDED.message,
			admin_note = NULL,
			reviewed_by = NULL,
			reviewed_at = NULL,
			updated_at = now()
		RETURNING ` + vrCols
	row := r.db.QueryRowContext(ctx, q, userID, message)
	return scanVR(row.Scan)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.VerificationRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+vrCols+`
		FROM verification_requests
		WHERE id = $1`, id)
	return scanVR(row.Scan)
}

func (r *repo) ByUserID(ctx context.Context, userID int64) (*model.VerificationRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+vrCols+`
		FROM verification_requests
		WHERE user_id = $1`, userID)
	return scanVR(row.Scan)
}

func (r *repo) List(ctx context.Context) ([]model.VerificationRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+vrCols+`
		FROM verification_requests
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VerificationRequest
	for rows.Next() {
		vr, err := scanVR(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *vr)
	}
	return out, rows.Err()
}

func (r *repo) SetReview(ctx context.Context, tx *sql.Tx, id int64, status model.VerificationStatus, note string, adminID int64, at time.Time) error {
	const q = `
		UPDATE verification_requests
		SET status = $2,
			admin_note = NULLIF($3, ''),
			reviewed_by = $4,
			reviewed_at = $5,
			updated_at = now()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status, note, adminID, at)
	return err
}

func (r *repo) MarkUserVerified(ctx context.Context, tx *sql.Tx, userID int64) error {
	const q = `
		UPDATE users
		SET is_verified = true
		WHERE id = $1
		AND NOT is_verified`
	_, err := tx.ExecContext(ctx, q, userID)
	return err
}

func (r *repo) AppendMessage(ctx context.Context, msg *model.AdminMessage) error {
	const q = `
		INSERT INTO verification_messages (verification_request_id, sender_id, content)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		msg.VerificationRequestID, msg.SenderID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *repo) ListMessages(ctx context.Context, requestID int64) ([]model.AdminMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, verification_request_id, sender_id, content, created_at
		FROM verification_messages
		WHERE verification_request_id = $1
		ORDER BY id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AdminMessage
	for rows.Next() {
		var m model.AdminMessage
		if err := rows.Scan(&m.ID, &m.VerificationRequestID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
