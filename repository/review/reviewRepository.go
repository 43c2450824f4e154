package reviewrepo

import (
	"context"
	"database/sql"

	"campuscrate/model"
)

// RequestParties is what the review flow needs to know about the
// lending request being reviewed.
type RequestParties struct {
	ID         int64
	ItemID     int64
	BorrowerID int64
	LenderID   int64
	Status     model.LendingStatus
}

type Repo interface {
	GetRequestParties(ctx context.Context, requestID int64) (*RequestParties, error)

	Insert(ctx context.Context, tx *sql.Tx, rv *model.Review) error

	// ApplyRating folds one new rating into the reviewee's aggregate
	// inside the same transaction as the review insert.
	ApplyRating(ctx context.Context, tx *sql.Tx, revieweeID int64, rating int) error

	ListByReviewee(ctx context.Context, revieweeID int64) ([]model.Review, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) GetRequestParties(ctx context.Context, requestID int64) (*RequestParties, error) {
	p := &RequestParties{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, borrower_id, lender_id, status
		FROM lending_requests
		WHERE id = $1`, requestID,
	).Scan(&p.ID, &p.ItemID, &p.BorrowerID, &p.LenderID, &p.Status)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	const q = `
		INSERT INTO reviews
			(lending_request_id, reviewer_id, reviewee_id, item_id, rating, comment, type)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		rv.LendingRequestID, rv.ReviewerID, rv.RevieweeID, rv.ItemID,
		rv.Rating, rv.Comment, rv.Type,
	).Scan(&rv.ID, &rv.CreatedAt)
}

func (r *repo) ApplyRating(ctx context.Context, tx *sql.Tx, revieweeID int64, rating int) error {
	const q = `
		UPDATE users
		SET rating = (rating * review_count + $2) / (review_count + 1),
			review_count = review_count + 1
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, revieweeID, rating)
	return err
}

func (r *repo) ListByReviewee(ctx context.Context, revieweeID int64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lending_request_id, reviewer_id, reviewee_id, item_id,
			rating, COALESCE(comment,''), type, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY id DESC`, revieweeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.LendingRequestID, &rv.ReviewerID, &rv.RevieweeID,
			&rv.ItemID, &rv.Rating, &rv.Comment, &rv.Type, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
