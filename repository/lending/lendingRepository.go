package lendingrepo

import (
	"context"
	"database/sql"
	"time"

	"campuscrate/model"
)

// ItemSnapshot is the slice of an item the lifecycle needs, read under
// FOR UPDATE so the availability flip and the request write land
// against the same row version.
type ItemSnapshot struct {
	ID              int64
	OwnerID         int64
	DailyRate       float64
	SecurityDeposit float64
	Availability    model.ItemAvailability
	IsActive        bool
	Title           string
}

type Repo interface {
	// Items
	LockItem(ctx context.Context, tx *sql.Tx, itemID int64) (*ItemSnapshot, error)

	// MarkItemRented flips AVAILABLE -> RENTED; false when the item was
	// not available, which is how a second accept on the same item fails.
	MarkItemRented(ctx context.Context, tx *sql.Tx, itemID int64) (bool, error)
	FreeItem(ctx context.Context, tx *sql.Tx, itemID int64) error

	// Requests
	Insert(ctx context.Context, tx *sql.Tx, lr *model.LendingRequest) error
	LockRequest(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error
	Complete(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, lateDays int64, lateFee float64) error

	ByID(ctx context.Context, id int64) (*model.LendingRequest, error)
	ListByBorrower(ctx context.Context, borrowerID int64) ([]model.LendingRequest, error)
	ListByLender(ctx context.Context, lenderID int64) ([]model.LendingRequest, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) LockItem(ctx context.Context, tx *sql.Tx, itemID int64) (*ItemSnapshot, error) {
	const q = `
		SELECT id, owner_id, daily_rate, security_deposit, availability, is_active, title
		FROM items
		WHERE id = $1
		FOR UPDATE`
	s := &ItemSnapshot{}
	err := tx.QueryRowContext(ctx, q, itemID).Scan(
		&s.ID, &s.OwnerID, &s.DailyRate, &s.SecurityDeposit, &s.Availability, &s.IsActive, &s.Title)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repo) MarkItemRented(ctx context.Context, tx *sql.Tx, itemID int64) (bool, error) {
	const q = `
		UPDATE items
		SET availability = 'RENTED',
			updated_at = now()
		WHERE id = $1
		AND availability = 'AVAILABLE'
		AND is_active`
	res, err := tx.ExecContext(ctx, q, itemID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) FreeItem(ctx context.Context, tx *sql.Tx, itemID int64) error {
	const q = `
		UPDATE items
		SET availability = 'AVAILABLE',
			updated_at = now()
		WHERE id = $1
		AND availability = 'RENTED'`
	_, err := tx.ExecContext(ctx, q, itemID)
	return err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, lr *model.LendingRequest) error {
	const q = `
		INSERT INTO lending_requests
			(item_id, borrower_id, lender_id, start_date, end_date, status,
			 message, total_cost, security_deposit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		lr.ItemID, lr.BorrowerID, lr.LenderID, lr.StartDate, lr.EndDate,
		lr.Status, lr.Message, lr.TotalCost, lr.SecurityDeposit,
	).Scan(&lr.ID, &lr.CreatedAt, &lr.UpdatedAt)
}

const requestCols = `id, item_id, borrower_id, lender_id, start_date, end_date,
	status, COALESCE(message,''), COALESCE(cancellation_reason,''),
	total_cost, security_deposit, actual_return_date, late_return_days, late_fee,
	created_at, updated_at`

func scanRequest(scan func(dest ...any) error) (*model.LendingRequest, error) {
	lr := &model.LendingRequest{}
	err := scan(&lr.ID, &lr.ItemID, &lr.BorrowerID, &lr.LenderID,
		&lr.StartDate, &lr.EndDate, &lr.Status, &lr.Message, &lr.CancellationReason,
		&lr.TotalCost, &lr.SecurityDeposit, &lr.ActualReturnDate,
		&lr.LateReturnDays, &lr.LateFee, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return lr, nil
}

func (r *repo) LockRequest(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+requestCols+`
		FROM lending_requests
		WHERE id = $1
		FOR UPDATE`, id)
	return scanRequest(row.Scan)
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error {
	const q = `
		UPDATE lending_requests
		SET status = $2,
			cancellation_reason = NULLIF($3, ''),
			updated_at = now()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status, reason)
	return err
}

func (r *repo) Complete(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, lateDays int64, lateFee float64) error {
	const q = `
		UPDATE lending_requests
		SET status = 'COMPLETED',
			actual_return_date = $2,
			late_return_days = $3,
			late_fee = $4,
			updated_at = now()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, returnedAt, lateDays, lateFee)
	return err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.LendingRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+requestCols+`
		FROM lending_requests
		WHERE id = $1`, id)
	return scanRequest(row.Scan)
}

func (r *repo) list(ctx context.Context, col string, userID int64) ([]model.LendingRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestCols+`
		FROM lending_requests
		WHERE `+col+` = $1
		ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LendingRequest
	for rows.Next() {
		lr, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *lr)
	}
	return out, rows.Err()
}

func (r *repo) ListByBorrower(ctx context.Context, borrowerID int64) ([]model.LendingRequest, error) {
	return r.list(ctx, "borrower_id", borrowerID)
}

func (r *repo) ListByLender(ctx context.Context, lenderID int64) ([]model.LendingRequest, error) {
	return r.list(ctx, "lender_id", lenderID)
}
