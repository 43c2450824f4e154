package itemrepo

import (
	"context"
	"database/sql"

	"campuscrate/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.Item) error
	ByID(ctx context.Context, id int64) (*model.Item, error)

	// List returns active items. category and q are optional filters;
	// q is a substring match on title/description delegated to the DB.
	List(ctx context.Context, category, q string) ([]model.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)

	Update(ctx context.Context, it *model.Item) error

	// SoftDelete clears is_active unless the item is currently rented.
	// Returns false when nothing matched (missing, inactive or rented).
	SoftDelete(ctx context.Context, id, ownerID int64) (bool, error)

	// Moderate force-sets availability and active flag (admin path).
	Moderate(ctx context.Context, id int64, availability model.ItemAvailability, active bool) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const itemCols = `id, owner_id, title, description, category, daily_rate,
	security_deposit, availability, is_active, created_at, updated_at`

func (r *repo) Create(ctx context.Context, it *model.Item) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO items(owner_id, title, description, category, daily_rate, security_deposit)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, availability, is_active, created_at, updated_at`,
		it.OwnerID, it.Title, it.Description, it.Category, it.DailyRate, it.SecurityDeposit,
	).Scan(&it.ID, &it.Availability, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
}

func scanItem(rows *sql.Rows, it *model.Item) error {
	return rows.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category,
		&it.DailyRate, &it.SecurityDeposit, &it.Availability, &it.IsActive,
		&it.CreatedAt, &it.UpdatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Item, error) {
	it := &model.Item{}
	err := r.db.QueryRowContext(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE id = $1`, id,
	).Scan(&it.ID, &it.OwnerID, &it.Title, &it.Description, &it.Category,
		&it.DailyRate, &it.SecurityDeposit, &it.Availability, &it.IsActive,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repo) List(ctx context.Context, category, q string) ([]model.Item, error) {
	const query = `
		SELECT ` + itemCols + `
		FROM items
		WHERE is_active
		AND ($1 = '' OR category = $1)
		AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query, category, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE owner_id = $1 AND is_active
		ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, it *model.Item) error {
	return r.db.QueryRowContext(ctx, `
		UPDATE items
		SET title = $2,
			description = $3,
			category = $4,
			daily_rate = $5,
			security_deposit = $6,
			availability = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		it.ID, it.Title, it.Description, it.Category,
		it.DailyRate, it.SecurityDeposit, it.Availability,
	).Scan(&it.UpdatedAt)
}

func (r *repo) SoftDelete(ctx context.Context, id, ownerID int64) (bool, error) {
	const q = `
		UPDATE items
		SET is_active = false,
			updated_at = now()
		WHERE id = $1
		AND owner_id = $2
		AND is_active
		AND availability <> 'RENTED'`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Moderate(ctx context.Context, id int64, availability model.ItemAvailability, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET availability = $2,
			is_active = $3,
			updated_at = now()
		WHERE id = $1`, id, availability, active)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}
