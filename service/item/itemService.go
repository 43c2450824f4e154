package itemsvc

import (
	"context"
	"database/sql"
	"errors"

	"campuscrate/model"
	itemrepo "campuscrate/repository/item"
)

type ErrCode string

const (
	ErrNotFound    ErrCode = "ITEM_NOT_FOUND"
	ErrNotOwner    ErrCode = "NOT_OWNER"
	ErrBadCategory ErrCode = "BAD_CATEGORY"
	ErrRented      ErrCode = "ITEM_RENTED"
	ErrBadState    ErrCode = "BAD_STATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo = itemrepo.Repo

// UpdateReq carries the owner-editable fields.
type UpdateReq struct {
	Title           string
	Description     string
	Category        string
	DailyRate       float64
	SecurityDeposit float64
	Availability    model.ItemAvailability
}

type Service interface {
	Create(ctx context.Context, ownerID int64, title, description, category string, dailyRate, deposit float64) (*model.Item, error)
	ByID(ctx context.Context, id int64) (*model.Item, error)
	List(ctx context.Context, category, q string) ([]model.Item, error)
	Mine(ctx context.Context, ownerID int64) ([]model.Item, error)
	Update(ctx context.Context, ownerID, id int64, req UpdateReq) (*model.Item, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, ownerID int64, title, description, category string, dailyRate, deposit float64) (*model.Item, error) {
	if !model.ValidCategory(category) {
		return nil, makeErr(ErrBadCategory)
	}
	it := &model.Item{
		OwnerID:         ownerID,
		Title:           title,
		Description:     description,
		Category:        category,
		DailyRate:       dailyRate,
		SecurityDeposit: deposit,
	}
	if err := s.r.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !it.IsActive {
		return nil, makeErr(ErrNotFound)
	}
	return it, nil
}

func (s *service) List(ctx context.Context, category, q string) ([]model.Item, error) {
	if category != "" && !model.ValidCategory(category) {
		return nil, makeErr(ErrBadCategory)
	}
	return s.r.List(ctx, category, q)
}

func (s *service) Mine(ctx context.Context, ownerID int64) ([]model.Item, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

func (s *service) Update(ctx context.Context, ownerID, id int64, req UpdateReq) (*model.Item, error) {
	it, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != ownerID {
		return nil, makeErr(ErrNotOwner)
	}
	if !model.ValidCategory(req.Category) {
		return nil, makeErr(ErrBadCategory)
	}
	// RENTED is owned by the lending lifecycle; owners can only move
	// between the self-managed states, and not while rented.
	if it.Availability == model.ItemRented {
		return nil, makeErr(ErrRented)
	}
	switch req.Availability {
	case model.ItemAvailable, model.ItemMaintenance, model.ItemUnavailable:
	default:
		return nil, makeErr(ErrBadState)
	}

	it.Title = req.Title
	it.Description = req.Description
	it.Category = req.Category
	it.DailyRate = req.DailyRate
	it.SecurityDeposit = req.SecurityDeposit
	it.Availability = req.Availability
	if err := s.r.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id int64) error {
	it, err := s.ByID(ctx, id)
	if err != nil {
		return err
	}
	if it.OwnerID != ownerID {
		return makeErr(ErrNotOwner)
	}
	ok, err := s.r.SoftDelete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		// The row was there a moment ago, so the guard that failed is
		// the rented check.
		return makeErr(ErrRented)
	}
	return nil
}
