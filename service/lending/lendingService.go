package lendingsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"campuscrate/model"
	lendingrepo "campuscrate/repository/lending"
)

// errors used by controllers

type ErrCode string

const (
	ErrItemNotFound    ErrCode = "ITEM_NOT_FOUND"
	ErrNotFound        ErrCode = "REQUEST_NOT_FOUND"
	ErrItemUnavailable ErrCode = "ITEM_UNAVAILABLE"
	ErrSelfBorrow      ErrCode = "SELF_BORROW"
	ErrBadDates        ErrCode = "BAD_DATES"
	ErrNotLender       ErrCode = "NOT_LENDER"
	ErrNotBorrower     ErrCode = "NOT_BORROWER"
	ErrNotParty        ErrCode = "NOT_PARTY"
	ErrBadTransition   ErrCode = "BAD_TRANSITION"
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

const lateFeeMultiplier = 1.5

// rentalDays rounds a partial final day up, so any span over N full
// days bills N+1.
func rentalDays(start, end time.Time) int64 {
	return int64(math.Ceil(end.Sub(start).Hours() / 24))
}

type Notifier interface {
	Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string)
}

type Repo = lendingrepo.Repo

type Service interface {
	// Create opens a PENDING request against an available item.
	Create(ctx context.Context, borrowerID, itemID int64, start, end time.Time, message string) (*model.LendingRequest, error)

	// Accept is lender-only and flips the item to RENTED atomically
	// with the status change.
	Accept(ctx context.Context, actorID, requestID int64) (*model.LendingRequest, error)

	// Reject is lender-only and PENDING-only.
	Reject(ctx context.Context, actorID, requestID int64, reason string) (*model.LendingRequest, error)

	// Cancel is the borrower's withdrawal; an accepted cancel frees
	// the item again.
	Cancel(ctx context.Context, actorID, requestID int64, reason string) (*model.LendingRequest, error)

	// Complete closes out the rental, computing late days and fee from
	// the actual return moment.
	Complete(ctx context.Context, actorID, requestID int64) (*model.LendingRequest, error)

	ByID(ctx context.Context, requestID int64) (*model.LendingRequest, error)
	MyRequests(ctx context.Context, borrowerID int64) ([]model.LendingRequest, error)
	Incoming(ctx context.Context, lenderID int64) ([]model.LendingRequest, error)
}

type service struct {
	db  *sql.DB
	r   Repo
	n   Notifier
	now func() time.Time
}

func New(db *sql.DB, r Repo, n Notifier) Service {
	return &service{db: db, r: r, n: n, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, borrowerID, itemID int64, start, end time.Time, message string) (lr *model.LendingRequest, err error) {
	if !end.After(start) {
		return nil, makeErr(ErrBadDates)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	item, err := s.r.LockItem(ctx, tx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, makeErr(ErrItemNotFound)
	}
	if item.OwnerID == borrowerID {
		return nil, makeErr(ErrSelfBorrow)
	}
	if item.Availability != model.ItemAvailable {
		return nil, makeErr(ErrItemUnavailable)
	}

	days := rentalDays(start, end)
	lr = &model.LendingRequest{
		ItemID:          itemID,
		BorrowerID:      borrowerID,
		LenderID:        item.OwnerID,
		StartDate:       start,
		EndDate:         end,
		Status:          model.LendingPending,
		Message:         message,
		TotalCost:       float64(days) * item.DailyRate,
		SecurityDeposit: item.SecurityDeposit,
	}
	if err = s.r.Insert(ctx, tx, lr); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.Emit(ctx, item.OwnerID, model.NotifLendingRequest,
		"New lending request",
		fmt.Sprintf("Someone wants to borrow %q", item.Title),
		lr.ID, fmt.Sprintf("/lending/%d", lr.ID))
	return lr, nil
}

func (s *service) Accept(ctx context.Context, actorID, requestID int64) (lr *model.LendingRequest, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lr, err = s.r.LockRequest(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if lr.LenderID != actorID {
		return nil, makeErr(ErrNotLender)
	}
	if !lr.Status.CanTransition(model.LendingAccepted) {
		return nil, makeErr(ErrBadTransition)
	}

	// Flipping AVAILABLE -> RENTED here, not just in Create, is what
	// keeps a second pending request from also being accepted.
	ok, err := s.r.MarkItemRented(ctx, tx, lr.ItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrItemUnavailable)
	}

	if err = s.r.UpdateStatus(ctx, tx, requestID, model.LendingAccepted, ""); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	lr.Status = model.LendingAccepted

	s.n.Emit(ctx, lr.BorrowerID, model.NotifRequestAccepted,
		"Request accepted",
		"Your lending request was accepted",
		lr.ID, fmt.Sprintf("/lending/%d", lr.ID))
	return lr, nil
}

func (s *service) Reject(ctx context.Context, actorID, requestID int64, reason string) (lr *model.LendingRequest, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lr, err = s.r.LockRequest(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if lr.LenderID != actorID {
		return nil, makeErr(ErrNotLender)
	}
	if !lr.Status.CanTransition(model.LendingRejected) {
		return nil, makeErr(ErrBadTransition)
	}

	if err = s.r.UpdateStatus(ctx, tx, requestID, model.LendingRejected, reason); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	lr.Status = model.LendingRejected
	lr.CancellationReason = reason

	s.n.Emit(ctx, lr.BorrowerID, model.NotifRequestRejected,
		"Request rejected",
		"Your lending request was rejected",
		lr.ID, fmt.Sprintf("/lending/%d", lr.ID))
	return lr, nil
}

func (s *service) Cancel(ctx context.Context, actorID, requestID int64, reason string) (lr *model.LendingRequest, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lr, err = s.r.LockRequest(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if lr.BorrowerID != actorID {
		return nil, makeErr(ErrNotBorrower)
	}
	if !lr.Status.CanTransition(model.LendingCancelled) {
		return nil, makeErr(ErrBadTransition)
	}

	// A cancel after acceptance holds the item; give it back.
	if lr.Status != model.LendingPending {
		if err = s.r.FreeItem(ctx, tx, lr.ItemID); err != nil {
			return nil, err
		}
	}

	if err = s.r.UpdateStatus(ctx, tx, requestID, model.LendingCancelled, reason); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	lr.Status = model.LendingCancelled
	lr.CancellationReason = reason

	s.n.Emit(ctx, lr.LenderID, model.NotifRequestCancelled,
		"Request cancelled",
		"The borrower cancelled the lending request",
		lr.ID, fmt.Sprintf("/lending/%d", lr.ID))
	return lr, nil
}

func (s *service) Complete(ctx context.Context, actorID, requestID int64) (lr *model.LendingRequest, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lr, err = s.r.LockRequest(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if actorID != lr.LenderID && actorID != lr.BorrowerID {
		return nil, makeErr(ErrNotParty)
	}
	if !lr.Status.CanTransition(model.LendingCompleted) {
		return nil, makeErr(ErrBadTransition)
	}

	item, err := s.r.LockItem(ctx, tx, lr.ItemID)
	if err != nil {
		return nil, err
	}

	returnedAt := s.now()
	var lateDays int64
	var lateFee float64
	if returnedAt.After(lr.EndDate) {
		lateDays = rentalDays(lr.EndDate, returnedAt)
		lateFee = float64(lateDays) * item.DailyRate * lateFeeMultiplier
	}

	if err = s.r.Complete(ctx, tx, requestID, returnedAt, lateDays, lateFee); err != nil {
		return nil, err
	}
	if err = s.r.FreeItem(ctx, tx, lr.ItemID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	lr.Status = model.LendingCompleted
	lr.ActualReturnDate = &returnedAt
	lr.LateReturnDays = lateDays
	lr.LateFee = lateFee

	other := lr.BorrowerID
	if actorID == lr.BorrowerID {
		other = lr.LenderID
	}
	s.n.Emit(ctx, other, model.NotifRequestCompleted,
		"Rental completed",
		fmt.Sprintf("The rental of %q is complete", item.Title),
		lr.ID, fmt.Sprintf("/lending/%d", lr.ID))
	return lr, nil
}

func (s *service) ByID(ctx context.Context, requestID int64) (*model.LendingRequest, error) {
	lr, err := s.r.ByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return lr, nil
}

func (s *service) MyRequests(ctx context.Context, borrowerID int64) ([]model.LendingRequest, error) {
	return s.r.ListByBorrower(ctx, borrowerID)
}

func (s *service) Incoming(ctx context.Context, lenderID int64) ([]model.LendingRequest, error) {
	return s.r.ListByLender(ctx, lenderID)
}
