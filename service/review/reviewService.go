package reviewsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"campuscrate/model"
	reviewrepo "campuscrate/repository/review"
)

type ErrCode string

const (
	ErrRequestNotFound ErrCode = "REQUEST_NOT_FOUND"
	ErrNotParty        ErrCode = "NOT_PARTY"
	ErrNotCompleted    ErrCode = "NOT_COMPLETED"
	ErrDuplicate       ErrCode = "ALREADY_REVIEWED"
	ErrBadRating       ErrCode = "BAD_RATING"
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

type Notifier interface {
	Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string)
}

type Repo = reviewrepo.Repo

type Service interface {
	// Create reviews the other party of a completed lending request;
	// the reviewee and the review type are derived from which side the
	// caller was on.
	Create(ctx context.Context, reviewerID, requestID int64, rating int, comment string) (*model.Review, error)

	ForUser(ctx context.Context, userID int64) ([]model.Review, error)
}

type service struct {
	db *sql.DB
	r  Repo
	n  Notifier
}

func New(db *sql.DB, r Repo, n Notifier) Service { return &service{db: db, r: r, n: n} }

func (s *service) Create(ctx context.Context, reviewerID, requestID int64, rating int, comment string) (rv *model.Review, err error) {
	if rating < 1 || rating > 5 {
		return nil, makeErr(ErrBadRating)
	}

	p, err := s.r.GetRequestParties(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRequestNotFound)
		}
		return nil, err
	}
	if p.Status != model.LendingCompleted {
		return nil, makeErr(ErrNotCompleted)
	}

	var revieweeID int64
	var typ model.ReviewType
	switch reviewerID {
	case p.BorrowerID:
		revieweeID, typ = p.LenderID, model.ReviewOfLender
	case p.LenderID:
		revieweeID, typ = p.BorrowerID, model.ReviewOfBorrower
	default:
		return nil, makeErr(ErrNotParty)
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

	rv = &model.Review{
		LendingRequestID: requestID,
		ReviewerID:       reviewerID,
		RevieweeID:       revieweeID,
		ItemID:           p.ItemID,
		Rating:           rating,
		Comment:          comment,
		Type:             typ,
	}
	if err = s.r.Insert(ctx, tx, rv); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, makeErr(ErrDuplicate)
		}
		return nil, err
	}
	if err = s.r.ApplyRating(ctx, tx, revieweeID, rating); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.n.Emit(ctx, revieweeID, model.NotifReview,
		"New review", "You received a new review", rv.ID, "/profile/reviews")
	return rv, nil
}

func (s *service) ForUser(ctx context.Context, userID int64) ([]model.Review, error) {
	return s.r.ListByReviewee(ctx, userID)
}
