package reviewsvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"campuscrate/model"
	reviewrepo "campuscrate/repository/review"
)

type repoMock struct {
	partiesFn     func(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error)
	insertFn      func(ctx context.Context, tx *sql.Tx, rv *model.Review) error
	applyRatingFn func(ctx context.Context, tx *sql.Tx, revieweeID int64, rating int) error
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) GetRequestParties(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error) {
	return m.partiesFn(ctx, requestID)
}
func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
	return m.insertFn(ctx, tx, rv)
}
func (m *repoMock) ApplyRating(ctx context.Context, tx *sql.Tx, revieweeID int64, rating int) error {
	return m.applyRatingFn(ctx, tx, revieweeID, rating)
}
func (m *repoMock) ListByReviewee(ctx context.Context, revieweeID int64) ([]model.Review, error) {
	return nil, nil
}

type notifierMock struct{ emits int }

func (n *notifierMock) Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string) {
	n.emits++
}

func completedParties() *reviewrepo.RequestParties {
	return &reviewrepo.RequestParties{
		ID: 9, ItemID: 7, BorrowerID: 1, LenderID: 42, Status: model.LendingCompleted,
	}
}

func newSvc(t *testing.T, r Repo, n Notifier) (*service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, r, n).(*service), mock
}

func TestCreate_BorrowerReviewsLender(t *testing.T) {
	n := &notifierMock{}
	var ratedUser int64
	m := &repoMock{
		partiesFn: func(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error) {
			return completedParties(), nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
			rv.ID = 3
			return nil
		},
		applyRatingFn: func(ctx context.Context, tx *sql.Tx, revieweeID int64, rating int) error {
			ratedUser = revieweeID
			require.Equal(t, 5, rating)
			return nil
		},
	}
	s, mock := newSvc(t, m, n)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rv, err := s.Create(context.Background(), 1, 9, 5, "great lender")
	require.NoError(t, err)
	require.Equal(t, model.ReviewOfLender, rv.Type)
	require.Equal(t, int64(42), rv.RevieweeID)
	require.Equal(t, int64(42), ratedUser)
	require.Equal(t, 1, n.emits)
}

func TestCreate_LenderReviewsBorrower(t *testing.T) {
	m := &repoMock{
		partiesFn: func(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error) {
			return completedParties(), nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, rv *model.Review) error { return nil },
		applyRatingFn: func(ctx context.Context, tx *sql.Tx, revieweeID int64, rating int) error {
			return nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	rv, err := s.Create(context.Background(), 42, 9, 4, "returned on time")
	require.NoError(t, err)
	require.Equal(t, model.ReviewOfBorrower, rv.Type)
	require.Equal(t, int64(1), rv.RevieweeID)
}

func TestCreate_StrangerForbidden(t *testing.T) {
	m := &repoMock{
		partiesFn: func(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error) {
			return completedParties(), nil
		},
	}
	s, _ := newSvc(t, m, &notifierMock{})

	_, err := s.Create(context.Background(), 99, 9, 4, "")
	require.Equal(t, ErrNotParty, Code(err))
}

func TestCreate_NotCompleted(t *testing.T) {
	m := &repoMock{
		partiesFn: func(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error) {
			p := completedParties()
			p.Status = model.LendingAccepted
			return p, nil
		},
	}
	s, _ := newSvc(t, m, &notifierMock{})

	_, err := s.Create(context.Background(), 1, 9, 4, "")
	require.Equal(t, ErrNotCompleted, Code(err))
}

func TestCreate_DuplicateMapped(t *testing.T) {
	m := &repoMock{
		partiesFn: func(ctx context.Context, requestID int64) (*reviewrepo.RequestParties, error) {
			return completedParties(), nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, rv *model.Review) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "reviews_request_reviewer_key"}
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, 9, 4, "")
	require.Equal(t, ErrDuplicate, Code(err))
}

func TestCreate_BadRating(t *testing.T) {
	s, _ := newSvc(t, &repoMock{}, &notifierMock{})
	for _, rating := range []int{0, -1, 6} {
		_, err := s.Create(context.Background(), 1, 9, rating, "")
		require.Equal(t, ErrBadRating, Code(err))
	}
}
