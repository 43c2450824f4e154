// service/lending/lending_service_test.go
package lendingsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"campuscrate/model"
	lendingrepo "campuscrate/repository/lending"
)

type repoMock struct {
	lockItemFn       func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error)
	markItemRentedFn func(ctx context.Context, tx *sql.Tx, itemID int64) (bool, error)
	freeItemFn       func(ctx context.Context, tx *sql.Tx, itemID int64) error
	insertFn         func(ctx context.Context, tx *sql.Tx, lr *model.LendingRequest) error
	lockRequestFn    func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error)
	updateStatusFn   func(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error
	completeFn       func(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, lateDays int64, lateFee float64) error
	byIDFn           func(ctx context.Context, id int64) (*model.LendingRequest, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) LockItem(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
	return m.lockItemFn(ctx, tx, itemID)
}
func (m *repoMock) MarkItemRented(ctx context.Context, tx *sql.Tx, itemID int64) (bool, error) {
	return m.markItemRentedFn(ctx, tx, itemID)
}
func (m *repoMock) FreeItem(ctx context.Context, tx *sql.Tx, itemID int64) error {
	return m.freeItemFn(ctx, tx, itemID)
}
func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, lr *model.LendingRequest) error {
	return m.insertFn(ctx, tx, lr)
}
func (m *repoMock) LockRequest(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
	return m.lockRequestFn(ctx, tx, id)
}
func (m *repoMock) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error {
	return m.updateStatusFn(ctx, tx, id, status, reason)
}
func (m *repoMock) Complete(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, lateDays int64, lateFee float64) error {
	return m.completeFn(ctx, tx, id, returnedAt, lateDays, lateFee)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.LendingRequest, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ListByBorrower(ctx context.Context, borrowerID int64) ([]model.LendingRequest, error) {
	return nil, nil
}
func (m *repoMock) ListByLender(ctx context.Context, lenderID int64) ([]model.LendingRequest, error) {
	return nil, nil
}

type emitted struct {
	userID int64
	typ    model.NotificationType
}

type notifierMock struct{ emits []emitted }

func (n *notifierMock) Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string) {
	n.emits = append(n.emits, emitted{userID: userID, typ: typ})
}

func newSvc(t *testing.T, r Repo, n *notifierMock) (*service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := New(db, r, n).(*service)
	return s, mock
}

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func availableItem(ownerID int64, rate, deposit float64) *lendingrepo.ItemSnapshot {
	return &lendingrepo.ItemSnapshot{
		ID: 7, OwnerID: ownerID, DailyRate: rate, SecurityDeposit: deposit,
		Availability: model.ItemAvailable, IsActive: true, Title: "Cordless drill",
	}
}

// --- create ---

func TestCreate_SelfBorrowAlwaysFails(t *testing.T) {
	n := &notifierMock{}
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			return availableItem(42, 50, 100), nil
		},
	}
	s, mock := newSvc(t, m, n)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 42, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T00:00:00Z"), "")
	require.Equal(t, ErrSelfBorrow, Code(err))
	require.Empty(t, n.emits)
}

func TestCreate_SelfBorrowBeatsUnavailable(t *testing.T) {
	// Owner identity is checked before availability, so a self-borrow
	// is rejected as such regardless of item state.
	n := &notifierMock{}
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			it := availableItem(42, 50, 100)
			it.Availability = model.ItemRented
			return it, nil
		},
	}
	s, mock := newSvc(t, m, n)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 42, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T00:00:00Z"), "")
	require.Equal(t, ErrSelfBorrow, Code(err))
}

func TestCreate_BadDates(t *testing.T) {
	s, _ := newSvc(t, &repoMock{}, &notifierMock{})

	_, err := s.Create(context.Background(), 1, 7,
		date("2024-01-04T00:00:00Z"), date("2024-01-01T00:00:00Z"), "")
	require.Equal(t, ErrBadDates, Code(err))

	_, err = s.Create(context.Background(), 1, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-01T00:00:00Z"), "")
	require.Equal(t, ErrBadDates, Code(err))
}

func TestCreate_ItemNotFound(t *testing.T) {
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T00:00:00Z"), "")
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestCreate_InactiveItemIsNotFound(t *testing.T) {
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			it := availableItem(42, 50, 100)
			it.IsActive = false
			return it, nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T00:00:00Z"), "")
	require.Equal(t, ErrItemNotFound, Code(err))
}

func TestCreate_Unavailable(t *testing.T) {
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			it := availableItem(42, 50, 100)
			it.Availability = model.ItemMaintenance
			return it, nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T00:00:00Z"), "")
	require.Equal(t, ErrItemUnavailable, Code(err))
}

func TestCreate_CostSnapshot(t *testing.T) {
	// rate 50, 2024-01-01 -> 2024-01-04 = 3 days = 150
	n := &notifierMock{}
	var inserted *model.LendingRequest
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			return availableItem(42, 50, 100), nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, lr *model.LendingRequest) error {
			lr.ID = 9
			inserted = lr
			return nil
		},
	}
	s, mock := newSvc(t, m, n)
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Create(context.Background(), 1, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T00:00:00Z"), "weekend project")
	require.NoError(t, err)
	require.Equal(t, model.LendingPending, lr.Status)
	require.Equal(t, float64(150), lr.TotalCost)
	require.Equal(t, float64(100), lr.SecurityDeposit)
	require.Equal(t, int64(42), lr.LenderID)
	require.Same(t, lr, inserted)

	require.Len(t, n.emits, 1)
	require.Equal(t, int64(42), n.emits[0].userID)
	require.Equal(t, model.NotifLendingRequest, n.emits[0].typ)
}

func TestCreate_PartialDayRoundsUp(t *testing.T) {
	m := &repoMock{
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			return availableItem(42, 50, 0), nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, lr *model.LendingRequest) error { return nil },
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Create(context.Background(), 1, 7,
		date("2024-01-01T00:00:00Z"), date("2024-01-04T01:00:00Z"), "")
	require.NoError(t, err)
	require.Equal(t, float64(200), lr.TotalCost) // 3d1h -> 4 days
}

// --- accept ---

func pendingRequest() *model.LendingRequest {
	return &model.LendingRequest{
		ID: 9, ItemID: 7, BorrowerID: 1, LenderID: 42,
		StartDate: date("2024-01-01T00:00:00Z"),
		EndDate:   date("2024-01-04T00:00:00Z"),
		Status:    model.LendingPending,
	}
}

func TestAccept_Success(t *testing.T) {
	n := &notifierMock{}
	var statusSet model.LendingStatus
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
		markItemRentedFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (bool, error) {
			require.Equal(t, int64(7), itemID)
			return true, nil
		},
		updateStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error {
			statusSet = status
			return nil
		},
	}
	s, mock := newSvc(t, m, n)
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Accept(context.Background(), 42, 9)
	require.NoError(t, err)
	require.Equal(t, model.LendingAccepted, lr.Status)
	require.Equal(t, model.LendingAccepted, statusSet)
	require.Len(t, n.emits, 1)
	require.Equal(t, int64(1), n.emits[0].userID)
	require.Equal(t, model.NotifRequestAccepted, n.emits[0].typ)
}

func TestAccept_WrongActor(t *testing.T) {
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), 1, 9) // borrower, not lender
	require.Equal(t, ErrNotLender, Code(err))
}

func TestAccept_NotPending(t *testing.T) {
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			lr := pendingRequest()
			lr.Status = model.LendingCompleted
			return lr, nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), 42, 9)
	require.Equal(t, ErrBadTransition, Code(err))
}

func TestAccept_ItemAlreadyRented(t *testing.T) {
	// A second pending request against a rented item must not be
	// acceptable: the conditional item flip reports no rows.
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
		markItemRentedFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (bool, error) {
			return false, nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), 42, 9)
	require.Equal(t, ErrItemUnavailable, Code(err))
}

func TestAccept_NotFound(t *testing.T) {
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), 42, 9)
	require.Equal(t, ErrNotFound, Code(err))
}

// --- reject ---

func TestReject_Pending(t *testing.T) {
	n := &notifierMock{}
	var gotReason string
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
		updateStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error {
			require.Equal(t, model.LendingRejected, status)
			gotReason = reason
			return nil
		},
	}
	s, mock := newSvc(t, m, n)
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Reject(context.Background(), 42, 9, "out of town")
	require.NoError(t, err)
	require.Equal(t, model.LendingRejected, lr.Status)
	require.Equal(t, "out of town", gotReason)
	require.Equal(t, model.NotifRequestRejected, n.emits[0].typ)
}

func TestReject_AfterAcceptRefused(t *testing.T) {
	// Reject is pending-only; withdrawing an accepted rental is the
	// borrower's cancel, not the lender's reject.
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			lr := pendingRequest()
			lr.Status = model.LendingAccepted
			return lr, nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Reject(context.Background(), 42, 9, "changed my mind")
	require.Equal(t, ErrBadTransition, Code(err))
}

// --- cancel ---

func TestCancel_PendingByBorrower(t *testing.T) {
	freed := false
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
		updateStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error {
			return nil
		},
		freeItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) error {
			freed = true
			return nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Cancel(context.Background(), 1, 9, "found another")
	require.NoError(t, err)
	require.Equal(t, model.LendingCancelled, lr.Status)
	require.False(t, freed, "pending cancel must not touch the item")
}

func TestCancel_AcceptedFreesItem(t *testing.T) {
	freed := false
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			lr := pendingRequest()
			lr.Status = model.LendingAccepted
			return lr, nil
		},
		updateStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, status model.LendingStatus, reason string) error {
			return nil
		},
		freeItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) error {
			freed = true
			return nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := s.Cancel(context.Background(), 1, 9, "")
	require.NoError(t, err)
	require.True(t, freed)
}

func TestCancel_LenderForbidden(t *testing.T) {
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Cancel(context.Background(), 42, 9, "")
	require.Equal(t, ErrNotBorrower, Code(err))
}

// --- complete ---

func acceptedRequest() *model.LendingRequest {
	lr := pendingRequest()
	lr.Status = model.LendingAccepted
	return lr
}

func TestComplete_OnTime(t *testing.T) {
	n := &notifierMock{}
	var gotLate int64 = -1
	var gotFee float64 = -1
	freed := false
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return acceptedRequest(), nil
		},
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			return availableItem(42, 50, 100), nil
		},
		completeFn: func(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, lateDays int64, lateFee float64) error {
			gotLate, gotFee = lateDays, lateFee
			return nil
		},
		freeItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) error {
			freed = true
			return nil
		},
	}
	s, mock := newSvc(t, m, n)
	s.now = func() time.Time { return date("2024-01-03T12:00:00Z") } // before end
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Complete(context.Background(), 1, 9)
	require.NoError(t, err)
	require.Equal(t, model.LendingCompleted, lr.Status)
	require.Zero(t, gotLate)
	require.Zero(t, gotFee)
	require.True(t, freed)
	require.Equal(t, model.NotifRequestCompleted, n.emits[0].typ)
	require.Equal(t, int64(42), n.emits[0].userID, "borrower completed, lender notified")
}

func TestComplete_LateFee(t *testing.T) {
	// end 2024-01-10, returned 2024-01-13, rate 50 -> 3 late days, fee 225
	var gotLate int64
	var gotFee float64
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			lr := acceptedRequest()
			lr.EndDate = date("2024-01-10T00:00:00Z")
			return lr, nil
		},
		lockItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) (*lendingrepo.ItemSnapshot, error) {
			return availableItem(42, 50, 100), nil
		},
		completeFn: func(ctx context.Context, tx *sql.Tx, id int64, returnedAt time.Time, lateDays int64, lateFee float64) error {
			gotLate, gotFee = lateDays, lateFee
			return nil
		},
		freeItemFn: func(ctx context.Context, tx *sql.Tx, itemID int64) error { return nil },
	}
	s, mock := newSvc(t, m, &notifierMock{})
	s.now = func() time.Time { return date("2024-01-13T00:00:00Z") }
	mock.ExpectBegin()
	mock.ExpectCommit()

	lr, err := s.Complete(context.Background(), 42, 9)
	require.NoError(t, err)
	require.Equal(t, int64(3), gotLate)
	require.Equal(t, float64(225), gotFee)
	require.Equal(t, int64(3), lr.LateReturnDays)
	require.Equal(t, float64(225), lr.LateFee)
}

func TestComplete_StrangerForbidden(t *testing.T) {
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return acceptedRequest(), nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Complete(context.Background(), 99, 9)
	require.Equal(t, ErrNotParty, Code(err))
}

func TestComplete_PendingRefused(t *testing.T) {
	m := &repoMock{
		lockRequestFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
			return pendingRequest(), nil
		},
	}
	s, mock := newSvc(t, m, &notifierMock{})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Complete(context.Background(), 1, 9)
	require.Equal(t, ErrBadTransition, Code(err))
}
