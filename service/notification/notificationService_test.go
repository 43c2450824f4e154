package notificationsvc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"campuscrate/model"
	notificationsvc "campuscrate/service/notification"
)

type repoMock struct {
	insertFn      func(ctx context.Context, n *model.Notification) error
	markReadFn    func(ctx context.Context, userID, id int64) (bool, error)
	markAllReadFn func(ctx context.Context, userID int64) (int64, error)
}

func (m *repoMock) Insert(ctx context.Context, n *model.Notification) error {
	return m.insertFn(ctx, n)
}
func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	return nil, nil
}
func (m *repoMock) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	return m.markReadFn(ctx, userID, id)
}
func (m *repoMock) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return m.markAllReadFn(ctx, userID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmit_SwallowsRepoError(t *testing.T) {
	m := &repoMock{
		insertFn: func(ctx context.Context, n *model.Notification) error {
			return errors.New("db down")
		},
	}
	s := notificationsvc.New(m, discardLogger())
	// Must not panic or surface the error to the caller.
	s.Emit(context.Background(), 1, model.NotifLendingRequest, "New request", "x", 5, "/lendings/5")
}

func TestEmit_Inserts(t *testing.T) {
	var got *model.Notification
	m := &repoMock{
		insertFn: func(ctx context.Context, n *model.Notification) error {
			got = n
			return nil
		},
	}
	s := notificationsvc.New(m, discardLogger())
	s.Emit(context.Background(), 9, model.NotifRequestAccepted, "Request accepted", "body", 3, "/lendings/3")

	if got == nil {
		t.Fatal("insert not called")
	}
	if got.UserID != 9 || got.Type != model.NotifRequestAccepted || got.RelatedID != 3 {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	m := &repoMock{
		markReadFn: func(ctx context.Context, userID, id int64) (bool, error) { return false, nil },
	}
	s := notificationsvc.New(m, discardLogger())
	err := s.MarkRead(context.Background(), 1, 42)
	if notificationsvc.Code(err) != notificationsvc.ErrNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestMarkRead_OK(t *testing.T) {
	m := &repoMock{
		markReadFn: func(ctx context.Context, userID, id int64) (bool, error) { return true, nil },
	}
	s := notificationsvc.New(m, discardLogger())
	if err := s.MarkRead(context.Background(), 1, 42); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestMarkAllRead_Count(t *testing.T) {
	m := &repoMock{
		markAllReadFn: func(ctx context.Context, userID int64) (int64, error) { return 4, nil },
	}
	s := notificationsvc.New(m, discardLogger())
	n, err := s.MarkAllRead(context.Background(), 1)
	if err != nil || n != 4 {
		t.Fatalf("got (%d, %v), want (4, nil)", n, err)
	}
}
