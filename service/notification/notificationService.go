package notificationsvc

import (
	"context"
	"errors"
	"log/slog"

	"campuscrate/model"
	notificationrepo "campuscrate/repository/notification"
)

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo = notificationrepo.Repo

type Service interface {
	// Emit creates one notification, best-effort: failures are logged
	// and swallowed so they never fail the triggering operation.
	Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string)

	List(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type service struct {
	r   Repo
	log *slog.Logger
}

func New(r Repo, log *slog.Logger) Service { return &service{r: r, log: log} }

func (s *service) Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string) {
	n := &model.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		Link:      link,
	}
	if err := s.r.Insert(ctx, n); err != nil {
		s.log.Warn("notification emit failed",
			"user_id", userID, "type", typ, "err", err)
	}
}

func (s *service) List(ctx context.Context, userID int64) ([]model.Notification, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := s.r.MarkRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return codedError{code: ErrNotFound}
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.r.MarkAllRead(ctx, userID)
}
