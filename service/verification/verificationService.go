package verificationsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campuscrate/model"
	verificationrepo "campuscrate/repository/verification"
)

type ErrCode string

const (
	ErrNotFound        ErrCode = "REQUEST_NOT_FOUND"
	ErrUserNotFound    ErrCode = "USER_NOT_FOUND"
	ErrAlreadyVerified ErrCode = "ALREADY_VERIFIED"
	ErrBadStatus       ErrCode = "BAD_STATUS"
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

// notification previews cap the quoted admin message
const previewLen = 140

type Notifier interface {
	Emit(ctx context.Context, userID int64, typ model.NotificationType, title, message string, relatedID int64, link string)
}

type Repo = verificationrepo.Repo

type Service interface {
	// Submit is an idempotent upsert: resubmitting before review
	// resets the single existing request instead of adding another.
	Submit(ctx context.Context, userID int64, message string) (*model.VerificationRequest, error)

	// Review records an admin decision; approval also flips the
	// user's verified flag, once.
	Review(ctx context.Context, adminID, requestID int64, status model.VerificationStatus, note string) (*model.VerificationRequest, error)

	// PostMessage appends to the request's append-only admin thread.
	PostMessage(ctx context.Context, adminID, requestID int64, content string) (*model.AdminMessage, error)

	Mine(ctx context.Context, userID int64) (*model.VerificationRequest, error)
	List(ctx context.Context) ([]model.VerificationRequest, error)
	Messages(ctx context.Context, requestID int64) ([]model.AdminMessage, error)
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

func (s *service) Submit(ctx context.Context, userID int64, message string) (*model.VerificationRequest, error) {
	verified, err := s.r.UserVerified(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}
	if verified {
		return nil, makeErr(ErrAlreadyVerified)
	}
	return s.r.Upsert(ctx, userID, message)
}

func (s *service) Review(ctx context.Context, adminID, requestID int64, status model.VerificationStatus, note string) (vr *model.VerificationRequest, err error) {
	if !model.ValidVerificationStatus(status) {
		return nil, makeErr(ErrBadStatus)
	}

	vr, err = s.r.ByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
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

	at := s.now()
	if err = s.r.SetReview(ctx, tx, requestID, status, note, adminID, at); err != nil {
		return nil, err
	}
	if status == model.VerificationApproved {
		if err = s.r.MarkUserVerified(ctx, tx, vr.UserID); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	vr.Status = status
	vr.AdminNote = note
	vr.ReviewedBy = &adminID
	vr.ReviewedAt = &at

	s.n.Emit(ctx, vr.UserID, model.NotifVerification,
		"Verification reviewed",
		fmt.Sprintf("Your verification request was %s", status),
		vr.ID, "/verification")
	return vr, nil
}

func (s *service) PostMessage(ctx context.Context, adminID, requestID int64, content string) (*model.AdminMessage, error) {
	vr, err := s.r.ByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	msg := &model.AdminMessage{
		VerificationRequestID: requestID,
		SenderID:              adminID,
		Content:               content,
	}
	if err := s.r.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	preview := content
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	s.n.Emit(ctx, vr.UserID, model.NotifVerificationMessage,
		"Message from admin", preview, vr.ID, "/verification")
	return msg, nil
}

func (s *service) Mine(ctx context.Context, userID int64) (*model.VerificationRequest, error) {
	vr, err := s.r.ByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return vr, nil
}

func (s *service) List(ctx context.Context) ([]model.VerificationRequest, error) {
	return s.r.List(ctx)
}

func (s *service) Messages(ctx context.Context, requestID int64) ([]model.AdminMessage, error) {
	return s.r.ListMessages(ctx, requestID)
}
