package messagesvc

import (
	"context"
	"errors"

	"campuscrate/model"
	messagerepo "campuscrate/repository/message"
)

type ErrCode string

const (
	ErrRecipientNotFound ErrCode = "RECIPIENT_NOT_FOUND"
	ErrSelfMessage       ErrCode = "SELF_MESSAGE"
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

type Repo = messagerepo.Repo

type Service interface {
	Send(ctx context.Context, senderID, recipientID int64, itemID *int64, content string) (*model.Message, error)
	Conversations(ctx context.Context, userID int64) ([]model.Conversation, error)

	// Thread returns the history with a peer and marks the caller's
	// incoming messages read (the polling model's read receipt).
	Thread(ctx context.Context, userID, peerID int64) ([]model.Message, error)
}

type service struct {
	r Repo
	n Notifier
}

func New(r Repo, n Notifier) Service { return &service{r: r, n: n} }

func (s *service) Send(ctx context.Context, senderID, recipientID int64, itemID *int64, content string) (*model.Message, error) {
	if senderID == recipientID {
		return nil, makeErr(ErrSelfMessage)
	}
	ok, err := s.r.UserExists(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrRecipientNotFound)
	}

	m := &model.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		ItemID:      itemID,
		Content:     content,
	}
	if err := s.r.Insert(ctx, m); err != nil {
		return nil, err
	}

	s.n.Emit(ctx, recipientID, model.NotifMessage,
		"New message", "You have a new message", m.ID, "/messages")
	return m, nil
}

func (s *service) Conversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	return s.r.Conversations(ctx, userID)
}

func (s *service) Thread(ctx context.Context, userID, peerID int64) ([]model.Message, error) {
	msgs, err := s.r.Thread(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}
	if err := s.r.MarkThreadRead(ctx, userID, peerID); err != nil {
		return nil, err
	}
	return msgs, nil
}
