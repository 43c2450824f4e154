package adminsvc

import (
	"context"
	"database/sql"
	"errors"

	"campuscrate/model"
	itemrepo "campuscrate/repository/item"
	userrepo "campuscrate/repository/user"
)

type ErrCode string

const (
	ErrUserNotFound ErrCode = "USER_NOT_FOUND"
	ErrItemNotFound ErrCode = "ITEM_NOT_FOUND"
	ErrBadRole      ErrCode = "BAD_ROLE"
	ErrSelfDemotion ErrCode = "SELF_DEMOTION"
	ErrLastAdmin    ErrCode = "LAST_ADMIN"
	ErrBadState     ErrCode = "BAD_STATE"
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

type UserRepo = userrepo.Repo

type Service interface {
	ListUsers(ctx context.Context) ([]model.User, error)

	// ChangeRole enforces the governance guards, in order: an admin
	// cannot demote themselves, and the pool of admins can never be
	// demoted to zero. The last-admin check is not check-then-act; the
	// repository folds the count into the demotion UPDATE itself.
	ChangeRole(ctx context.Context, actingAdminID, targetID int64, newRole model.Role) (*model.User, error)

	// ModerateItem force-sets an item's availability/active flag.
	ModerateItem(ctx context.Context, itemID int64, availability model.ItemAvailability, active bool) error
}

type service struct {
	ur UserRepo
	ir itemrepo.Repo
}

func New(ur UserRepo, ir itemrepo.Repo) Service { return &service{ur: ur, ir: ir} }

func (s *service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.ur.List(ctx)
}

func (s *service) ChangeRole(ctx context.Context, actingAdminID, targetID int64, newRole model.Role) (*model.User, error) {
	if newRole != model.RoleUser && newRole != model.RoleAdmin {
		return nil, makeErr(ErrBadRole)
	}

	target, err := s.ur.ByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}

	if target.Role == newRole {
		return target, nil
	}

	if newRole == model.RoleAdmin {
		if _, err := s.ur.Promote(ctx, targetID); err != nil {
			return nil, err
		}
		target.Role = model.RoleAdmin
		return target, nil
	}

	// Demotion path.
	if actingAdminID == targetID {
		return nil, makeErr(ErrSelfDemotion)
	}
	ok, err := s.ur.Demote(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The conditional UPDATE refused: either the target stopped
		// being an admin concurrently or they are the last one left.
		return nil, makeErr(ErrLastAdmin)
	}
	target.Role = model.RoleUser
	return target, nil
}

func (s *service) ModerateItem(ctx context.Context, itemID int64, availability model.ItemAvailability, active bool) error {
	switch availability {
	case model.ItemMaintenance, model.ItemUnavailable, model.ItemAvailable:
	default:
		return makeErr(ErrBadState)
	}
	ok, err := s.ir.Moderate(ctx, itemID, availability, active)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrItemNotFound)
	}
	return nil
}
