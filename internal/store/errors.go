package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity marks a stored document that no longer decodes into a
	// valid aggregate, or a row the database rejected on a constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed marks a transaction that could not begin, commit
	// or roll back. The work inside it may or may not have been applied.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// Op names a UserStore operation in errors.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpLock   Op = "lock"
	OpSave   Op = "save"
	OpDelete Op = "delete"
)

// UserError reports a failed UserStore operation. UserID is zero for
// operations over every user.
type UserError struct {
	Op     Op
	UserID uuid.UUID
	Err    error
}

func (e *UserError) Error() string {
	if e.UserID == uuid.Nil {
		return fmt.Sprintf("%s users: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// WrapUserError attaches op and id to err. Nil stays nil, and an error that
// already carries a UserError is returned unchanged so the innermost
// operation is the one reported.
func WrapUserError(op Op, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return err
	}
	return &UserError{Op: op, UserID: id, Err: err}
}
