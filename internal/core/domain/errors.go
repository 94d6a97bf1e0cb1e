package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("no copies available")
	ErrDuplicateLoan      = errors.New("active loan already exists for this book")
	ErrInvalidState       = errors.New("operation not valid in current loan state")
	ErrForbidden          = errors.New("access forbidden")
	ErrInventory          = errors.New("copy count out of bounds")
	ErrConflict           = errors.New("conflict")
	ErrLastAdmin          = errors.New("cannot remove the last administrator")
	ErrStorage            = errors.New("storage unavailable")
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// StorageError marks err as an infrastructure failure while keeping the
// driver error reachable through errors.Is/As.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
