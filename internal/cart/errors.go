package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned when a mutation is attempted
	// without a resolved user identity.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrEmptyCart is returned when checkout is attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// StoreError wraps any failure reported by the authoritative store. Op names
// the store operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err; it returns nil when err is nil so callers can
// wrap unconditionally.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
