// Package apperr defines the single tagged error type the service returns
// for expected failures. Business outcomes (insufficient stock, missing
// product) travel as values of this type, never as panics or bare strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnavailable     Kind = "unavailable" // transient, safe to retry
	KindInternal        Kind = "internal"
)

// Error carries a stable kind plus structured context for the HTTP layer.
// ProductID/Available/Requested are set only for stock-related failures.
type Error struct {
	Kind      Kind
	Message   string
	ProductID int64
	Available int
	Requested int
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ProductNotFound blames a product that does not exist in the ledger.
func ProductNotFound(productID int64) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   fmt.Sprintf("product with ID %d not found", productID),
		ProductID: productID,
	}
}

// InsufficientStock blames the first item that cannot be covered.
func InsufficientStock(productID int64, name string, available, requested int) *Error {
	return &Error{
		Kind:      KindConflict,
		Message:   fmt.Sprintf("insufficient stock for product %q: available %d, requested %d", name, available, requested),
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

// KindOf extracts the kind from any error. Unknown errors map to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the failure is a transient store conflict that
// the same input may be retried against.
func IsRetryable(err error) bool {
	return KindOf(err) == KindUnavailable
}
