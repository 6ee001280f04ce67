package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced entity does not exist or is tombstoned.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or missing input, rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates concurrent modification was detected; caller may retry.
	ErrConflict = errors.New("concurrent modification detected")
)

// InsufficientStockError reports a requested quantity exceeding available stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// AsInsufficientStock unwraps err into an InsufficientStockError when possible.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ValidationError wraps ErrValidation with detail.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError wraps ErrNotFound with entity context.
func NotFoundError(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

// UserSafeMessage maps domain errors to messages safe to surface to callers.
// Storage internals are never leaked.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrConflict):
		return "the record was modified concurrently, please retry"
	default:
		if stockErr, ok := AsInsufficientStock(err); ok {
			return stockErr.Error()
		}
		return "an unexpected error occurred"
	}
}
