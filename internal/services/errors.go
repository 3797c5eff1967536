// internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"
)

// Business-rule error kinds. Handlers map these onto HTTP codes; callers
// can test them with errors.Is through any wrapping.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrQuantityExceeded  = errors.New("maximum quantity exceeded")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("not authorized")
)

// Storage-failure kinds, safe for the caller to retry with backoff.
// Business rejections above are not.
var (
	ErrStorageTimeout     = errors.New("storage timeout")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// classifyStorageErr wraps persistence-layer failures with a retriable
// kind, leaving record-not-found for business-level handling.
func classifyStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// IsRetriable reports whether the error is a storage failure the caller
// may retry.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrStorageTimeout) || errors.Is(err, ErrStorageUnavailable)
}
