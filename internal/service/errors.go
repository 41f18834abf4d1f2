package service

import (
	"context"
	"errors"

	"go-stockbook/pkg/apperr"

	"gorm.io/gorm"
)

// storeErr translates store failures into the apperr taxonomy. Errors
// already typed pass through unchanged; context expiry becomes
// Unavailable (retryable with backoff), everything else is wrapped as a
// store failure.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.CodeUnavailable, err, "store operation timed out, retry later")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("record not found")
	}
	return apperr.Wrap(apperr.CodeUnavailable, err, "store operation failed")
}
