package services

import (
	"errors"

	"github.com/shafin-dev/localhub/backend/internal/apperrors"
	"github.com/shafin-dev/localhub/backend/internal/repositories"
	"gorm.io/gorm"
)

// mapStoreError normalizes repository errors into the shared taxonomy.
// Errors already carrying a taxonomy sentinel pass through; anything
// else is an I/O failure and surfaces as StorageUnavailable.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrDepthExceeded),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAction),
		errors.Is(err, apperrors.ErrConcurrencyConflict),
		errors.Is(err, apperrors.ErrForbidden):
		return err
	case errors.Is(err, repositories.ErrPostNotFound):
		return apperrors.NotFoundf("post")
	case errors.Is(err, repositories.ErrCommentNotFound):
		return apperrors.NotFoundf("comment")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFoundf("record")
	default:
		return apperrors.Storage(err)
	}
}
