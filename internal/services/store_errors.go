package services

import (
	"errors"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/repositories"
	"gorm.io/gorm"
)

// storeErr translates repository errors into apperrors kinds.
func storeErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, repositories.ErrPostNotFound):
		return apperrors.NotFound("%s not found", what)
	case errors.Is(err, repositories.ErrInvalidPostID):
		return apperrors.Wrap(apperrors.KindValidationFailed, err, "invalid %s id", what)
	default:
		return apperrors.Wrap(apperrors.KindInternal, err, "%s store failure", what)
	}
}
