package repository

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
)

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateError(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func notFoundError(entity string) error {
	return apperrors.NewNotFoundError(entity + " not found")
}
