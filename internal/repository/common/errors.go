package common

import (
	"errors"

	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, означающие конфликт с параллельной транзакцией.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqCheckViolation       = "23514"
)

// MapError переводит ошибки драйвера в ошибки приложения.
// Уже типизированные AppError возвращаются как есть.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected, pqUniqueViolation, pqForeignKeyViolation, pqCheckViolation:
			return apperror.Wrap(err, apperror.ErrCodeConflict, apperror.ErrConcurrentChange.Message)
		}
	}

	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка базы данных")
}
