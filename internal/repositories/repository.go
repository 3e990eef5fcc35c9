package repositories

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "shift-scheduler/pkg/errors"
)

// psql - построитель запросов с плейсхолдерами PostgreSQL ($1, $2...)
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError переводит ошибки PostgreSQL в ошибки приложения.
func mapPgError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: связанная запись не найдена (%s): %w", op, pgErr.ConstraintName, apperrors.ErrNotFound)
		case pgCheckViolation:
			return fmt.Errorf("%s: нарушено ограничение %s: %w", op, pgErr.ConstraintName, apperrors.ErrBadRequest)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
