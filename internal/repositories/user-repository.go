package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shift-scheduler/internal/entities"
	apperrors "shift-scheduler/pkg/errors"
)

const userSelectFields = `id::text, login, fio, password, role_id::text, has_all_departments, is_active, created_at, updated_at`

type UserRepositoryInterface interface {
	FindUser(ctx context.Context, id string) (*entities.User, error)
	FindUserByLogin(ctx context.Context, login string) (*entities.User, error)
	SetHasAllDepartments(ctx context.Context, id string, value bool) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row rowScanner) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.ID, &u.Login, &u.Fio, &u.Password, &u.RoleID, &u.HasAllDepartments, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindUser(ctx context.Context, id string) (*entities.User, error) {
	user, err := scanUser(conn(ctx, r.storage).QueryRow(ctx, `SELECT `+userSelectFields+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapPgError(err, "FindUser")
	}
	return user, nil
}

func (r *UserRepository) FindUserByLogin(ctx context.Context, login string) (*entities.User, error) {
	user, err := scanUser(conn(ctx, r.storage).QueryRow(ctx, `SELECT `+userSelectFields+` FROM users WHERE lower(login) = lower($1)`, login))
	if err != nil {
		return nil, mapPgError(err, "FindUserByLogin")
	}
	return user, nil
}

func (r *UserRepository) SetHasAllDepartments(ctx context.Context, id string, value bool) error {
	result, err := conn(ctx, r.storage).Exec(ctx,
		`UPDATE users SET has_all_departments = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, value, id)
	if err != nil {
		return mapPgError(err, "SetHasAllDepartments")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
