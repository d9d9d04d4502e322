package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storage-manager/config"
	"storage-manager/internal/model"
	"storage-manager/internal/util"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// Create : сохраняет локальную запись пользователя
func (r *UserRepository) Create(ctx context.Context, exec sqlx.ExtContext, user *model.User) error {
	query := `
		INSERT INTO users (id, username, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := exec.ExecContext(ctx, query, user.ID, user.Username, user.IsActive, user.CreatedAt)
	if err != nil {
		return util.LogError("[UserRepo] ошибка вставки данных в БД", translateError(err))
	}
	return nil
}

func (r *UserRepository) Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
	return exists, translateError(err)
}

// CountActive : знаменатель формулы квоты
func (r *UserRepository) CountActive(ctx context.Context, exec sqlx.ExtContext) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, exec, &count, `SELECT COUNT(*) FROM users WHERE is_active`)
	return count, translateError(err)
}
