package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storage-manager/config"
	"storage-manager/internal/model"
)

type ProfileRepository struct {
	*config.Database
}

func NewProfileRepository(database *config.Database) *ProfileRepository {
	return &ProfileRepository{database}
}

func (r *ProfileRepository) Create(ctx context.Context, exec sqlx.ExtContext, profile *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, avatar_ref, bio, phone, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := exec.ExecContext(ctx, query,
		profile.UserID,
		profile.AvatarRef,
		profile.Bio,
		profile.Phone,
		profile.Location,
		profile.CreatedAt,
		profile.UpdatedAt)

	return translateError(err)
}

func (r *ProfileRepository) Get(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.UserProfile, error) {
	query := `
		SELECT user_id, avatar_ref, bio, phone, location, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`
	var profile model.UserProfile
	if err := sqlx.GetContext(ctx, exec, &profile, query, userID); err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, exec sqlx.ExtContext, profile *model.UserProfile) error {
	query := `
		UPDATE user_profiles
		SET avatar_ref = $2, bio = $3, phone = $4, location = $5, updated_at = $6
		WHERE user_id = $1
	`
	return requireAffected(exec.ExecContext(ctx, query,
		profile.UserID,
		profile.AvatarRef,
		profile.Bio,
		profile.Phone,
		profile.Location,
		profile.UpdatedAt))
}
