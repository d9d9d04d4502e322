package ports

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"

	"storage-manager/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, user *model.User) error
	Exists(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	CountActive(ctx context.Context, exec sqlx.ExtContext) (int, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, profile *model.UserProfile) error
	Get(ctx context.Context, exec sqlx.ExtContext, userID string) (*model.UserProfile, error)
	Update(ctx context.Context, exec sqlx.ExtContext, profile *model.UserProfile) error
}

type ProfileService interface {
	RegisterUser(ctx context.Context, user *model.User) (*model.UserProfile, error)
	EnsureUser(ctx context.Context, userID, username string) error
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error)
	UpdateAvatar(ctx context.Context, userID, filename string, content io.Reader) (*model.UserProfile, error)
	OpenAvatar(ctx context.Context, userID string) (contentType string, rc io.ReadCloser, err error)
}

type QuotaService interface {
	Stats(ctx context.Context, userID string) (*model.UsageStats, error)
}
