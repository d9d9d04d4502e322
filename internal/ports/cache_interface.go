package ports

import (
	"context"

	"storage-manager/internal/model"
)

// CacheRepository : Redis слой, промах кэша возвращает (nil, nil)
type CacheRepository interface {
	SetFile(ctx context.Context, file *model.File) error
	GetFile(ctx context.Context, id string) (*model.File, error)
	DeleteFile(ctx context.Context, id string) error
}
