package ports

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"storage-manager/internal/model"
)

// FolderRepository : SQL слой папок, все выборки ограничены владельцем
type FolderRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) (*model.Folder, error)
	// GetByIDUnscoped : нужен, чтобы отличить чужую папку от несуществующей
	GetByIDUnscoped(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Folder, error)
	ExistsActiveSibling(ctx context.Context, exec sqlx.ExtContext, ownerID string, parentID *string, name, excludeID string) (bool, error)
	ListChildren(ctx context.Context, exec sqlx.ExtContext, ownerID string, parentID *string, includeDeleted bool) ([]*model.Folder, error)
	ListAll(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.Folder, error)
	SearchByName(ctx context.Context, exec sqlx.ExtContext, ownerID, query string) ([]*model.Folder, error)
	Rename(ctx context.Context, exec sqlx.ExtContext, id, ownerID, name string) error
	UpdateParent(ctx context.Context, exec sqlx.ExtContext, id, ownerID string, parentID *string) error
	SetDeleted(ctx context.Context, exec sqlx.ExtContext, ids []string, deletedAt *time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, ids []string) error
	ListTrashed(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.Folder, error)
	// ListExpiredTrash : просроченные папки, чей родитель не просрочен вместе с ними
	ListExpiredTrash(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) ([]*model.Folder, error)
}

type FolderService interface {
	CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error)
	GetFolder(ctx context.Context, ownerID, folderID string) (*model.Folder, error)
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*model.Folder, error)
	ListAll(ctx context.Context, ownerID string) ([]*model.Folder, error)
	RenameFolder(ctx context.Context, ownerID, folderID, name string) (*model.Folder, error)
	MoveFolder(ctx context.Context, ownerID, folderID string, parentID *string) (*model.Folder, error)
	FolderPath(ctx context.Context, ownerID, folderID string) (string, error)
}
