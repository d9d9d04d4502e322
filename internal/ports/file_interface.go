package ports

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/jmoiron/sqlx"

	"storage-manager/internal/model"
)

// FileCursor : позиция постраничной выборки (created_at, id последнего элемента)
type FileCursor struct {
	CreatedAt time.Time
	ID        string
}

// FileRepository : SQL слой файлов
type FileRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, file *model.File) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) (*model.File, error)
	GetByIDUnscoped(ctx context.Context, exec sqlx.ExtContext, id string) (*model.File, error)
	ListByFolder(ctx context.Context, exec sqlx.ExtContext, ownerID string, folderID *string, after *FileCursor, limit int) ([]*model.File, error)
	ListInFolders(ctx context.Context, exec sqlx.ExtContext, ownerID string, folderIDs []string) ([]*model.File, error)
	Search(ctx context.Context, exec sqlx.ExtContext, ownerID, query string, limit int) ([]*model.File, error)
	Update(ctx context.Context, exec sqlx.ExtContext, file *model.File) error
	UpdateFolder(ctx context.Context, exec sqlx.ExtContext, id, ownerID string, folderID *string) error
	UpdateHash(ctx context.Context, exec sqlx.ExtContext, id string, hash *string) error
	UpdateThumbnail(ctx context.Context, exec sqlx.ExtContext, id string, ref *string) error
	SetDeleted(ctx context.Context, exec sqlx.ExtContext, ids []string, deletedAt *time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, ids []string) error
	SumActiveSize(ctx context.Context, exec sqlx.ExtContext, ownerID string) (int64, error)
	CountActive(ctx context.Context, exec sqlx.ExtContext, ownerID string) (int, error)
	ListTrashed(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.File, error)
	ListExpiredTrash(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) ([]*model.File, error)
	// ListHashed : активные файлы с хешем, ownerID == "" означает всех владельцев
	ListHashed(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.File, error)
	ListForHashing(ctx context.Context, exec sqlx.ExtContext, force bool) ([]*model.File, error)
	ListMissingThumbnails(ctx context.Context, exec sqlx.ExtContext) ([]*model.File, error)
	ListTagStrings(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]string, error)
	// LockOwner : транзакционная блокировка на владельца, снимается при commit/rollback
	LockOwner(ctx context.Context, exec sqlx.ExtContext, ownerID string) error
}

// UploadRequest : входные данные загрузки
type UploadRequest struct {
	OwnerID      string
	FolderID     *string
	Filename     string
	Name         string
	Description  string
	Tags         string
	MimeType     string
	LocationKey  string
	DeclaredSize int64
	Content      io.Reader
}

// FileUpdate : nil-поля не меняются
type FileUpdate struct {
	Name        *string
	Description *string
	Tags        *string
}

type FileService interface {
	Upload(ctx context.Context, req UploadRequest) (*model.File, error)
	GetFile(ctx context.Context, ownerID, fileID string) (*model.File, error)
	ListFiles(ctx context.Context, ownerID string, folderID *string, after *FileCursor, limit int) ([]*model.File, *FileCursor, error)
	Files(ctx context.Context, ownerID string, folderID *string, pageSize int) iter.Seq2[*model.File, error]
	Search(ctx context.Context, ownerID, query string) (*model.SearchResult, error)
	TagSuggestions(ctx context.Context, ownerID, query string) ([]model.TagSuggestion, error)
	UpdateFile(ctx context.Context, ownerID, fileID string, upd FileUpdate) (*model.File, error)
	MoveFile(ctx context.Context, ownerID, fileID string, folderID *string) (*model.File, error)
	OpenContent(ctx context.Context, ownerID, fileID string) (*model.File, io.ReadCloser, error)
	OpenPreview(ctx context.Context, ownerID, fileID string) (*model.File, io.ReadCloser, error)
	DownloadURL(ctx context.Context, ownerID, fileID string) (string, error)
}
