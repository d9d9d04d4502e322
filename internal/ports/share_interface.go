package ports

import (
	"context"
	"io"
	"time"

	"github.com/jmoiron/sqlx"

	"storage-manager/internal/model"
)

type SharedLinkRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, link *model.SharedLink) error
	GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.SharedLink, error)
	GetByID(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) (*model.SharedLink, error)
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.SharedLink, error)
	// Consume : атомарно засчитывает скачивание; consumed=false, если ссылка недоступна
	Consume(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (link *model.SharedLink, consumed bool, err error)
	SetActive(ctx context.Context, exec sqlx.ExtContext, id, ownerID string, active bool) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) error
}

// IssueRequest : параметры новой ссылки
type IssueRequest struct {
	OwnerID      string
	FileID       string
	ExpiresAt    *time.Time
	MaxDownloads *int
}

type ShareService interface {
	Issue(ctx context.Context, req IssueRequest) (*model.SharedLink, error)
	Resolve(ctx context.Context, token string) (*model.SharedLink, error)
	Consume(ctx context.Context, token string) (*model.SharedLink, *model.File, error)
	Check(ctx context.Context, token string) (*model.SharedLink, error)
	OpenShared(ctx context.Context, token string) (*model.File, io.ReadCloser, error)
	ListLinks(ctx context.Context, ownerID string) ([]*model.SharedLink, error)
	SetActive(ctx context.Context, ownerID, linkID string, active bool) (*model.SharedLink, error)
	DeleteLink(ctx context.Context, ownerID, linkID string) error
}
