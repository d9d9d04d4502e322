package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"storage-manager/config"
	"storage-manager/internal/model"
)

const linkColumns = `id, file_id, token, created_by, created_at, expires_at, download_count, max_downloads, is_active`

type SharedLinkRepository struct {
	*config.Database
}

func NewSharedLinkRepository(database *config.Database) *SharedLinkRepository {
	return &SharedLinkRepository{database}
}

// Create : уникальность токена обеспечивает индекс, коллизия даёт ErrIntegrityViolation
func (r *SharedLinkRepository) Create(ctx context.Context, exec sqlx.ExtContext, link *model.SharedLink) error {
	query := `
		INSERT INTO shared_links (id, file_id, token, created_by, created_at, expires_at, download_count, max_downloads, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := exec.ExecContext(ctx, query,
		link.ID,
		link.FileID,
		link.Token,
		link.CreatedBy,
		link.CreatedAt,
		link.ExpiresAt,
		link.DownloadCount,
		link.MaxDownloads,
		link.IsActive)

	return translateError(err)
}

func (r *SharedLinkRepository) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.SharedLink, error) {
	query := `SELECT ` + linkColumns + ` FROM shared_links WHERE token = $1`

	var link model.SharedLink
	if err := sqlx.GetContext(ctx, exec, &link, query, token); err != nil {
		return nil, translateError(err)
	}
	return &link, nil
}

func (r *SharedLinkRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) (*model.SharedLink, error) {
	query := `SELECT ` + linkColumns + ` FROM shared_links WHERE id = $1 AND created_by = $2`

	var link model.SharedLink
	if err := sqlx.GetContext(ctx, exec, &link, query, id, ownerID); err != nil {
		return nil, translateError(err)
	}
	return &link, nil
}

func (r *SharedLinkRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.SharedLink, error) {
	query := `SELECT ` + linkColumns + ` FROM shared_links WHERE created_by = $1 ORDER BY created_at DESC, id`

	links := []*model.SharedLink{}
	err := sqlx.SelectContext(ctx, exec, &links, query, ownerID)
	return links, translateError(err)
}

// Consume : одно атомарное UPDATE, гонка двух скачиваний при лимите 1 даёт ровно один успех.
// Ссылка отключается, когда счётчик достигает max_downloads.
func (r *SharedLinkRepository) Consume(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.SharedLink, bool, error) {
	query := `
		UPDATE shared_links
		SET download_count = download_count + 1,
		    is_active = CASE
		        WHEN max_downloads IS NOT NULL AND download_count + 1 >= max_downloads THEN FALSE
		        ELSE is_active
		    END
		WHERE token = $1
		  AND is_active
		  AND (expires_at IS NULL OR expires_at >= $2)
		  AND (max_downloads IS NULL OR download_count < max_downloads)
		RETURNING ` + linkColumns

	var link model.SharedLink
	err := sqlx.GetContext(ctx, exec, &link, query, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translateError(err)
	}
	return &link, true, nil
}

func (r *SharedLinkRepository) SetActive(ctx context.Context, exec sqlx.ExtContext, id, ownerID string, active bool) error {
	query := `UPDATE shared_links SET is_active = $3 WHERE id = $1 AND created_by = $2`
	return requireAffected(exec.ExecContext(ctx, query, id, ownerID, active))
}

func (r *SharedLinkRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) error {
	query := `DELETE FROM shared_links WHERE id = $1 AND created_by = $2`
	return requireAffected(exec.ExecContext(ctx, query, id, ownerID))
}
