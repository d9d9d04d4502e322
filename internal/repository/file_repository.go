package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storage-manager/config"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
)

const fileColumns = `id, name, owner_id, folder_id, content_ref, location_key, mime_type, size_bytes, description, tags, content_hash, thumbnail_ref, share_token, is_deleted, deleted_at, created_at, updated_at`

type FileRepository struct {
	*config.Database
}

func NewFileRepository(database *config.Database) *FileRepository {
	return &FileRepository{database}
}

// Create : сохраняем новый файл
func (r *FileRepository) Create(ctx context.Context, exec sqlx.ExtContext, file *model.File) error {
	query := `
		INSERT INTO files (id, name, owner_id, folder_id, content_ref, location_key, mime_type, size_bytes,
		                   description, tags, content_hash, thumbnail_ref, share_token, is_deleted, deleted_at,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := exec.ExecContext(ctx, query,
		file.ID,
		file.Name,
		file.OwnerID,
		file.FolderID,
		file.ContentRef,
		file.LocationKey,
		file.MimeType,
		file.SizeBytes,
		file.Description,
		file.Tags,
		file.ContentHash,
		file.ThumbnailRef,
		file.ShareToken,
		file.IsDeleted,
		file.DeletedAt,
		file.CreatedAt,
		file.UpdatedAt)

	return translateError(err)
}

// GetByID : файл владельца в любом состоянии
func (r *FileRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) (*model.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND owner_id = $2`

	var file model.File
	if err := sqlx.GetContext(ctx, exec, &file, query, id, ownerID); err != nil {
		return nil, translateError(err)
	}
	return &file, nil
}

// GetByIDUnscoped : без проверки владельца, только для публичных ссылок и обслуживания
func (r *FileRepository) GetByIDUnscoped(ctx context.Context, exec sqlx.ExtContext, id string) (*model.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	var file model.File
	if err := sqlx.GetContext(ctx, exec, &file, query, id); err != nil {
		return nil, translateError(err)
	}
	return &file, nil
}

// ListByFolder : активные файлы папки с cursor-пагинацией по (created_at, id)
func (r *FileRepository) ListByFolder(ctx context.Context, exec sqlx.ExtContext, ownerID string, folderID *string, after *ports.FileCursor, limit int) ([]*model.File, error) {
	files := []*model.File{}
	var err error

	if after == nil {
		query := `
			SELECT ` + fileColumns + ` FROM files
			WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2 AND NOT is_deleted
			ORDER BY created_at, id
			LIMIT $3
		`
		err = sqlx.SelectContext(ctx, exec, &files, query, ownerID, folderID, limit)
	} else {
		query := `
			SELECT ` + fileColumns + ` FROM files
			WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2 AND NOT is_deleted
			  AND (created_at, id) > ($3, $4::uuid)
			ORDER BY created_at, id
			LIMIT $5
		`
		err = sqlx.SelectContext(ctx, exec, &files, query, ownerID, folderID, after.CreatedAt, after.ID, limit)
	}

	return files, translateError(err)
}

// ListInFolders : файлы указанных папок в любом состоянии
func (r *FileRepository) ListInFolders(ctx context.Context, exec sqlx.ExtContext, ownerID string, folderIDs []string) ([]*model.File, error) {
	files := []*model.File{}
	if len(folderIDs) == 0 {
		return files, nil
	}
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE owner_id = $1 AND folder_id = ANY($2::uuid[])
		ORDER BY created_at, id
	`
	err := sqlx.SelectContext(ctx, exec, &files, query, ownerID, pq.Array(folderIDs))
	return files, translateError(err)
}

// Search : подстрока без учёта регистра по имени, описанию и тегам
func (r *FileRepository) Search(ctx context.Context, exec sqlx.ExtContext, ownerID, q string, limit int) ([]*model.File, error) {
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE owner_id = $1 AND NOT is_deleted
		  AND (name ILIKE $2 OR description ILIKE $2 OR tags ILIKE $2)
		ORDER BY created_at DESC, id
		LIMIT $3
	`
	files := []*model.File{}
	err := sqlx.SelectContext(ctx, exec, &files, query, ownerID, likePattern(q), limit)
	return files, translateError(err)
}

// Update : имя, описание и теги
func (r *FileRepository) Update(ctx context.Context, exec sqlx.ExtContext, file *model.File) error {
	query := `
		UPDATE files
		SET name = $3, description = $4, tags = $5, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`
	return requireAffected(exec.ExecContext(ctx, query, file.ID, file.OwnerID, file.Name, file.Description, file.Tags))
}

func (r *FileRepository) UpdateFolder(ctx context.Context, exec sqlx.ExtContext, id, ownerID string, folderID *string) error {
	query := `UPDATE files SET folder_id = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`
	return requireAffected(exec.ExecContext(ctx, query, id, ownerID, folderID))
}

func (r *FileRepository) UpdateHash(ctx context.Context, exec sqlx.ExtContext, id string, hash *string) error {
	query := `UPDATE files SET content_hash = $2 WHERE id = $1`
	return requireAffected(exec.ExecContext(ctx, query, id, hash))
}

func (r *FileRepository) UpdateThumbnail(ctx context.Context, exec sqlx.ExtContext, id string, ref *string) error {
	query := `UPDATE files SET thumbnail_ref = $2 WHERE id = $1`
	return requireAffected(exec.ExecContext(ctx, query, id, ref))
}

// SetDeleted : deletedAt == nil восстанавливает файлы
func (r *FileRepository) SetDeleted(ctx context.Context, exec sqlx.ExtContext, ids []string, deletedAt *time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE files
		SET is_deleted = $2::timestamptz IS NOT NULL, deleted_at = $2, updated_at = NOW()
		WHERE id = ANY($1::uuid[])
	`
	_, err := exec.ExecContext(ctx, query, pq.Array(ids), deletedAt)
	return translateError(err)
}

func (r *FileRepository) Delete(ctx context.Context, exec sqlx.ExtContext, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := exec.ExecContext(ctx, `DELETE FROM files WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	return translateError(err)
}

// SumActiveSize : занятое место без учёта корзины
func (r *FileRepository) SumActiveSize(ctx context.Context, exec sqlx.ExtContext, ownerID string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = $1 AND NOT is_deleted`
	err := sqlx.GetContext(ctx, exec, &total, query, ownerID)
	return total, translateError(err)
}

func (r *FileRepository) CountActive(ctx context.Context, exec sqlx.ExtContext, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM files WHERE owner_id = $1 AND NOT is_deleted`
	err := sqlx.GetContext(ctx, exec, &count, query, ownerID)
	return count, translateError(err)
}

func (r *FileRepository) ListTrashed(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.File, error) {
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE owner_id = $1 AND is_deleted
		ORDER BY deleted_at DESC, id
	`
	files := []*model.File{}
	err := sqlx.SelectContext(ctx, exec, &files, query, ownerID)
	return files, translateError(err)
}

func (r *FileRepository) ListExpiredTrash(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) ([]*model.File, error) {
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE is_deleted AND deleted_at < $1
		ORDER BY deleted_at, id
	`
	files := []*model.File{}
	err := sqlx.SelectContext(ctx, exec, &files, query, cutoff)
	return files, translateError(err)
}

func (r *FileRepository) ListHashed(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.File, error) {
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE NOT is_deleted AND content_hash IS NOT NULL AND content_hash <> ''
		  AND ($1 = '' OR owner_id::text = $1)
		ORDER BY owner_id, content_hash, created_at, id
	`
	files := []*model.File{}
	err := sqlx.SelectContext(ctx, exec, &files, query, ownerID)
	return files, translateError(err)
}

// ListForHashing : force=true отдаёт все активные файлы, иначе только без хеша
func (r *FileRepository) ListForHashing(ctx context.Context, exec sqlx.ExtContext, force bool) ([]*model.File, error) {
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE NOT is_deleted AND ($1 OR content_hash IS NULL OR content_hash = '')
		ORDER BY created_at, id
	`
	files := []*model.File{}
	err := sqlx.SelectContext(ctx, exec, &files, query, force)
	return files, translateError(err)
}

func (r *FileRepository) ListMissingThumbnails(ctx context.Context, exec sqlx.ExtContext) ([]*model.File, error) {
	query := `
		SELECT ` + fileColumns + ` FROM files
		WHERE NOT is_deleted AND (thumbnail_ref IS NULL OR thumbnail_ref = '') AND mime_type LIKE 'image/%'
		ORDER BY created_at, id
	`
	files := []*model.File{}
	err := sqlx.SelectContext(ctx, exec, &files, query)
	return files, translateError(err)
}

func (r *FileRepository) ListTagStrings(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]string, error) {
	query := `SELECT tags FROM files WHERE owner_id = $1 AND NOT is_deleted AND tags <> ''`

	tags := []string{}
	err := sqlx.SelectContext(ctx, exec, &tags, query, ownerID)
	return tags, translateError(err)
}

// LockOwner : pg_advisory_xact_lock сериализует проверку квоты и запись одного владельца
func (r *FileRepository) LockOwner(ctx context.Context, exec sqlx.ExtContext, ownerID string) error {
	_, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ownerID)
	return translateError(err)
}
