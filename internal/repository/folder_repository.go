package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storage-manager/config"
	"storage-manager/internal/model"
)

const folderColumns = `id, name, owner_id, parent_id, is_deleted, deleted_at, created_at, updated_at`

type FolderRepository struct {
	*config.Database
}

func NewFolderRepository(database *config.Database) *FolderRepository {
	return &FolderRepository{database}
}

// Create : сохраняет новую папку, уникальность имени среди соседей держит частичный индекс
func (r *FolderRepository) Create(ctx context.Context, exec sqlx.ExtContext, folder *model.Folder) error {
	query := `
		INSERT INTO folders (id, name, owner_id, parent_id, is_deleted, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := exec.ExecContext(ctx, query,
		folder.ID,
		folder.Name,
		folder.OwnerID,
		folder.ParentID,
		folder.IsDeleted,
		folder.DeletedAt,
		folder.CreatedAt,
		folder.UpdatedAt)

	return translateError(err)
}

// GetByID : папка владельца в любом состоянии
func (r *FolderRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id, ownerID string) (*model.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 AND owner_id = $2`

	var folder model.Folder
	if err := sqlx.GetContext(ctx, exec, &folder, query, id, ownerID); err != nil {
		return nil, translateError(err)
	}
	return &folder, nil
}

func (r *FolderRepository) GetByIDUnscoped(ctx context.Context, exec sqlx.ExtContext, id string) (*model.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`

	var folder model.Folder
	if err := sqlx.GetContext(ctx, exec, &folder, query, id); err != nil {
		return nil, translateError(err)
	}
	return &folder, nil
}

func (r *FolderRepository) ExistsActiveSibling(ctx context.Context, exec sqlx.ExtContext, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM folders
			WHERE owner_id = $1
			  AND parent_id IS NOT DISTINCT FROM $2
			  AND name = $3
			  AND NOT is_deleted
			  AND ($4 = '' OR id::text <> $4)
		)
	`
	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, query, ownerID, parentID, name, excludeID)
	return exists, translateError(err)
}

// ListChildren : прямые потомки; parentID == nil означает корень
func (r *FolderRepository) ListChildren(ctx context.Context, exec sqlx.ExtContext, ownerID string, parentID *string, includeDeleted bool) ([]*model.Folder, error) {
	query := `
		SELECT ` + folderColumns + ` FROM folders
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND ($3 OR NOT is_deleted)
		ORDER BY name, id
	`
	folders := []*model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, query, ownerID, parentID, includeDeleted)
	return folders, translateError(err)
}

func (r *FolderRepository) ListAll(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 AND NOT is_deleted ORDER BY name, id`

	folders := []*model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, query, ownerID)
	return folders, translateError(err)
}

func (r *FolderRepository) SearchByName(ctx context.Context, exec sqlx.ExtContext, ownerID, q string) ([]*model.Folder, error) {
	query := `
		SELECT ` + folderColumns + ` FROM folders
		WHERE owner_id = $1 AND NOT is_deleted AND name ILIKE $2
		ORDER BY name, id
	`
	folders := []*model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, query, ownerID, likePattern(q))
	return folders, translateError(err)
}

func (r *FolderRepository) Rename(ctx context.Context, exec sqlx.ExtContext, id, ownerID, name string) error {
	query := `UPDATE folders SET name = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`
	return requireAffected(exec.ExecContext(ctx, query, id, ownerID, name))
}

func (r *FolderRepository) UpdateParent(ctx context.Context, exec sqlx.ExtContext, id, ownerID string, parentID *string) error {
	query := `UPDATE folders SET parent_id = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`
	return requireAffected(exec.ExecContext(ctx, query, id, ownerID, parentID))
}

// SetDeleted : deletedAt == nil восстанавливает папки, иначе помещает в корзину одной меткой
func (r *FolderRepository) SetDeleted(ctx context.Context, exec sqlx.ExtContext, ids []string, deletedAt *time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE folders
		SET is_deleted = $2::timestamptz IS NOT NULL, deleted_at = $2, updated_at = NOW()
		WHERE id = ANY($1::uuid[])
	`
	_, err := exec.ExecContext(ctx, query, pq.Array(ids), deletedAt)
	return translateError(err)
}

// Delete : окончательное удаление записей, порядок (дети раньше родителей) задаёт вызывающий
func (r *FolderRepository) Delete(ctx context.Context, exec sqlx.ExtContext, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := exec.ExecContext(ctx, `DELETE FROM folders WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	return translateError(err)
}

func (r *FolderRepository) ListTrashed(ctx context.Context, exec sqlx.ExtContext, ownerID string) ([]*model.Folder, error) {
	query := `
		SELECT ` + folderColumns + ` FROM folders
		WHERE owner_id = $1 AND is_deleted
		ORDER BY deleted_at DESC, id
	`
	folders := []*model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, query, ownerID)
	return folders, translateError(err)
}

func (r *FolderRepository) ListExpiredTrash(ctx context.Context, exec sqlx.ExtContext, cutoff time.Time) ([]*model.Folder, error) {
	query := `
		SELECT ` + prefixed("f", folderColumns) + ` FROM folders AS f
		WHERE f.is_deleted AND f.deleted_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM folders AS p
			WHERE p.id = f.parent_id AND p.is_deleted AND p.deleted_at < $1
		  )
		ORDER BY f.deleted_at, f.id
	`
	folders := []*model.Folder{}
	err := sqlx.SelectContext(ctx, exec, &folders, query, cutoff)
	return folders, translateError(err)
}
