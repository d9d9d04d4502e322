package ports

import (
	"context"

	"storage-manager/internal/model"
)

type LifecycleService interface {
	TrashFile(ctx context.Context, ownerID, fileID string) error
	RestoreFile(ctx context.Context, ownerID, fileID string) (*model.File, error)
	PurgeFile(ctx context.Context, ownerID, fileID string) error
	TrashFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error)
	RestoreFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error)
	PurgeFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error)
	ListTrash(ctx context.Context, ownerID string) (*model.TrashListing, error)
	EmptyTrash(ctx context.Context, ownerID string) (*model.BatchReport, error)
	RestoreFiles(ctx context.Context, ownerID string, fileIDs []string) (*model.BatchReport, error)
	PurgeFiles(ctx context.Context, ownerID string, fileIDs []string) (*model.BatchReport, error)
}

type MaintenanceService interface {
	FindDuplicates(ctx context.Context, ownerID string) (*model.DuplicateReport, error)
	DeleteDuplicate(ctx context.Context, ownerID, fileID string) error
}
