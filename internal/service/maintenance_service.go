package service

import (
	"context"
	"errors"
	"time"

	"storage-manager/internal/hasher"
	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

const (
	TaskRecomputeHashes      = "recompute-hashes"
	TaskRegenerateThumbnails = "regenerate-thumbnails"
	TaskPurgeTrash           = "purge-trash"
	TaskFindDuplicates       = "find-duplicates"
)

// MaintenanceService : пакетные задачи обслуживания, ошибка одного элемента не прерывает пакет
type MaintenanceService struct {
	tx         ports.Transactor
	files      ports.FileRepository
	lifecycle  *LifecycleService
	hashes     Step
	thumbnails Step
	metrics    *metrics.Metrics
}

func NewMaintenanceService(
	tx ports.Transactor,
	files ports.FileRepository,
	lifecycle *LifecycleService,
	hashes Step,
	thumbnails Step,
	m *metrics.Metrics,
) *MaintenanceService {
	return &MaintenanceService{
		tx:         tx,
		files:      files,
		lifecycle:  lifecycle,
		hashes:     hashes,
		thumbnails: thumbnails,
		metrics:    m,
	}
}

// RecomputeHashes : force=false обрабатывает только файлы без хеша
func (s *MaintenanceService) RecomputeHashes(ctx context.Context, force bool) (*model.BatchReport, error) {
	files, err := s.files.ListForHashing(ctx, s.tx.Executor(), force)
	if err != nil {
		return nil, util.LogError("[MaintenanceService] не удалось получить файлы для хеширования", err)
	}
	return s.runBatch(ctx, TaskRecomputeHashes, s.hashes, files), nil
}

// RegenerateThumbnails : force=true перестраивает превью всех активных файлов
func (s *MaintenanceService) RegenerateThumbnails(ctx context.Context, force bool) (*model.BatchReport, error) {
	var (
		files []*model.File
		err   error
	)
	if force {
		files, err = s.files.ListForHashing(ctx, s.tx.Executor(), true)
	} else {
		files, err = s.files.ListMissingThumbnails(ctx, s.tx.Executor())
	}
	if err != nil {
		return nil, util.LogError("[MaintenanceService] не удалось получить файлы для превью", err)
	}
	return s.runBatch(ctx, TaskRegenerateThumbnails, s.thumbnails, files), nil
}

// PurgeTrash : days <= 0 означает срок хранения из конфигурации
func (s *MaintenanceService) PurgeTrash(ctx context.Context, days int, dryRun bool) (*model.RetentionReport, error) {
	var retention time.Duration
	if days > 0 {
		retention = time.Duration(days) * 24 * time.Hour
	}
	report, err := s.lifecycle.SweepExpired(ctx, retention, dryRun)
	if err != nil {
		return nil, err
	}
	if !dryRun {
		for range report.PurgedFiles + report.PurgedFolders {
			s.metrics.MaintenanceItem(TaskPurgeTrash, "ok")
		}
		for range report.Failures {
			s.metrics.MaintenanceItem(TaskPurgeTrash, "failed")
		}
	}
	return report, nil
}

// FindDuplicates : ownerID == "" ищет по всем владельцам
func (s *MaintenanceService) FindDuplicates(ctx context.Context, ownerID string) (*model.DuplicateReport, error) {
	files, err := s.files.ListHashed(ctx, s.tx.Executor(), ownerID)
	if err != nil {
		return nil, util.LogError("[MaintenanceService] не удалось получить хешированные файлы", err)
	}
	report := hasher.GroupDuplicates(files)
	logger.Log.Info().Int("groups", len(report.Groups)).Int64("wasted", report.TotalWasted).
		Msg("[MaintenanceService] поиск дубликатов завершён")
	return report, nil
}

// DeleteDuplicate : дубликат отправляется в корзину, а не удаляется сразу
func (s *MaintenanceService) DeleteDuplicate(ctx context.Context, ownerID, fileID string) error {
	return s.lifecycle.TrashFile(ctx, ownerID, fileID)
}

func (s *MaintenanceService) runBatch(ctx context.Context, task string, step Step, files []*model.File) *model.BatchReport {
	report := &model.BatchReport{Task: task}
	for _, file := range files {
		if ctx.Err() != nil {
			report.Fail(file.ID, ctx.Err())
			s.metrics.MaintenanceItem(task, "failed")
			continue
		}

		err := step.Run(ctx, file)
		switch {
		case errors.Is(err, ErrStepSkipped):
			report.Skipped++
			s.metrics.MaintenanceItem(task, "skipped")
		case err != nil:
			logger.Log.Warn().Err(err).Str("task", task).Str("file", file.ID).Msg("[MaintenanceService] ошибка обработки файла")
			report.Fail(file.ID, err)
			s.metrics.MaintenanceItem(task, "failed")
		default:
			report.Succeeded++
			s.metrics.MaintenanceItem(task, "ok")
		}
	}

	logger.Log.Info().Str("task", task).Int("ok", report.Succeeded).Int("skipped", report.Skipped).
		Int("failed", report.Failed).Msg("[MaintenanceService] задача завершена")
	return report
}
