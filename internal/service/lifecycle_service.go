package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

// LifecycleService : переходы ACTIVE -> TRASHED -> PURGED и обратно в ACTIVE.
// Каскад по дереву выполняется в одной транзакции, байты удаляются после commit.
type LifecycleService struct {
	tx        ports.Transactor
	files     ports.FileRepository
	folders   ports.FolderRepository
	cache     ports.CacheRepository
	resolver  ports.LocationResolver
	metrics   *metrics.Metrics
	retention time.Duration
	now       func() time.Time
}

func NewLifecycleService(
	tx ports.Transactor,
	files ports.FileRepository,
	folders ports.FolderRepository,
	cache ports.CacheRepository,
	resolver ports.LocationResolver,
	m *metrics.Metrics,
	retention time.Duration,
) *LifecycleService {
	return &LifecycleService{
		tx:        tx,
		files:     files,
		folders:   folders,
		cache:     cache,
		resolver:  resolver,
		metrics:   m,
		retention: retention,
		now:       stampNow,
	}
}

func (s *LifecycleService) Retention() time.Duration {
	return s.retention
}

// TrashFile : одиночный файл в корзину
func (s *LifecycleService) TrashFile(ctx context.Context, ownerID, fileID string) error {
	exec := s.tx.Executor()
	file, err := s.files.GetByID(ctx, exec, fileID, ownerID)
	if err != nil {
		return wrapLookup("[LifecycleService] файл не найден", err)
	}
	if file.IsDeleted {
		return fmt.Errorf("%w: файл уже в корзине", model.ErrInvalidArgument)
	}

	stamp := s.now()
	if err := s.files.SetDeleted(ctx, exec, []string{file.ID}, &stamp); err != nil {
		return util.LogError("[LifecycleService] не удалось переместить файл в корзину", err)
	}
	s.invalidate(ctx, file.ID)
	logger.Log.Info().Str("file", file.ID).Msg("[LifecycleService] файл перемещён в корзину")
	return nil
}

// RestoreFile : если папка файла удалена или в корзине, файл возвращается в корень
func (s *LifecycleService) RestoreFile(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось начать транзакцию", err)
	}
	defer rollback()

	file, err := s.files.GetByID(ctx, exec, fileID, ownerID)
	if err != nil {
		return nil, wrapLookup("[LifecycleService] файл не найден", err)
	}
	if !file.IsDeleted {
		return nil, fmt.Errorf("%w: файл не в корзине", model.ErrInvalidArgument)
	}

	if file.FolderID != nil && !s.folderIsActive(ctx, exec, ownerID, *file.FolderID) {
		if err := s.files.UpdateFolder(ctx, exec, file.ID, ownerID, nil); err != nil {
			return nil, util.LogError("[LifecycleService] не удалось перенести файл в корень", err)
		}
		file.FolderID = nil
	}

	if err := s.files.SetDeleted(ctx, exec, []string{file.ID}, nil); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось восстановить файл", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось закоммитить транзакцию", err)
	}

	file.IsDeleted = false
	file.DeletedAt = nil
	s.invalidate(ctx, file.ID)
	return file, nil
}

// PurgeFile : только из корзины; запись удаляется в транзакции, байты и миниатюра после неё
func (s *LifecycleService) PurgeFile(ctx context.Context, ownerID, fileID string) error {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return util.LogError("[LifecycleService] не удалось начать транзакцию", err)
	}
	defer rollback()

	file, err := s.files.GetByID(ctx, exec, fileID, ownerID)
	if err != nil {
		return wrapLookup("[LifecycleService] файл не найден", err)
	}
	if !file.IsDeleted {
		return fmt.Errorf("%w: окончательно удалить можно только файл из корзины", model.ErrInvalidArgument)
	}

	if err := s.files.Delete(ctx, exec, []string{file.ID}); err != nil {
		return util.LogError("[LifecycleService] не удалось удалить запись файла", err)
	}
	if err := commit(); err != nil {
		return util.LogError("[LifecycleService] не удалось закоммитить транзакцию", err)
	}

	s.removeContent(ctx, []*model.File{file})
	s.metrics.Purged("file", 1)
	return nil
}

// TrashFolder : одна метка deleted_at на папку, активных потомков и их файлы
func (s *LifecycleService) TrashFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error) {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось начать транзакцию", err)
	}
	defer rollback()

	root, err := s.folders.GetByID(ctx, exec, folderID, ownerID)
	if err != nil {
		return nil, wrapLookup("[LifecycleService] папка не найдена", err)
	}
	if root.IsDeleted {
		return nil, fmt.Errorf("%w: папка уже в корзине", model.ErrInvalidArgument)
	}

	subtree, err := s.collectSubtree(ctx, exec, root, func(f *model.Folder) bool { return !f.IsDeleted })
	if err != nil {
		return nil, err
	}
	files, err := s.filesIn(ctx, exec, ownerID, subtree, func(f *model.File) bool { return !f.IsDeleted })
	if err != nil {
		return nil, err
	}

	stamp := s.now()
	if err := s.folders.SetDeleted(ctx, exec, folderIDs(subtree), &stamp); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось пометить папки", err)
	}
	if err := s.files.SetDeleted(ctx, exec, fileIDs(files), &stamp); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось пометить файлы", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось закоммитить транзакцию", err)
	}

	s.invalidate(ctx, fileIDs(files)...)
	logger.Log.Info().Str("folder", root.ID).Int("folders", len(subtree)).Int("files", len(files)).
		Msg("[LifecycleService] папка перемещена в корзину")
	return &model.CascadeResult{Folders: len(subtree), Files: len(files)}, nil
}

// RestoreFolder : восстанавливает то, что попало в корзину вместе с папкой (та же метка).
// Элементы, удалённые раньше отдельно, остаются в корзине.
func (s *LifecycleService) RestoreFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error) {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось начать транзакцию", err)
	}
	defer rollback()

	root, err := s.folders.GetByID(ctx, exec, folderID, ownerID)
	if err != nil {
		return nil, wrapLookup("[LifecycleService] папка не найдена", err)
	}
	if !root.IsDeleted || root.DeletedAt == nil {
		return nil, fmt.Errorf("%w: папка не в корзине", model.ErrInvalidArgument)
	}
	stamp := *root.DeletedAt

	parentID := root.ParentID
	if parentID != nil && !s.folderIsActive(ctx, exec, ownerID, *parentID) {
		parentID = nil
	}
	exists, err := s.folders.ExistsActiveSibling(ctx, exec, ownerID, parentID, root.Name, root.ID)
	if err != nil {
		return nil, util.LogError("[LifecycleService] ошибка проверки имени", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", model.ErrDuplicateSiblingName, root.Name)
	}
	if parentID != root.ParentID {
		if err := s.folders.UpdateParent(ctx, exec, root.ID, ownerID, nil); err != nil {
			return nil, util.LogError("[LifecycleService] не удалось перенести папку в корень", err)
		}
		root.ParentID = nil
	}

	subtree, err := s.collectSubtree(ctx, exec, root, func(f *model.Folder) bool { return f.TrashedWith(stamp) })
	if err != nil {
		return nil, err
	}
	files, err := s.filesIn(ctx, exec, ownerID, subtree, func(f *model.File) bool { return f.TrashedWith(stamp) })
	if err != nil {
		return nil, err
	}

	if err := s.folders.SetDeleted(ctx, exec, folderIDs(subtree), nil); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось восстановить папки", err)
	}
	if err := s.files.SetDeleted(ctx, exec, fileIDs(files), nil); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось восстановить файлы", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось закоммитить транзакцию", err)
	}

	s.invalidate(ctx, fileIDs(files)...)
	return &model.CascadeResult{Folders: len(subtree), Files: len(files)}, nil
}

// PurgeFolder : только из корзины; файлы, затем папки от детей к родителям, затем байты
func (s *LifecycleService) PurgeFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error) {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось начать транзакцию", err)
	}
	defer rollback()

	root, err := s.folders.GetByID(ctx, exec, folderID, ownerID)
	if err != nil {
		return nil, wrapLookup("[LifecycleService] папка не найдена", err)
	}
	if !root.IsDeleted {
		return nil, fmt.Errorf("%w: окончательно удалить можно только папку из корзины", model.ErrInvalidArgument)
	}

	subtree, err := s.collectSubtree(ctx, exec, root, func(*model.Folder) bool { return true })
	if err != nil {
		return nil, err
	}
	files, err := s.filesIn(ctx, exec, ownerID, subtree, func(*model.File) bool { return true })
	if err != nil {
		return nil, err
	}

	if err := s.files.Delete(ctx, exec, fileIDs(files)); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось удалить записи файлов", err)
	}
	// subtree в прямом обходе: родитель всегда раньше потомков
	ids := folderIDs(subtree)
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	if err := s.folders.Delete(ctx, exec, ids); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось удалить записи папок", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[LifecycleService] не удалось закоммитить транзакцию", err)
	}

	s.removeContent(ctx, files)
	s.metrics.Purged("file", len(files))
	s.metrics.Purged("folder", len(subtree))
	logger.Log.Info().Str("folder", root.ID).Int("folders", len(subtree)).Int("files", len(files)).
		Msg("[LifecycleService] папка удалена окончательно")
	return &model.CascadeResult{Folders: len(subtree), Files: len(files)}, nil
}

// ListTrash : содержимое корзины, новые сверху
func (s *LifecycleService) ListTrash(ctx context.Context, ownerID string) (*model.TrashListing, error) {
	exec := s.tx.Executor()
	files, err := s.files.ListTrashed(ctx, exec, ownerID)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось получить файлы корзины", err)
	}
	folders, err := s.folders.ListTrashed(ctx, exec, ownerID)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось получить папки корзины", err)
	}
	return &model.TrashListing{Files: files, Folders: folders}, nil
}

// EmptyTrash : окончательно удаляет всё из корзины владельца, ошибка одного элемента не прерывает очистку
func (s *LifecycleService) EmptyTrash(ctx context.Context, ownerID string) (*model.BatchReport, error) {
	report := &model.BatchReport{Task: "empty-trash"}

	listing, err := s.ListTrash(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	trashed := make(map[string]struct{}, len(listing.Folders))
	for _, f := range listing.Folders {
		trashed[f.ID] = struct{}{}
	}
	for _, f := range listing.Folders {
		if f.ParentID != nil {
			if _, nested := trashed[*f.ParentID]; nested {
				continue
			}
		}
		if _, err := s.PurgeFolder(ctx, ownerID, f.ID); err != nil {
			report.Fail(f.ID, err)
			continue
		}
		report.Succeeded++
	}

	// файлы в удалённых папках уже ушли вместе с ними
	files, err := s.files.ListTrashed(ctx, s.tx.Executor(), ownerID)
	if err != nil {
		return report, util.LogError("[LifecycleService] не удалось получить файлы корзины", err)
	}
	for _, f := range files {
		if err := s.PurgeFile(ctx, ownerID, f.ID); err != nil {
			report.Fail(f.ID, err)
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

func (s *LifecycleService) RestoreFiles(ctx context.Context, ownerID string, ids []string) (*model.BatchReport, error) {
	report := &model.BatchReport{Task: "restore-files"}
	for _, id := range ids {
		if _, err := s.RestoreFile(ctx, ownerID, id); err != nil {
			report.Fail(id, err)
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

func (s *LifecycleService) PurgeFiles(ctx context.Context, ownerID string, ids []string) (*model.BatchReport, error) {
	report := &model.BatchReport{Task: "purge-files"}
	for _, id := range ids {
		if err := s.PurgeFile(ctx, ownerID, id); err != nil {
			report.Fail(id, err)
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

// SweepExpired : окончательно удаляет всё, что лежит в корзине дольше retention.
// В режиме dryRun только считает количество и объём.
func (s *LifecycleService) SweepExpired(ctx context.Context, retention time.Duration, dryRun bool) (*model.RetentionReport, error) {
	if retention <= 0 {
		retention = s.retention
	}
	cutoff := s.now().Add(-retention)
	report := &model.RetentionReport{Cutoff: cutoff, DryRun: dryRun}
	exec := s.tx.Executor()

	folders, err := s.folders.ListExpiredTrash(ctx, exec, cutoff)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось получить просроченные папки", err)
	}
	files, err := s.files.ListExpiredTrash(ctx, exec, cutoff)
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось получить просроченные файлы", err)
	}

	if err := s.countExpired(ctx, exec, folders, files, report); err != nil {
		return nil, err
	}
	if dryRun {
		return report, nil
	}

	for _, f := range folders {
		result, err := s.PurgeFolder(ctx, f.OwnerID, f.ID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			logger.Log.Warn().Err(err).Str("folder", f.ID).Msg("[LifecycleService] не удалось очистить папку")
			report.Failures = append(report.Failures, model.ItemFailure{ID: f.ID, Error: err.Error()})
			continue
		}
		report.PurgedFolders += result.Folders
		report.PurgedFiles += result.Files
	}

	// часть файлов уже удалена вместе с папками
	remaining, err := s.files.ListExpiredTrash(ctx, exec, cutoff)
	if err != nil {
		return report, util.LogError("[LifecycleService] не удалось получить просроченные файлы", err)
	}
	for _, f := range remaining {
		if err := s.PurgeFile(ctx, f.OwnerID, f.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			logger.Log.Warn().Err(err).Str("file", f.ID).Msg("[LifecycleService] не удалось очистить файл")
			report.Failures = append(report.Failures, model.ItemFailure{ID: f.ID, Error: err.Error()})
			continue
		}
		report.PurgedFiles++
	}

	logger.Log.Info().Int("files", report.PurgedFiles).Int("folders", report.PurgedFolders).
		Int("failed", len(report.Failures)).Msg("[LifecycleService] корзина очищена по сроку хранения")
	return report, nil
}

// countExpired : то же, что удалит очистка: поддеревья просроченных папок целиком и оставшиеся файлы
func (s *LifecycleService) countExpired(ctx context.Context, exec sqlx.ExtContext, roots []*model.Folder, loose []*model.File, report *model.RetentionReport) error {
	seen := make(map[string]bool)
	count := func(f *model.File) {
		if seen[f.ID] {
			return
		}
		seen[f.ID] = true
		report.FileCount++
		report.TotalBytes += f.SizeBytes
	}

	for _, root := range roots {
		subtree, err := s.collectSubtree(ctx, exec, root, func(*model.Folder) bool { return true })
		if err != nil {
			return err
		}
		inside, err := s.filesIn(ctx, exec, root.OwnerID, subtree, func(*model.File) bool { return true })
		if err != nil {
			return err
		}
		report.FolderCount += len(subtree)
		for _, f := range inside {
			count(f)
		}
	}
	for _, f := range loose {
		count(f)
	}
	return nil
}

// collectSubtree : обход в глубину явным стеком, корень первым; descend решает, заходить ли в папку
func (s *LifecycleService) collectSubtree(ctx context.Context, exec sqlx.ExtContext, root *model.Folder, descend func(*model.Folder) bool) ([]*model.Folder, error) {
	result := []*model.Folder{root}
	stack := []*model.Folder{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.folders.ListChildren(ctx, exec, root.OwnerID, &current.ID, true)
		if err != nil {
			return nil, util.LogError("[LifecycleService] не удалось получить подпапки", err)
		}
		for _, child := range children {
			if !descend(child) {
				continue
			}
			result = append(result, child)
			stack = append(stack, child)
		}
	}
	return result, nil
}

func (s *LifecycleService) filesIn(ctx context.Context, exec sqlx.ExtContext, ownerID string, folders []*model.Folder, keep func(*model.File) bool) ([]*model.File, error) {
	all, err := s.files.ListInFolders(ctx, exec, ownerID, folderIDs(folders))
	if err != nil {
		return nil, util.LogError("[LifecycleService] не удалось получить файлы папок", err)
	}
	files := make([]*model.File, 0, len(all))
	for _, f := range all {
		if keep(f) {
			files = append(files, f)
		}
	}
	return files, nil
}

func (s *LifecycleService) folderIsActive(ctx context.Context, exec sqlx.ExtContext, ownerID, folderID string) bool {
	folder, err := s.folders.GetByID(ctx, exec, folderID, ownerID)
	return err == nil && !folder.IsDeleted
}

// removeContent : удаление байтов и миниатюр, ошибки только логируются
func (s *LifecycleService) removeContent(ctx context.Context, files []*model.File) {
	for _, f := range files {
		store, _, err := s.resolver.Resolve(f.LocationKey)
		if err != nil {
			logger.Log.Warn().Err(err).Str("file", f.ID).Msg("[LifecycleService] неизвестная локация файла")
			continue
		}
		if err := store.Delete(ctx, f.ContentRef); err != nil {
			logger.Log.Warn().Err(err).Str("file", f.ID).Str("ref", f.ContentRef).Msg("[LifecycleService] не удалось удалить содержимое")
		}
		if f.HasThumbnail() {
			if err := store.Delete(ctx, *f.ThumbnailRef); err != nil {
				logger.Log.Warn().Err(err).Str("file", f.ID).Msg("[LifecycleService] не удалось удалить миниатюру")
			}
		}
		s.invalidate(ctx, f.ID)
	}
}

func (s *LifecycleService) invalidate(ctx context.Context, ids ...string) {
	invalidate(ctx, s.cache, ids...)
}

func folderIDs(folders []*model.Folder) []string {
	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	return ids
}

func fileIDs(files []*model.File) []string {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids
}
