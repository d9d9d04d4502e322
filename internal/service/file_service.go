package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

const (
	defaultPageSize    = 50
	maxPageSize        = 500
	searchLimit        = 100
	maxTagSuggestions  = 10
	genericContentType = "application/octet-stream"
)

type FileService struct {
	tx         ports.Transactor
	files      ports.FileRepository
	folders    ports.FolderRepository
	cache      ports.CacheRepository
	resolver   ports.LocationResolver
	quota      *QuotaService
	pipeline   *Pipeline
	metrics    *metrics.Metrics
	presignTTL time.Duration
	now        func() time.Time
}

func NewFileService(
	tx ports.Transactor,
	files ports.FileRepository,
	folders ports.FolderRepository,
	cache ports.CacheRepository,
	resolver ports.LocationResolver,
	quota *QuotaService,
	pipeline *Pipeline,
	m *metrics.Metrics,
	presignTTL time.Duration,
) *FileService {
	return &FileService{
		tx:         tx,
		files:      files,
		folders:    folders,
		cache:      cache,
		resolver:   resolver,
		quota:      quota,
		pipeline:   pipeline,
		metrics:    m,
		presignTTL: presignTTL,
		now:        stampNow,
	}
}

// Upload : проверка квоты, запись байтов и создание записи в одной транзакции владельца,
// после commit запускается конвейер (хеш, миниатюра)
func (s *FileService) Upload(ctx context.Context, req ports.UploadRequest) (*model.File, error) {
	if req.OwnerID == "" || req.Content == nil {
		return nil, fmt.Errorf("%w: не указан владелец или содержимое", model.ErrInvalidArgument)
	}
	filename := filepath.Base(strings.ReplaceAll(strings.TrimSpace(req.Filename), `\`, "/"))
	if filename == "" || filename == "." || filename == "/" {
		return nil, fmt.Errorf("%w: не указано имя файла", model.ErrInvalidArgument)
	}

	store, locationKey, err := s.resolver.Resolve(req.LocationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}

	if req.FolderID != nil {
		if _, err := s.activeFolder(ctx, req.OwnerID, *req.FolderID); err != nil {
			return nil, err
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = filename
	}
	mimeType := req.MimeType
	if mimeType == "" || mimeType == genericContentType {
		mimeType = util.ContentType(filename)
	}
	declared := req.DeclaredSize
	if declared < 0 {
		declared = 0
	}

	id := uuid.NewString()
	contentRef := fmt.Sprintf("user_%s/%s/%s", req.OwnerID, id, filename)

	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := s.files.LockOwner(ctx, exec, req.OwnerID); err != nil {
		return nil, util.LogError("[FileService] не удалось заблокировать владельца", err)
	}

	if err := s.quota.CheckAdmission(ctx, exec, req.OwnerID, declared); err != nil {
		return nil, err
	}

	written, err := store.Write(ctx, contentRef, req.Content)
	if err != nil {
		s.metrics.UploadFailed(locationKey)
		return nil, util.LogError("[FileService] не удалось записать содержимое", err)
	}
	discard := func() {
		if err := store.Delete(context.WithoutCancel(ctx), contentRef); err != nil {
			logger.Log.Warn().Err(err).Str("ref", contentRef).Msg("[FileService] не удалось удалить записанные байты")
		}
	}

	if written != declared {
		if err := s.quota.CheckAdmission(ctx, exec, req.OwnerID, written); err != nil {
			discard()
			return nil, err
		}
	}

	now := s.now()
	file := &model.File{
		ID:          id,
		Name:        name,
		OwnerID:     req.OwnerID,
		FolderID:    req.FolderID,
		ContentRef:  contentRef,
		LocationKey: locationKey,
		MimeType:    mimeType,
		SizeBytes:   written,
		Description: req.Description,
		Tags:        model.ParseTags(req.Tags),
		ShareToken:  uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.files.Create(ctx, exec, file); err != nil {
		discard()
		s.metrics.UploadFailed(locationKey)
		return nil, util.LogError("[FileService] не удалось сохранить файл в БД", err)
	}

	if err := commit(); err != nil {
		discard()
		s.metrics.UploadFailed(locationKey)
		return nil, util.LogError("[FileService] не удалось закоммитить транзакцию", err)
	}

	s.metrics.UploadSucceeded(locationKey, written)
	logger.Log.Info().Str("file", file.ID).Str("owner", file.OwnerID).Int64("size", written).Msg("[FileService] файл загружен")

	s.pipeline.Run(ctx, file)
	s.cacheFile(ctx, file)

	return file, nil
}

// GetFile : активный файл владельца, сначала из кэша
func (s *FileService) GetFile(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	cached, err := s.cache.GetFile(ctx, fileID)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("[FileService] ошибка кэширования")
	}
	if cached != nil && cached.OwnerID == ownerID && !cached.IsDeleted {
		return cached, nil
	}

	file, err := s.activeFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}
	s.cacheFile(ctx, file)
	return file, nil
}

// ListFiles : одна страница активных файлов папки (nil означает корень)
func (s *FileService) ListFiles(ctx context.Context, ownerID string, folderID *string, after *ports.FileCursor, limit int) ([]*model.File, *ports.FileCursor, error) {
	if folderID != nil {
		if _, err := s.activeFolder(ctx, ownerID, *folderID); err != nil {
			return nil, nil, err
		}
	}
	limit = clampPage(limit)

	files, err := s.files.ListByFolder(ctx, s.tx.Executor(), ownerID, folderID, after, limit)
	if err != nil {
		return nil, nil, util.LogError("[FileService] не удалось получить список файлов", err)
	}

	var next *ports.FileCursor
	if len(files) == limit {
		last := files[len(files)-1]
		next = &ports.FileCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return files, next, nil
}

// Files : ленивая последовательность по всем страницам, каждый запуск начинается заново
func (s *FileService) Files(ctx context.Context, ownerID string, folderID *string, pageSize int) iter.Seq2[*model.File, error] {
	return func(yield func(*model.File, error) bool) {
		var cursor *ports.FileCursor
		for {
			page, next, err := s.ListFiles(ctx, ownerID, folderID, cursor, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, f := range page {
				if !yield(f, nil) {
					return
				}
			}
			if next == nil {
				return
			}
			cursor = next
		}
	}
}

// Search : файлы по имени/описанию/тегам и папки по имени
func (s *FileService) Search(ctx context.Context, ownerID, query string) (*model.SearchResult, error) {
	result := &model.SearchResult{Files: []*model.File{}, Folders: []*model.Folder{}}
	query = strings.TrimSpace(query)
	if query == "" {
		return result, nil
	}

	exec := s.tx.Executor()
	files, err := s.files.Search(ctx, exec, ownerID, query, searchLimit)
	if err != nil {
		return nil, util.LogError("[FileService] ошибка поиска файлов", err)
	}
	folders, err := s.folders.SearchByName(ctx, exec, ownerID, query)
	if err != nil {
		return nil, util.LogError("[FileService] ошибка поиска папок", err)
	}

	result.Files = files
	result.Folders = folders
	return result, nil
}

// TagSuggestions : теги владельца, содержащие query, с числом файлов, не больше 10
func (s *FileService) TagSuggestions(ctx context.Context, ownerID, query string) ([]model.TagSuggestion, error) {
	raw, err := s.files.ListTagStrings(ctx, s.tx.Executor(), ownerID)
	if err != nil {
		return nil, util.LogError("[FileService] не удалось получить теги", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	counts := make(map[string]int)
	for _, line := range raw {
		for _, tag := range model.ParseTags(line) {
			if needle == "" || strings.Contains(strings.ToLower(tag), needle) {
				counts[tag]++
			}
		}
	}

	suggestions := make([]model.TagSuggestion, 0, len(counts))
	for tag, n := range counts {
		suggestions = append(suggestions, model.TagSuggestion{Tag: tag, Count: n})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Count != suggestions[j].Count {
			return suggestions[i].Count > suggestions[j].Count
		}
		return suggestions[i].Tag < suggestions[j].Tag
	})
	if len(suggestions) > maxTagSuggestions {
		suggestions = suggestions[:maxTagSuggestions]
	}
	return suggestions, nil
}

func (s *FileService) UpdateFile(ctx context.Context, ownerID, fileID string, upd ports.FileUpdate) (*model.File, error) {
	file, err := s.activeFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: имя файла не может быть пустым", model.ErrInvalidArgument)
		}
		file.Name = name
	}
	if upd.Description != nil {
		file.Description = *upd.Description
	}
	if upd.Tags != nil {
		file.Tags = model.ParseTags(*upd.Tags)
	}
	file.UpdatedAt = s.now()

	if err := s.files.Update(ctx, s.tx.Executor(), file); err != nil {
		return nil, util.LogError("[FileService] не удалось обновить файл", err)
	}
	s.invalidate(ctx, file.ID)
	return file, nil
}

// MoveFile : folderID == nil переносит в корень, папка другого владельца запрещена
func (s *FileService) MoveFile(ctx context.Context, ownerID, fileID string, folderID *string) (*model.File, error) {
	exec := s.tx.Executor()

	file, err := s.activeFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		if err := checkTargetFolder(ctx, s.folders, exec, ownerID, *folderID); err != nil {
			return nil, err
		}
	}

	if err := s.files.UpdateFolder(ctx, exec, file.ID, ownerID, folderID); err != nil {
		return nil, util.LogError("[FileService] не удалось переместить файл", err)
	}
	file.FolderID = folderID
	s.invalidate(ctx, file.ID)
	return file, nil
}

func (s *FileService) OpenContent(ctx context.Context, ownerID, fileID string) (*model.File, io.ReadCloser, error) {
	file, err := s.GetFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := openContent(ctx, s.resolver, file, file.ContentRef)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// OpenPreview : миниатюра, а если её нет или она недоступна, то оригинал
func (s *FileService) OpenPreview(ctx context.Context, ownerID, fileID string) (*model.File, io.ReadCloser, error) {
	file, err := s.GetFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.HasThumbnail() {
		rc, err := openContent(ctx, s.resolver, file, *file.ThumbnailRef)
		if err == nil {
			return file, rc, nil
		}
		logger.Log.Warn().Err(err).Str("file", file.ID).Msg("[FileService] миниатюра недоступна, отдаём оригинал")
	}
	rc, err := openContent(ctx, s.resolver, file, file.ContentRef)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// DownloadURL : pre-signed URL для S3 либо url_prefix для локального диска
func (s *FileService) DownloadURL(ctx context.Context, ownerID, fileID string) (string, error) {
	file, err := s.GetFile(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	store, _, err := s.resolver.Resolve(file.LocationKey)
	if err != nil {
		return "", util.LogError("[FileService] неизвестная локация файла", err)
	}
	return store.URL(ctx, file.ContentRef, s.presignTTL)
}

func (s *FileService) activeFile(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	file, err := s.files.GetByID(ctx, s.tx.Executor(), fileID, ownerID)
	if err != nil {
		return nil, wrapLookup("[FileService] файл не найден", err)
	}
	if file.IsDeleted {
		return nil, fmt.Errorf("[FileService] файл в корзине: %w", model.ErrNotFound)
	}
	return file, nil
}

func (s *FileService) activeFolder(ctx context.Context, ownerID, folderID string) (*model.Folder, error) {
	folder, err := s.folders.GetByID(ctx, s.tx.Executor(), folderID, ownerID)
	if err != nil {
		return nil, wrapLookup("[FileService] папка не найдена", err)
	}
	if folder.IsDeleted {
		return nil, fmt.Errorf("[FileService] папка в корзине: %w", model.ErrNotFound)
	}
	return folder, nil
}

func (s *FileService) cacheFile(ctx context.Context, file *model.File) {
	if err := s.cache.SetFile(ctx, file); err != nil {
		logger.Log.Warn().Err(err).Msg("[FileService] ошибка кэширования файла")
	}
}

func (s *FileService) invalidate(ctx context.Context, ids ...string) {
	invalidate(ctx, s.cache, ids...)
}

func invalidate(ctx context.Context, cache ports.CacheRepository, ids ...string) {
	for _, id := range ids {
		if err := cache.DeleteFile(ctx, id); err != nil {
			logger.Log.Warn().Err(err).Str("file", id).Msg("ошибка сброса кэша")
		}
	}
}

func openContent(ctx context.Context, resolver ports.LocationResolver, file *model.File, ref string) (io.ReadCloser, error) {
	store, _, err := resolver.Resolve(file.LocationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnreadableContent, err)
	}
	rc, err := store.Open(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnreadableContent, err)
	}
	return rc, nil
}

// checkTargetFolder : цель должна существовать, быть активной и принадлежать владельцу
func checkTargetFolder(ctx context.Context, folders ports.FolderRepository, exec sqlx.ExtContext, ownerID, folderID string) error {
	target, err := folders.GetByIDUnscoped(ctx, exec, folderID)
	if err != nil {
		return wrapLookup("целевая папка не найдена", err)
	}
	if target.OwnerID != ownerID {
		return fmt.Errorf("папка принадлежит другому пользователю: %w", model.ErrForbiddenTarget)
	}
	if target.IsDeleted {
		return fmt.Errorf("целевая папка в корзине: %w", model.ErrForbiddenTarget)
	}
	return nil
}

func wrapLookup(message string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", message, err)
	}
	return util.LogError(message, err)
}

func clampPage(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// stampNow : UTC с точностью timestamptz (микросекунды)
func stampNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
