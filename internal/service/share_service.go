package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

const tokenAttempts = 3

// ShareService : публичные ссылки на скачивание файлов
type ShareService struct {
	tx       ports.Transactor
	links    ports.SharedLinkRepository
	files    ports.FileRepository
	resolver ports.LocationResolver
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewShareService(
	tx ports.Transactor,
	links ports.SharedLinkRepository,
	files ports.FileRepository,
	resolver ports.LocationResolver,
	m *metrics.Metrics,
) *ShareService {
	return &ShareService{
		tx:       tx,
		links:    links,
		files:    files,
		resolver: resolver,
		metrics:  m,
		now:      stampNow,
	}
}

// Issue : ссылка на активный файл владельца, токен - случайный UUIDv4
func (s *ShareService) Issue(ctx context.Context, req ports.IssueRequest) (*model.SharedLink, error) {
	now := s.now()
	if req.MaxDownloads != nil && *req.MaxDownloads < 1 {
		return nil, fmt.Errorf("%w: max_downloads должен быть не меньше 1", model.ErrInvalidArgument)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expires_at должен быть в будущем", model.ErrInvalidArgument)
	}

	exec := s.tx.Executor()
	file, err := s.files.GetByID(ctx, exec, req.FileID, req.OwnerID)
	if err != nil {
		return nil, wrapLookup("[ShareService] файл не найден", err)
	}
	if file.IsDeleted {
		return nil, fmt.Errorf("[ShareService] файл в корзине: %w", model.ErrNotFound)
	}

	link := &model.SharedLink{
		ID:           uuid.NewString(),
		FileID:       file.ID,
		CreatedBy:    req.OwnerID,
		CreatedAt:    now,
		ExpiresAt:    req.ExpiresAt,
		MaxDownloads: req.MaxDownloads,
		IsActive:     true,
	}
	// при совпадении токена генерируем новый
	for attempt := 1; ; attempt++ {
		link.Token = uuid.NewString()
		err = s.links.Create(ctx, exec, link)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrIntegrityViolation) || attempt == tokenAttempts {
			return nil, util.LogError("[ShareService] не удалось создать ссылку", err)
		}
	}

	logger.Log.Info().Str("file", file.ID).Str("link", link.ID).Msg("[ShareService] ссылка создана")
	return link, nil
}

// Resolve : некорректный токен неотличим от несуществующего
func (s *ShareService) Resolve(ctx context.Context, token string) (*model.SharedLink, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("[ShareService] некорректный токен: %w", model.ErrNotFound)
	}
	link, err := s.links.GetByToken(ctx, s.tx.Executor(), token)
	if err != nil {
		return nil, wrapLookup("[ShareService] ссылка не найдена", err)
	}
	return link, nil
}

// Consume : засчитывает одно скачивание, при отказе возвращает конкретную причину
func (s *ShareService) Consume(ctx context.Context, token string) (*model.SharedLink, *model.File, error) {
	_, file, err := s.linkedFile(ctx, token)
	if err != nil {
		s.metrics.ShareDownload("not_found")
		return nil, nil, err
	}
	consumed, err := s.consume(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	return consumed, file, nil
}

// Check : то же решение, что и у Consume, но без списания скачивания
func (s *ShareService) Check(ctx context.Context, token string) (*model.SharedLink, error) {
	link, _, err := s.linkedFile(ctx, token)
	if err != nil {
		return nil, err
	}
	if reason := link.DownloadBlocker(s.now()); reason != nil {
		return nil, reason
	}
	return link, nil
}

// OpenShared : содержимое открывается до списания, неудачная попытка счётчик не меняет
func (s *ShareService) OpenShared(ctx context.Context, token string) (*model.File, io.ReadCloser, error) {
	link, file, err := s.linkedFile(ctx, token)
	if err != nil {
		s.metrics.ShareDownload("not_found")
		return nil, nil, err
	}
	if reason := link.DownloadBlocker(s.now()); reason != nil {
		s.metrics.ShareDownload(outcome(reason))
		return nil, nil, reason
	}

	rc, err := openContent(ctx, s.resolver, file, file.ContentRef)
	if err != nil {
		return nil, nil, util.LogError("[ShareService] не удалось открыть содержимое", err)
	}
	if _, err := s.consume(ctx, token); err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	return file, rc, nil
}

// linkedFile : ссылка и её файл, файл в корзине считается отсутствующим
func (s *ShareService) linkedFile(ctx context.Context, token string) (*model.SharedLink, *model.File, error) {
	link, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	file, err := s.files.GetByIDUnscoped(ctx, s.tx.Executor(), link.FileID)
	if err != nil {
		return nil, nil, wrapLookup("[ShareService] файл ссылки не найден", err)
	}
	if file.IsDeleted {
		return nil, nil, fmt.Errorf("[ShareService] файл ссылки в корзине: %w", model.ErrNotFound)
	}
	return link, file, nil
}

func (s *ShareService) consume(ctx context.Context, token string) (*model.SharedLink, error) {
	now := s.now()
	consumed, ok, err := s.links.Consume(ctx, s.tx.Executor(), token, now)
	if err != nil {
		return nil, util.LogError("[ShareService] не удалось засчитать скачивание", err)
	}
	if !ok {
		reason := s.refusal(ctx, token, now)
		s.metrics.ShareDownload(outcome(reason))
		return nil, reason
	}
	s.metrics.ShareDownload("ok")
	return consumed, nil
}

func (s *ShareService) ListLinks(ctx context.Context, ownerID string) ([]*model.SharedLink, error) {
	links, err := s.links.ListByOwner(ctx, s.tx.Executor(), ownerID)
	if err != nil {
		return nil, util.LogError("[ShareService] не удалось получить ссылки", err)
	}
	return links, nil
}

func (s *ShareService) SetActive(ctx context.Context, ownerID, linkID string, active bool) (*model.SharedLink, error) {
	exec := s.tx.Executor()
	if err := s.links.SetActive(ctx, exec, linkID, ownerID, active); err != nil {
		return nil, wrapLookup("[ShareService] ссылка не найдена", err)
	}
	link, err := s.links.GetByID(ctx, exec, linkID, ownerID)
	if err != nil {
		return nil, wrapLookup("[ShareService] ссылка не найдена", err)
	}
	return link, nil
}

func (s *ShareService) DeleteLink(ctx context.Context, ownerID, linkID string) error {
	if err := s.links.Delete(ctx, s.tx.Executor(), linkID, ownerID); err != nil {
		return wrapLookup("[ShareService] ссылка не найдена", err)
	}
	return nil
}

// refusal : причина отказа по свежему состоянию ссылки
func (s *ShareService) refusal(ctx context.Context, token string, now time.Time) error {
	link, err := s.links.GetByToken(ctx, s.tx.Executor(), token)
	if err != nil {
		return wrapLookup("[ShareService] ссылка не найдена", err)
	}
	if reason := link.DownloadBlocker(now); reason != nil {
		return reason
	}
	// ссылка исчерпана параллельным скачиванием между UPDATE и чтением
	return model.ErrLinkExhausted
}

func outcome(err error) string {
	switch {
	case errors.Is(err, model.ErrLinkInactive):
		return "inactive"
	case errors.Is(err, model.ErrLinkExpired):
		return "expired"
	case errors.Is(err, model.ErrLinkExhausted):
		return "exhausted"
	default:
		return "not_found"
	}
}
