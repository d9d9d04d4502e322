package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"storage-manager/internal/model"
)

// FilesystemStore : локальный каталог, ref: относительный путь внутри basePath
type FilesystemStore struct {
	basePath  string
	urlPrefix string
}

func NewFilesystemStore(basePath, urlPrefix string) (*FilesystemStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("[FilesystemStore] не указан путь")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("[FilesystemStore] ошибка создания каталога %s: %w", basePath, err)
	}
	return &FilesystemStore{basePath: basePath, urlPrefix: urlPrefix}, nil
}

func (s *FilesystemStore) path(ref string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(ref, `\`, "/"))
	if clean == "/" {
		return "", fmt.Errorf("%w: пустая ссылка на содержимое", model.ErrInvalidArgument)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Write : каталоги создаются по требованию, повторная запись перезаписывает файл
func (s *FilesystemStore) Write(ctx context.Context, ref string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	full, err := s.path(ref)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("[FilesystemStore] ошибка создания каталога: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("[FilesystemStore] ошибка создания файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("[FilesystemStore] ошибка записи %s: %w", ref, err)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return 0, fmt.Errorf("[FilesystemStore] ошибка сохранения %s: %w", ref, err)
	}
	return written, nil
}

func (s *FilesystemStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.path(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("содержимое %s: %w", ref, model.ErrContentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[FilesystemStore] ошибка открытия %s: %w", ref, err)
	}
	return file, nil
}

func (s *FilesystemStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.path(ref)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("содержимое %s: %w", ref, model.ErrContentNotFound)
	}
	return err
}

func (s *FilesystemStore) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := s.path(ref)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// URL : публичный адрес через url_prefix, срок жизни не применяется
func (s *FilesystemStore) URL(_ context.Context, ref string, _ time.Duration) (string, error) {
	if s.urlPrefix == "" {
		return "", fmt.Errorf("[FilesystemStore] url_prefix не настроен")
	}
	parts := strings.Split(strings.TrimPrefix(path.Clean("/"+ref), "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimSuffix(s.urlPrefix, "/") + "/" + strings.Join(parts, "/"), nil
}
