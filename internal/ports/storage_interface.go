package ports

import (
	"context"
	"io"
	"time"
)

// ContentStore : физическое хранилище байтов одной локации
type ContentStore interface {
	Write(ctx context.Context, ref string, r io.Reader) (int64, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
	Exists(ctx context.Context, ref string) (bool, error)
	URL(ctx context.Context, ref string, ttl time.Duration) (string, error)
}

// LocationResolver : логический ключ локации -> хранилище
type LocationResolver interface {
	Resolve(key string) (store ContentStore, resolvedKey string, err error)
	DefaultKey() string
}

// ThumbnailGenerator : строит JPEG-превью изображения
type ThumbnailGenerator interface {
	Supports(mimeType string) bool
	Generate(r io.Reader, w io.Writer) error
	Ref(fileID string) string
}
