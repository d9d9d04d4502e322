package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	imageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg"}
	videoExtensions    = []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv"}
	audioExtensions    = []string{".mp3", ".wav", ".ogg", ".flac", ".aac", ".m4a"}
	documentExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".xls", ".xlsx", ".ppt", ".pptx"}
)

type File struct {
	ID           string     `db:"id" json:"id" yaml:"id"`
	Name         string     `db:"name" json:"name" yaml:"name"`
	OwnerID      string     `db:"owner_id" json:"owner_id" yaml:"owner_id"`
	FolderID     *string    `db:"folder_id" json:"folder_id,omitempty" yaml:"folder_id,omitempty"`
	ContentRef   string     `db:"content_ref" json:"content_ref" yaml:"content_ref"`
	LocationKey  string     `db:"location_key" json:"location_key" yaml:"location_key"`
	MimeType     string     `db:"mime_type" json:"mime_type" yaml:"mime_type"`
	SizeBytes    int64      `db:"size_bytes" json:"size_bytes" yaml:"size_bytes"`
	Description  string     `db:"description" json:"description" yaml:"description"`
	Tags         Tags       `db:"tags" json:"tags" yaml:"tags"`
	ContentHash  *string    `db:"content_hash" json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	ThumbnailRef *string    `db:"thumbnail_ref" json:"thumbnail_ref,omitempty" yaml:"thumbnail_ref,omitempty"`
	ShareToken   string     `db:"share_token" json:"share_token" yaml:"share_token"`
	IsDeleted    bool       `db:"is_deleted" json:"is_deleted" yaml:"is_deleted"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

func (f *File) State() LifecycleState {
	return stateOf(f.IsDeleted)
}

// Extension : расширение в нижнем регистре вместе с точкой
func (f *File) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

func (f *File) IsImage() bool    { return hasExtension(f.Extension(), imageExtensions) }
func (f *File) IsVideo() bool    { return hasExtension(f.Extension(), videoExtensions) }
func (f *File) IsAudio() bool    { return hasExtension(f.Extension(), audioExtensions) }
func (f *File) IsDocument() bool { return hasExtension(f.Extension(), documentExtensions) }

// Kind : укрупнённый тип файла для интерфейса
func (f *File) Kind() string {
	switch {
	case f.IsImage():
		return "image"
	case f.IsVideo():
		return "video"
	case f.IsAudio():
		return "audio"
	case f.IsDocument():
		return "document"
	default:
		return "other"
	}
}

func (f *File) HumanSize() string {
	return HumanSize(f.SizeBytes)
}

func (f *File) HasHash() bool {
	return f.ContentHash != nil && *f.ContentHash != ""
}

func (f *File) HasThumbnail() bool {
	return f.ThumbnailRef != nil && *f.ThumbnailRef != ""
}

// PreviewRef : миниатюра, если она есть, иначе сам файл
func (f *File) PreviewRef() string {
	if f.HasThumbnail() {
		return *f.ThumbnailRef
	}
	return f.ContentRef
}

func (f *File) DaysUntilPurge(now time.Time, retention time.Duration) int {
	return daysUntilPurge(f.DeletedAt, now, retention)
}

func (f *File) TrashedWith(stamp time.Time) bool {
	return f.IsDeleted && f.DeletedAt != nil && f.DeletedAt.Equal(stamp)
}

// HumanSize : 1536 -> "1.5 KB"
func HumanSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}

func hasExtension(ext string, list []string) bool {
	for _, v := range list {
		if v == ext {
			return true
		}
	}
	return false
}
