package model

import "time"

const (
	LinkActive    = "active"
	LinkExpired   = "expired"
	LinkExhausted = "exhausted"
	LinkInactive  = "inactive"
)

type SharedLink struct {
	ID            string     `db:"id" json:"id" yaml:"id"`
	FileID        string     `db:"file_id" json:"file_id" yaml:"file_id"`
	Token         string     `db:"token" json:"token" yaml:"token"`
	CreatedBy     string     `db:"created_by" json:"created_by" yaml:"created_by"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at" yaml:"created_at"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	DownloadCount int        `db:"download_count" json:"download_count" yaml:"download_count"`
	MaxDownloads  *int       `db:"max_downloads" json:"max_downloads,omitempty" yaml:"max_downloads,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active" yaml:"is_active"`
}

// IsExpired : в сам момент expires_at ссылка ещё действует
func (l *SharedLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

func (l *SharedLink) IsExhausted() bool {
	return l.MaxDownloads != nil && l.DownloadCount >= *l.MaxDownloads
}

// DownloadBlocker : причина, по которой скачивание запрещено, либо nil
func (l *SharedLink) DownloadBlocker(now time.Time) error {
	// исчерпанная ссылка отключается автоматически, поэтому лимит проверяется первым
	switch {
	case l.IsExhausted():
		return ErrLinkExhausted
	case !l.IsActive:
		return ErrLinkInactive
	case l.IsExpired(now):
		return ErrLinkExpired
	}
	return nil
}

// Status : состояние ссылки для владельца
func (l *SharedLink) Status(now time.Time) string {
	switch l.DownloadBlocker(now) {
	case ErrLinkExhausted:
		return LinkExhausted
	case ErrLinkInactive:
		return LinkInactive
	case ErrLinkExpired:
		return LinkExpired
	}
	return LinkActive
}

func (l *SharedLink) CanDownload(now time.Time) bool {
	return l.DownloadBlocker(now) == nil
}

// RemainingDownloads : -1 означает отсутствие лимита
func (l *SharedLink) RemainingDownloads() int {
	if l.MaxDownloads == nil {
		return -1
	}
	if rest := *l.MaxDownloads - l.DownloadCount; rest > 0 {
		return rest
	}
	return 0
}
