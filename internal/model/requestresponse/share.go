package requestresponse

import (
	"time"

	"storage-manager/internal/model"
)

// IssueLinkRequest : параметры публичной ссылки, оба ограничения необязательны
type IssueLinkRequest struct {
	ExpiresAt    *time.Time `json:"expires_at,omitempty" example:"2025-09-01T00:00:00Z"`
	MaxDownloads *int       `json:"max_downloads,omitempty" validate:"omitempty,min=1" example:"5"`
}

// SetLinkActiveRequest : включение/отключение ссылки
type SetLinkActiveRequest struct {
	Active bool `json:"active" example:"false"`
}

// LinkResponse : описывает публичную ссылку
type LinkResponse struct {
	ID                 string `json:"id" example:"5f8a3c2e-9d1b-4c6a-8e7f-0a1b2c3d4e5f"`
	FileID             string `json:"file_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Token              string `json:"token" example:"3d2c1b0a-9f8e-4d7c-6b5a-493827160504"`
	URL                string `json:"url" example:"/s/3d2c1b0a-9f8e-4d7c-6b5a-493827160504"`
	CreatedAt          string `json:"created" example:"2025-08-23T12:34:56Z"`
	ExpiresAt          string `json:"expires_at,omitempty" example:"2025-09-01T00:00:00Z"`
	DownloadCount      int    `json:"download_count" example:"1"`
	MaxDownloads       *int   `json:"max_downloads,omitempty" example:"5"`
	RemainingDownloads int    `json:"remaining_downloads" example:"4"`
	IsActive           bool   `json:"active" example:"true"`
	Status             string `json:"status" enums:"active,expired,exhausted,inactive" example:"active"`
	Reason             string `json:"reason,omitempty" example:"достигнут лимит скачиваний"`
}

// LinkResponseFromModel : владелец видит конкретную причину недоступности ссылки
func LinkResponseFromModel(link *model.SharedLink, now time.Time) LinkResponse {
	resp := LinkResponse{
		ID:                 link.ID,
		FileID:             link.FileID,
		Token:              link.Token,
		URL:                "/s/" + link.Token,
		CreatedAt:          link.CreatedAt.Format(time.RFC3339),
		DownloadCount:      link.DownloadCount,
		MaxDownloads:       link.MaxDownloads,
		RemainingDownloads: link.RemainingDownloads(),
		IsActive:           link.IsActive,
		Status:             link.Status(now),
	}
	if reason := link.DownloadBlocker(now); reason != nil {
		resp.Reason = reason.Error()
	}
	if link.ExpiresAt != nil {
		resp.ExpiresAt = link.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}

// GetLinkResponse : одна ссылка
type GetLinkResponse struct {
	Data LinkResponse `json:"data"`
}

// ListLinksResponse : ссылки владельца
type ListLinksResponse struct {
	Data struct {
		Links []LinkResponse `json:"links"`
	} `json:"data"`
}
