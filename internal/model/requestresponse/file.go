package requestresponse

import (
	"time"

	"storage-manager/internal/model"
)

// FileResponse : описывает файл для JSON-ответа
type FileResponse struct {
	ID             string   `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Name           string   `json:"name" example:"report.pdf"`
	FolderID       *string  `json:"folder_id,omitempty" example:"0b1f2e3d-1111-2222-3333-444455556666"`
	MimeType       string   `json:"mime" example:"application/pdf"`
	Kind           string   `json:"kind" example:"document"`
	Size           int64    `json:"size" example:"10240"`
	HumanSize      string   `json:"human_size" example:"10.0 KB"`
	Description    string   `json:"description" example:"квартальный отчёт"`
	Tags           []string `json:"tags" example:"work,report"`
	ContentHash    string   `json:"sha256,omitempty" example:"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"`
	HasThumbnail   bool     `json:"has_thumbnail" example:"false"`
	Location       string   `json:"location" example:"disk1"`
	CreatedAt      string   `json:"created" example:"2025-08-23T12:34:56Z"`
	UpdatedAt      string   `json:"updated" example:"2025-08-23T12:34:56Z"`
	DeletedAt      string   `json:"deleted,omitempty" example:"2025-08-24T09:00:00Z"`
	DaysUntilPurge *int     `json:"days_until_purge,omitempty" example:"29"`
}

// FileResponseFromModel : конвертирует model.File в FileResponse
func FileResponseFromModel(file *model.File) FileResponse {
	resp := FileResponse{
		ID:           file.ID,
		Name:         file.Name,
		FolderID:     file.FolderID,
		MimeType:     file.MimeType,
		Kind:         file.Kind(),
		Size:         file.SizeBytes,
		HumanSize:    file.HumanSize(),
		Description:  file.Description,
		Tags:         append([]string{}, file.Tags...),
		HasThumbnail: file.HasThumbnail(),
		Location:     file.LocationKey,
		CreatedAt:    file.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    file.UpdatedAt.Format(time.RFC3339),
	}
	if file.HasHash() {
		resp.ContentHash = *file.ContentHash
	}
	if file.DeletedAt != nil {
		resp.DeletedAt = file.DeletedAt.Format(time.RFC3339)
	}
	return resp
}

// TrashedFileResponse : файл корзины с числом дней до окончательного удаления
func TrashedFileResponse(file *model.File, now time.Time, retention time.Duration) FileResponse {
	resp := FileResponseFromModel(file)
	days := file.DaysUntilPurge(now, retention)
	resp.DaysUntilPurge = &days
	return resp
}

func FileResponses(files []*model.File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, FileResponseFromModel(f))
	}
	return out
}

// GetFileResponse : ответ для одного файла
type GetFileResponse struct {
	Data FileResponse `json:"data"`
}

// ListFilesResponse : ответ API со списком файлов
type ListFilesResponse struct {
	Data struct {
		Files []FileResponse `json:"files"`
	} `json:"data"`
	NextCursor string `json:"next_cursor,omitempty" example:"MjAyNS0wOC0yM1QxMjozNDo1Nlp8YjZhMWUxYzQ"`
	Count      int    `json:"count" example:"10"`
}

// UpdateFileRequest : отсутствующие поля не меняются
type UpdateFileRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255" example:"report-final.pdf"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000" example:"итоговая версия"`
	Tags        *string `json:"tags,omitempty" validate:"omitempty,max=1000" example:"work, report"`
}

// MoveRequest : folder_id == null переносит в корень
type MoveRequest struct {
	FolderID *string `json:"folder_id" validate:"omitempty,uuid" example:"0b1f2e3d-1111-2222-3333-444455556666"`
}

// DownloadURLResponse : ссылка на скачивание (pre-signed для S3)
type DownloadURLResponse struct {
	Data struct {
		URL       string `json:"url" example:"https://bucket.s3.amazonaws.com/user_1/report.pdf?X-Amz-Signature=..."`
		ExpiresIn string `json:"expires_in" example:"15m0s"`
	} `json:"data"`
}

// SearchResponse : найденные файлы и папки
type SearchResponse struct {
	Data struct {
		Files   []FileResponse   `json:"files"`
		Folders []FolderResponse `json:"folders"`
	} `json:"data"`
}

// TagSuggestion : тег и число файлов с ним
type TagSuggestion struct {
	Tag   string `json:"tag" example:"work"`
	Count int    `json:"count" example:"3"`
}

// TagSuggestionsResponse : подсказки тегов
type TagSuggestionsResponse struct {
	Data []TagSuggestion `json:"data"`
}

// DuplicateGroupResponse : файлы с одинаковым содержимым
type DuplicateGroupResponse struct {
	ContentHash string         `json:"sha256" example:"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"`
	Original    FileResponse   `json:"original"`
	Duplicates  []FileResponse `json:"duplicates"`
	WastedBytes int64          `json:"wasted_bytes" example:"20480"`
}

// DuplicatesResponse : отчёт о дубликатах пользователя
type DuplicatesResponse struct {
	Data struct {
		Groups      []DuplicateGroupResponse `json:"groups"`
		TotalWasted int64                    `json:"total_wasted" example:"20480"`
		Wasted      string                   `json:"wasted" example:"20.0 KB"`
	} `json:"data"`
}

func DuplicatesResponseFromModel(report *model.DuplicateReport) DuplicatesResponse {
	var resp DuplicatesResponse
	resp.Data.Groups = make([]DuplicateGroupResponse, 0, len(report.Groups))
	for _, g := range report.Groups {
		resp.Data.Groups = append(resp.Data.Groups, DuplicateGroupResponse{
			ContentHash: g.ContentHash,
			Original:    FileResponseFromModel(g.Original),
			Duplicates:  FileResponses(g.Duplicates),
			WastedBytes: g.WastedBytes,
		})
	}
	resp.Data.TotalWasted = report.TotalWasted
	resp.Data.Wasted = model.HumanSize(report.TotalWasted)
	return resp
}
