package requestresponse

import (
	"time"

	"storage-manager/internal/model"
)

// FolderResponse : описывает папку для JSON-ответа
type FolderResponse struct {
	ID             string  `json:"id" example:"0b1f2e3d-1111-2222-3333-444455556666"`
	Name           string  `json:"name" example:"Docs"`
	ParentID       *string `json:"parent_id,omitempty" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	CreatedAt      string  `json:"created" example:"2025-08-23T12:34:56Z"`
	DeletedAt      string  `json:"deleted,omitempty" example:"2025-08-24T09:00:00Z"`
	DaysUntilPurge *int    `json:"days_until_purge,omitempty" example:"29"`
}

func FolderResponseFromModel(folder *model.Folder) FolderResponse {
	resp := FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		CreatedAt: folder.CreatedAt.Format(time.RFC3339),
	}
	if folder.DeletedAt != nil {
		resp.DeletedAt = folder.DeletedAt.Format(time.RFC3339)
	}
	return resp
}

func TrashedFolderResponse(folder *model.Folder, now time.Time, retention time.Duration) FolderResponse {
	resp := FolderResponseFromModel(folder)
	days := folder.DaysUntilPurge(now, retention)
	resp.DaysUntilPurge = &days
	return resp
}

func FolderResponses(folders []*model.Folder) []FolderResponse {
	out := make([]FolderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, FolderResponseFromModel(f))
	}
	return out
}

// CreateFolderRequest : parent_id == null создаёт папку в корне
type CreateFolderRequest struct {
	Name     string  `json:"name" validate:"required,max=255" example:"Docs"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
}

// RenameFolderRequest : новое имя папки
type RenameFolderRequest struct {
	Name string `json:"name" validate:"required,max=255" example:"Documents"`
}

// MoveFolderRequest : parent_id == null переносит папку в корень
type MoveFolderRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
}

// GetFolderResponse : папка и её путь от корня
type GetFolderResponse struct {
	Data struct {
		Folder FolderResponse `json:"folder"`
		Path   string         `json:"path" example:"Docs/2025/Q3"`
	} `json:"data"`
}

// ListFoldersResponse : список папок
type ListFoldersResponse struct {
	Data struct {
		Folders []FolderResponse `json:"folders"`
	} `json:"data"`
}

// CascadeResponse : сколько папок и файлов затронуто каскадом
type CascadeResponse struct {
	Data struct {
		Folders int `json:"folders" example:"3"`
		Files   int `json:"files" example:"12"`
	} `json:"data"`
}

// TrashResponse : содержимое корзины
type TrashResponse struct {
	Data struct {
		Files   []FileResponse   `json:"files"`
		Folders []FolderResponse `json:"folders"`
	} `json:"data"`
}
