package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storage-manager/internal/model"
	"storage-manager/internal/model/requestresponse"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

type FolderHandler struct {
	ports.FolderService
}

func NewFolderHandler(folderService ports.FolderService) *FolderHandler {
	return &FolderHandler{folderService}
}

// CreateFolder godoc
// @Summary Создание папки
// @Description Создаёт папку в корне или внутри активной папки пользователя. Имя уникально среди активных соседей.
// @Tags Folders
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateFolderRequest true "Тело запроса"
// @Success 201 {object} requestresponse.GetFolderResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Недопустимая родительская папка"
// @Failure 409 {object} requestresponse.ErrorResponse "Папка с таким именем уже существует"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders [post]
// @Security ApiKeyAuth
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	folder, err := h.FolderService.CreateFolder(r.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	h.writeFolder(w, r, userID, folder, http.StatusCreated)
}

// ListFolders godoc
// @Summary Список папок
// @Description Подпапки указанной папки (по умолчанию корня) или, при all=true, все активные папки пользователя.
// @Tags Folders
// @Produce json
// @Param parent_id query string false "UUID родительской папки"
// @Param all query bool false "Все папки пользователя"
// @Success 200 {object} requestresponse.ListFoldersResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders [get]
// @Security ApiKeyAuth
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var (
		resp requestresponse.ListFoldersResponse
		err  error
	)
	if r.URL.Query().Get("all") == "true" {
		folders, lerr := h.FolderService.ListAll(r.Context(), userID)
		resp.Data.Folders, err = requestresponse.FolderResponses(folders), lerr
	} else {
		parentID := optionalID(r.URL.Query().Get("parent_id"))
		if parentID != nil && !requireUUID(w, *parentID, "папка") {
			return
		}
		folders, lerr := h.FolderService.ListChildren(r.Context(), userID, parentID)
		resp.Data.Folders, err = requestresponse.FolderResponses(folders), lerr
	}
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, resp)
}

// GetFolder godoc
// @Summary Папка и её путь
// @Tags Folders
// @Produce json
// @Param id path string true "UUID папки"
// @Success 200 {object} requestresponse.GetFolderResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id} [get]
// @Security ApiKeyAuth
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	folderID := chi.URLParam(r, "id")
	if !requireUUID(w, folderID, "папка") {
		return
	}

	folder, err := h.FolderService.GetFolder(r.Context(), userID, folderID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	h.writeFolder(w, r, userID, folder, http.StatusOK)
}

// RenameFolder godoc
// @Summary Переименование папки
// @Tags Folders
// @Accept json
// @Produce json
// @Param id path string true "UUID папки"
// @Param body body requestresponse.RenameFolderRequest true "Тело запроса"
// @Success 200 {object} requestresponse.GetFolderResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Папка с таким именем уже существует"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id} [patch]
// @Security ApiKeyAuth
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	folderID := chi.URLParam(r, "id")
	if !requireUUID(w, folderID, "папка") {
		return
	}

	var req requestresponse.RenameFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	folder, err := h.FolderService.RenameFolder(r.Context(), userID, folderID, req.Name)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	h.writeFolder(w, r, userID, folder, http.StatusOK)
}

// MoveFolder godoc
// @Summary Перемещение папки
// @Description Переносит папку под другую активную папку пользователя. Перенос внутрь собственного поддерева запрещён.
// @Tags Folders
// @Accept json
// @Produce json
// @Param id path string true "UUID папки"
// @Param body body requestresponse.MoveFolderRequest true "Тело запроса"
// @Success 200 {object} requestresponse.GetFolderResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Недопустимая целевая папка"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Папка с таким именем уже существует"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id}/parent [put]
// @Security ApiKeyAuth
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	folderID := chi.URLParam(r, "id")
	if !requireUUID(w, folderID, "папка") {
		return
	}

	var req requestresponse.MoveFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	folder, err := h.FolderService.MoveFolder(r.Context(), userID, folderID, req.ParentID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	h.writeFolder(w, r, userID, folder, http.StatusOK)
}

// writeFolder : папка вместе с путём от корня
func (h *FolderHandler) writeFolder(w http.ResponseWriter, r *http.Request, userID string, folder *model.Folder, status int) {
	path, err := h.FolderService.FolderPath(r.Context(), userID, folder.ID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	resp := requestresponse.GetFolderResponse{}
	resp.Data.Folder = requestresponse.FolderResponseFromModel(folder)
	resp.Data.Path = path

	util.WriteJSON(w, status, resp)
}
