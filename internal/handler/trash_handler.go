package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storage-manager/internal/model"
	"storage-manager/internal/model/requestresponse"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

// TrashHandler : корзина, восстановление и окончательное удаление файлов и папок
type TrashHandler struct {
	ports.LifecycleService
	retention time.Duration
	now       func() time.Time
}

func NewTrashHandler(lifecycleService ports.LifecycleService, retention time.Duration) *TrashHandler {
	return &TrashHandler{lifecycleService, retention, time.Now}
}

// TrashFile godoc
// @Summary Перемещение файла в корзину
// @Tags Trash
// @Param id path string true "UUID файла"
// @Success 204 "Файл перемещён в корзину"
// @Failure 400 {object} requestresponse.ErrorResponse "Файл уже в корзине"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id} [delete]
// @Security ApiKeyAuth
func (h *TrashHandler) TrashFile(w http.ResponseWriter, r *http.Request) {
	userID, fileID, ok := h.target(w, r, "файл")
	if !ok {
		return
	}

	if err := h.LifecycleService.TrashFile(r.Context(), userID, fileID); err != nil {
		sendServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreFile godoc
// @Summary Восстановление файла из корзины
// @Description Если исходная папка тоже в корзине или удалена, файл восстанавливается в корень.
// @Tags Trash
// @Produce json
// @Param id path string true "UUID файла"
// @Success 200 {object} requestresponse.GetFileResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id}/restore [post]
// @Security ApiKeyAuth
func (h *TrashHandler) RestoreFile(w http.ResponseWriter, r *http.Request) {
	userID, fileID, ok := h.target(w, r, "файл")
	if !ok {
		return
	}

	file, err := h.LifecycleService.RestoreFile(r.Context(), userID, fileID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.GetFileResponse{Data: requestresponse.FileResponseFromModel(file)})
}

// PurgeFile godoc
// @Summary Окончательное удаление файла
// @Description Удаляет файл из корзины вместе с содержимым и миниатюрой. Активный файл сначала нужно переместить в корзину.
// @Tags Trash
// @Param id path string true "UUID файла"
// @Success 204 "Файл удалён"
// @Failure 400 {object} requestresponse.ErrorResponse "Файл не в корзине"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id}/permanent [delete]
// @Security ApiKeyAuth
func (h *TrashHandler) PurgeFile(w http.ResponseWriter, r *http.Request) {
	userID, fileID, ok := h.target(w, r, "файл")
	if !ok {
		return
	}

	if err := h.LifecycleService.PurgeFile(r.Context(), userID, fileID); err != nil {
		sendServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TrashFolder godoc
// @Summary Перемещение папки в корзину
// @Description Каскадно перемещает в корзину папку, все вложенные папки и файлы с одной отметкой времени.
// @Tags Trash
// @Produce json
// @Param id path string true "UUID папки"
// @Success 200 {object} requestresponse.CascadeResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id} [delete]
// @Security ApiKeyAuth
func (h *TrashHandler) TrashFolder(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.target(w, r, "папка")
	if !ok {
		return
	}

	result, err := h.LifecycleService.TrashFolder(r.Context(), userID, folderID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, cascadeResponse(result))
}

// RestoreFolder godoc
// @Summary Восстановление папки из корзины
// @Description Восстанавливает папку и всё, что попало в корзину вместе с ней.
// @Tags Trash
// @Produce json
// @Param id path string true "UUID папки"
// @Success 200 {object} requestresponse.CascadeResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Папка с таким именем уже существует"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id}/restore [post]
// @Security ApiKeyAuth
func (h *TrashHandler) RestoreFolder(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.target(w, r, "папка")
	if !ok {
		return
	}

	result, err := h.LifecycleService.RestoreFolder(r.Context(), userID, folderID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, cascadeResponse(result))
}

// PurgeFolder godoc
// @Summary Окончательное удаление папки
// @Description Удаляет папку из корзины со всем поддеревом и содержимым файлов.
// @Tags Trash
// @Produce json
// @Param id path string true "UUID папки"
// @Success 200 {object} requestresponse.CascadeResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Папка не в корзине"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id}/permanent [delete]
// @Security ApiKeyAuth
func (h *TrashHandler) PurgeFolder(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.target(w, r, "папка")
	if !ok {
		return
	}

	result, err := h.LifecycleService.PurgeFolder(r.Context(), userID, folderID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, cascadeResponse(result))
}

// ListTrash godoc
// @Summary Содержимое корзины
// @Description Файлы и папки в корзине, новые сначала, с числом дней до окончательного удаления.
// @Tags Trash
// @Produce json
// @Success 200 {object} requestresponse.TrashResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/trash [get]
// @Security ApiKeyAuth
func (h *TrashHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listing, err := h.LifecycleService.ListTrash(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	now := h.now()
	resp := requestresponse.TrashResponse{}
	resp.Data.Files = make([]requestresponse.FileResponse, 0, len(listing.Files))
	for _, f := range listing.Files {
		resp.Data.Files = append(resp.Data.Files, requestresponse.TrashedFileResponse(f, now, h.retention))
	}
	resp.Data.Folders = make([]requestresponse.FolderResponse, 0, len(listing.Folders))
	for _, f := range listing.Folders {
		resp.Data.Folders = append(resp.Data.Folders, requestresponse.TrashedFolderResponse(f, now, h.retention))
	}

	util.WriteJSON(w, http.StatusOK, resp)
}

// EmptyTrash godoc
// @Summary Очистка корзины
// @Description Окончательно удаляет всё содержимое корзины пользователя. Ошибка одного элемента не прерывает очистку.
// @Tags Trash
// @Produce json
// @Success 200 {object} requestresponse.BatchReportResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/trash [delete]
// @Security ApiKeyAuth
func (h *TrashHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	report, err := h.LifecycleService.EmptyTrash(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, batchReportResponse(report))
}

// RestoreFiles godoc
// @Summary Пакетное восстановление файлов
// @Tags Trash
// @Accept json
// @Produce json
// @Param body body requestresponse.BatchRequest true "Тело запроса"
// @Success 200 {object} requestresponse.BatchReportResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/trash/restore [post]
// @Security ApiKeyAuth
func (h *TrashHandler) RestoreFiles(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, h.LifecycleService.RestoreFiles)
}

// PurgeFiles godoc
// @Summary Пакетное окончательное удаление файлов
// @Tags Trash
// @Accept json
// @Produce json
// @Param body body requestresponse.BatchRequest true "Тело запроса"
// @Success 200 {object} requestresponse.BatchReportResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/trash/purge [post]
// @Security ApiKeyAuth
func (h *TrashHandler) PurgeFiles(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, h.LifecycleService.PurgeFiles)
}

type batchFunc func(ctx context.Context, ownerID string, ids []string) (*model.BatchReport, error)

func (h *TrashHandler) batch(w http.ResponseWriter, r *http.Request, run batchFunc) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req requestresponse.BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	report, err := run(r.Context(), userID, req.FileIDs)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, batchReportResponse(report))
}

// target : пользователь и UUID из пути
func (h *TrashHandler) target(w http.ResponseWriter, r *http.Request, what string) (string, string, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return "", "", false
	}
	id := chi.URLParam(r, "id")
	if !requireUUID(w, id, what) {
		return "", "", false
	}
	return userID, id, true
}

func cascadeResponse(result *model.CascadeResult) requestresponse.CascadeResponse {
	resp := requestresponse.CascadeResponse{}
	resp.Data.Folders = result.Folders
	resp.Data.Files = result.Files
	return resp
}

func batchReportResponse(report *model.BatchReport) requestresponse.BatchReportResponse {
	resp := requestresponse.BatchReportResponse{}
	resp.Data.Task = report.Task
	resp.Data.Succeeded = report.Succeeded
	resp.Data.Skipped = report.Skipped
	resp.Data.Failed = report.Failed
	for _, f := range report.Failures {
		resp.Data.Failures = append(resp.Data.Failures, requestresponse.ItemFailureResponse{ID: f.ID, Error: f.Error})
	}
	return resp
}
