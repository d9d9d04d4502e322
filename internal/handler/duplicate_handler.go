package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storage-manager/internal/model/requestresponse"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

type DuplicateHandler struct {
	ports.MaintenanceService
}

func NewDuplicateHandler(maintenanceService ports.MaintenanceService) *DuplicateHandler {
	return &DuplicateHandler{maintenanceService}
}

// FindDuplicates godoc
// @Summary Дубликаты файлов
// @Description Группы активных файлов пользователя с одинаковым SHA-256. Оригинал самый ранний, остальные дубликаты.
// @Tags Duplicates
// @Produce json
// @Success 200 {object} requestresponse.DuplicatesResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/duplicates [get]
// @Security ApiKeyAuth
func (h *DuplicateHandler) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	report, err := h.MaintenanceService.FindDuplicates(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.DuplicatesResponseFromModel(report))
}

// DeleteDuplicate godoc
// @Summary Удаление дубликата
// @Description Перемещает файл-дубликат в корзину.
// @Tags Duplicates
// @Param id path string true "UUID файла"
// @Success 204 "Дубликат перемещён в корзину"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/duplicates/{id} [delete]
// @Security ApiKeyAuth
func (h *DuplicateHandler) DeleteDuplicate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	if err := h.MaintenanceService.DeleteDuplicate(r.Context(), userID, fileID); err != nil {
		sendServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
