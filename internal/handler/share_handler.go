package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storage-manager/internal/model/requestresponse"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

type ShareHandler struct {
	ports.ShareService
	now func() time.Time
}

func NewShareHandler(shareService ports.ShareService) *ShareHandler {
	return &ShareHandler{shareService, time.Now}
}

// IssueLink godoc
// @Summary Создание публичной ссылки
// @Description Создаёт ссылку на скачивание файла без авторизации. Можно ограничить срок действия и число скачиваний.
// @Tags Links
// @Accept json
// @Produce json
// @Param id path string true "UUID файла"
// @Param body body requestresponse.IssueLinkRequest false "Ограничения ссылки"
// @Success 201 {object} requestresponse.GetLinkResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id}/links [post]
// @Security ApiKeyAuth
func (h *ShareHandler) IssueLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	var req requestresponse.IssueLinkRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		return
	}

	link, err := h.ShareService.Issue(r.Context(), ports.IssueRequest{
		OwnerID:      userID,
		FileID:       fileID,
		ExpiresAt:    req.ExpiresAt,
		MaxDownloads: req.MaxDownloads,
	})
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.GetLinkResponse{Data: requestresponse.LinkResponseFromModel(link, h.now())})
}

// ListLinks godoc
// @Summary Публичные ссылки пользователя
// @Tags Links
// @Produce json
// @Success 200 {object} requestresponse.ListLinksResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/links [get]
// @Security ApiKeyAuth
func (h *ShareHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	links, err := h.ShareService.ListLinks(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	now := h.now()

	resp := requestresponse.ListLinksResponse{}
	resp.Data.Links = make([]requestresponse.LinkResponse, 0, len(links))
	for _, l := range links {
		resp.Data.Links = append(resp.Data.Links, requestresponse.LinkResponseFromModel(l, now))
	}

	util.WriteJSON(w, http.StatusOK, resp)
}

// SetLinkActive godoc
// @Summary Включение и отключение ссылки
// @Tags Links
// @Accept json
// @Produce json
// @Param id path string true "UUID ссылки"
// @Param body body requestresponse.SetLinkActiveRequest true "Тело запроса"
// @Success 200 {object} requestresponse.GetLinkResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/links/{id} [patch]
// @Security ApiKeyAuth
func (h *ShareHandler) SetLinkActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	linkID := chi.URLParam(r, "id")
	if !requireUUID(w, linkID, "ссылка") {
		return
	}

	var req requestresponse.SetLinkActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	link, err := h.ShareService.SetActive(r.Context(), userID, linkID, req.Active)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.GetLinkResponse{Data: requestresponse.LinkResponseFromModel(link, h.now())})
}

// DeleteLink godoc
// @Summary Удаление ссылки
// @Tags Links
// @Param id path string true "UUID ссылки"
// @Success 204 "Ссылка удалена"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/links/{id} [delete]
// @Security ApiKeyAuth
func (h *ShareHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	linkID := chi.URLParam(r, "id")
	if !requireUUID(w, linkID, "ссылка") {
		return
	}

	if err := h.ShareService.DeleteLink(r.Context(), userID, linkID); err != nil {
		sendServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadShared godoc
// @Summary Скачивание по публичной ссылке
// @Description Авторизация не нужна. Каждое успешное скачивание засчитывается, по достижении лимита ссылка отключается.
// @Tags Public
// @Produce octet-stream
// @Param token path string true "Токен ссылки"
// @Success 200 {file} file
// @Failure 404 {object} requestresponse.ErrorResponse "Ссылка или файл не найдены"
// @Failure 410 {object} requestresponse.ErrorResponse "Ссылка недоступна, причина видна только владельцу"
// @Router /s/{token} [get]
func (h *ShareHandler) DownloadShared(w http.ResponseWriter, r *http.Request) {
	file, rc, err := h.ShareService.OpenShared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		sendPublicError(w, r, err)
		return
	}

	streamContent(w, r, rc, file.Name, contentTypeOf(file), file.SizeBytes, true)
}

// CheckShared godoc
// @Summary Проверка публичной ссылки
// @Description Отвечает тем же статусом, что и скачивание, но не засчитывает его.
// @Tags Public
// @Param token path string true "Токен ссылки"
// @Success 200
// @Failure 404
// @Failure 410
// @Router /s/{token} [head]
func (h *ShareHandler) CheckShared(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ShareService.Check(r.Context(), chi.URLParam(r, "token")); err != nil {
		w.WriteHeader(statusFor(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}
