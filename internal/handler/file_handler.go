package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"storage-manager/internal/model"
	"storage-manager/internal/model/requestresponse"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

// multipartMemory : часть формы, которая держится в памяти, остальное уходит во временные файлы
const multipartMemory = 32 << 20

type FileHandler struct {
	ports.FileService
	maxUploadBytes int64
	presignTTL     time.Duration
}

func NewFileHandler(fileService ports.FileService, maxUploadBytes int64, presignTTL time.Duration) *FileHandler {
	return &FileHandler{fileService, maxUploadBytes, presignTTL}
}

// UploadFile godoc
// @Summary Загрузка файла
// @Description Загружает файл в папку пользователя (multipart/form-data). Размер проверяется по квоте до записи байтов.
// После сохранения считается SHA-256 и, для изображений, строится миниатюра.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл"
// @Param folder_id formData string false "UUID папки, пусто для корня"
// @Param name formData string false "Отображаемое имя, по умолчанию имя файла"
// @Param description formData string false "Описание"
// @Param tags formData string false "Теги через запятую"
// @Param location formData string false "Ключ локации хранения"
// @Success 201 {object} requestresponse.GetFileResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} requestresponse.ErrorResponse "Недопустимая целевая папка"
// @Failure 413 {object} requestresponse.ErrorResponse "Превышена квота"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/files [post]
// @Security ApiKeyAuth
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		util.HandleError(w, "файл превышает допустимый размер запроса", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.HandleError(w, "файл превышает допустимый размер запроса", http.StatusRequestEntityTooLarge)
			return
		}
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	folderID := optionalID(r.FormValue("folder_id"))
	if folderID != nil && !requireUUID(w, *folderID, "папка") {
		return
	}

	created, err := h.FileService.Upload(r.Context(), ports.UploadRequest{
		OwnerID:      userID,
		FolderID:     folderID,
		Filename:     header.Filename,
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		Tags:         r.FormValue("tags"),
		MimeType:     header.Header.Get("Content-Type"),
		LocationKey:  r.FormValue("location"),
		DeclaredSize: header.Size,
		Content:      file,
	})
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.GetFileResponse{Data: requestresponse.FileResponseFromModel(created)})
}

// ListFiles godoc
// @Summary Список файлов папки
// @Description Возвращает активные файлы папки постранично (cursor-based), новые сначала.
// @Tags Files
// @Produce json
// @Param folder_id query string false "UUID папки, пусто или root для корня"
// @Param cursor query string false "Курсор для пагинации"
// @Param limit query int false "Количество файлов в списке" default(50) minimum(1) maximum(100)
// @Success 200 {object} requestresponse.ListFilesResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files [get]
// @Security ApiKeyAuth
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	folderID := optionalID(r.URL.Query().Get("folder_id"))
	if folderID != nil && !requireUUID(w, *folderID, "папка") {
		return
	}
	after, err := decodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	files, next, err := h.FileService.ListFiles(r.Context(), userID, folderID, after, parseLimit(r))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	resp := requestresponse.ListFilesResponse{}
	resp.Data.Files = requestresponse.FileResponses(files)
	resp.NextCursor = encodeCursor(next)
	resp.Count = len(files)

	util.WriteJSON(w, http.StatusOK, resp)
}

// GetFile godoc
// @Summary Метаданные файла
// @Tags Files
// @Produce json
// @Param id path string true "UUID файла"
// @Success 200 {object} requestresponse.GetFileResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id} [get]
// @Security ApiKeyAuth
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	file, err := h.FileService.GetFile(r.Context(), userID, fileID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.GetFileResponse{Data: requestresponse.FileResponseFromModel(file)})
}

// UpdateFile godoc
// @Summary Изменение метаданных файла
// @Description Меняет имя, описание и теги. Отсутствующие поля не меняются.
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "UUID файла"
// @Param body body requestresponse.UpdateFileRequest true "Тело запроса"
// @Success 200 {object} requestresponse.GetFileResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id} [patch]
// @Security ApiKeyAuth
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	var req requestresponse.UpdateFileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	file, err := h.FileService.UpdateFile(r.Context(), userID, fileID, ports.FileUpdate{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.GetFileResponse{Data: requestresponse.FileResponseFromModel(file)})
}

// MoveFile godoc
// @Summary Перемещение файла
// @Description Переносит файл в другую активную папку владельца, folder_id = null переносит в корень.
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "UUID файла"
// @Param body body requestresponse.MoveRequest true "Тело запроса"
// @Success 200 {object} requestresponse.GetFileResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Недопустимая целевая папка"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id}/folder [put]
// @Security ApiKeyAuth
func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	var req requestresponse.MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	file, err := h.FileService.MoveFile(r.Context(), userID, fileID, req.FolderID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.GetFileResponse{Data: requestresponse.FileResponseFromModel(file)})
}

// DownloadFile godoc
// @Summary Скачивание файла
// @Description Отдаёт содержимое файла владельцу. inline=true показывает файл в браузере.
// @Tags Files
// @Produce octet-stream
// @Param id path string true "UUID файла"
// @Param inline query bool false "Показать в браузере вместо скачивания"
// @Success 200 {file} file
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse "Содержимое недоступно"
// @Router /api/files/{id}/content [get]
// @Security ApiKeyAuth
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	file, rc, err := h.FileService.OpenContent(r.Context(), userID, fileID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	inline := r.URL.Query().Get("inline") == "true"
	streamContent(w, r, rc, file.Name, contentTypeOf(file), file.SizeBytes, !inline)
}

// DownloadFileHead godoc
// @Summary Заголовки скачивания файла
// @Tags Files
// @Param id path string true "UUID файла"
// @Success 200
// @Failure 404
// @Router /api/files/{id}/content [head]
// @Security ApiKeyAuth
func (h *FileHandler) DownloadFileHead(w http.ResponseWriter, r *http.Request) {
	h.DownloadFile(w, r)
}

// PreviewFile godoc
// @Summary Превью файла
// @Description Отдаёт JPEG-миниатюру изображения, а при её отсутствии исходный файл.
// @Tags Files
// @Produce image/jpeg
// @Param id path string true "UUID файла"
// @Success 200 {file} file
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/files/{id}/preview [get]
// @Security ApiKeyAuth
func (h *FileHandler) PreviewFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	file, rc, err := h.FileService.OpenPreview(r.Context(), userID, fileID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	contentType := contentTypeOf(file)
	var size int64
	if file.HasThumbnail() {
		contentType = "image/jpeg"
	} else {
		size = file.SizeBytes
	}
	streamContent(w, r, rc, file.Name, contentType, size, false)
}

// GetDownloadURL godoc
// @Summary Ссылка на скачивание
// @Description Для S3 возвращает pre-signed URL с ограниченным временем жизни, для локального диска путь с url_prefix.
// @Tags Files
// @Produce json
// @Param id path string true "UUID файла"
// @Success 200 {object} requestresponse.DownloadURLResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/files/{id}/url [get]
// @Security ApiKeyAuth
func (h *FileHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "id")
	if !requireUUID(w, fileID, "файл") {
		return
	}

	url, err := h.FileService.DownloadURL(r.Context(), userID, fileID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	resp := requestresponse.DownloadURLResponse{}
	resp.Data.URL = url
	resp.Data.ExpiresIn = h.presignTTL.String()

	util.WriteJSON(w, http.StatusOK, resp)
}

// Search godoc
// @Summary Поиск
// @Description Ищет активные файлы по имени, описанию и тегам и папки по имени.
// @Tags Files
// @Produce json
// @Param q query string true "Строка поиска"
// @Success 200 {object} requestresponse.SearchResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/search [get]
// @Security ApiKeyAuth
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.FileService.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	resp := requestresponse.SearchResponse{}
	resp.Data.Files = requestresponse.FileResponses(result.Files)
	resp.Data.Folders = requestresponse.FolderResponses(result.Folders)

	util.WriteJSON(w, http.StatusOK, resp)
}

// TagSuggestions godoc
// @Summary Подсказки тегов
// @Description Теги пользователя, содержащие строку запроса, с числом файлов. Не больше 10.
// @Tags Files
// @Produce json
// @Param q query string false "Часть тега"
// @Success 200 {object} requestresponse.TagSuggestionsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/tags [get]
// @Security ApiKeyAuth
func (h *FileHandler) TagSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	suggestions, err := h.FileService.TagSuggestions(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	resp := requestresponse.TagSuggestionsResponse{Data: make([]requestresponse.TagSuggestion, 0, len(suggestions))}
	for _, s := range suggestions {
		resp.Data = append(resp.Data, requestresponse.TagSuggestion{Tag: s.Tag, Count: s.Count})
	}

	util.WriteJSON(w, http.StatusOK, resp)
}

func contentTypeOf(file *model.File) string {
	if file.MimeType != "" {
		return file.MimeType
	}
	return util.ContentType(file.Name)
}
