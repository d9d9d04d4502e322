package handler

import (
	"net/http"

	"storage-manager/internal/model"
	"storage-manager/internal/model/requestresponse"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

// maxAvatarBytes : ограничение тела запроса с аватаром
const maxAvatarBytes = 10 << 20

type ProfileHandler struct {
	ports.ProfileService
	quota ports.QuotaService
}

func NewProfileHandler(profileService ports.ProfileService, quotaService ports.QuotaService) *ProfileHandler {
	return &ProfileHandler{profileService, quotaService}
}

// GetProfile godoc
// @Summary Профиль текущего пользователя
// @Tags Profile
// @Produce json
// @Success 200 {object} requestresponse.ProfileResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/profile [get]
// @Security ApiKeyAuth
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.ProfileService.GetProfile(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ProfileResponseFromModel(profile))
}

// UpdateProfile godoc
// @Summary Изменение профиля
// @Description Меняет био, телефон и город. Отсутствующие поля не меняются.
// @Tags Profile
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdateProfileRequest true "Тело запроса"
// @Success 200 {object} requestresponse.ProfileResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/profile [patch]
// @Security ApiKeyAuth
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	profile, err := h.ProfileService.UpdateProfile(r.Context(), userID, model.ProfileUpdate{
		Bio:      req.Bio,
		Phone:    req.Phone,
		Location: req.Location,
	})
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ProfileResponseFromModel(profile))
}

// UploadAvatar godoc
// @Summary Загрузка аватара
// @Description Заменяет аватар пользователя, старый файл удаляется.
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Изображение"
// @Success 200 {object} requestresponse.ProfileResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/profile/avatar [put]
// @Security ApiKeyAuth
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		util.HandleError(w, "файл не найден в запросе", http.StatusBadRequest)
		return
	}
	defer file.Close()

	profile, err := h.ProfileService.UpdateAvatar(r.Context(), userID, header.Filename, file)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ProfileResponseFromModel(profile))
}

// GetAvatar godoc
// @Summary Аватар текущего пользователя
// @Tags Profile
// @Produce image/png
// @Success 200 {file} file
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/profile/avatar [get]
// @Security ApiKeyAuth
func (h *ProfileHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	contentType, rc, err := h.ProfileService.OpenAvatar(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	streamContent(w, r, rc, "avatar", contentType, 0, false)
}

// GetStats godoc
// @Summary Статистика хранилища
// @Description Использованный объём, квота пользователя (общая ёмкость, делённая на число активных пользователей) и процент использования.
// @Tags Profile
// @Produce json
// @Success 200 {object} requestresponse.StatsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/stats [get]
// @Security ApiKeyAuth
func (h *ProfileHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.quota.Stats(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.StatsResponseFromModel(stats))
}
