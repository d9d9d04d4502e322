package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/security"
	"storage-manager/internal/util"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

var validate = validator.New()

// decodeJSON обрабатывает декодирование JSON и проверку тегов validate, при ошибке сам пишет ответ 400
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return err
	}
	if err := validate.Struct(target); err != nil {
		util.HandleError(w, validationMessage(err), http.StatusBadRequest)
		return err
	}
	return nil
}

// decodeOptionalJSON : как decodeJSON, но пустое тело (в том числе без Content-Length) не ошибка
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return err
	}
	if err := validate.Struct(target); err != nil {
		util.HandleError(w, validationMessage(err), http.StatusBadRequest)
		return err
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "некорректные параметры"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "некорректные параметры: " + strings.Join(parts, ", ")
}

// currentUser возвращает id пользователя из JWT, при отсутствии claims пишет 401
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil || claims.UserID == "" {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

// requireUUID : параметр пути должен быть UUID, иначе 404 (такой записи быть не может)
func requireUUID(w http.ResponseWriter, value, what string) bool {
	if _, err := uuid.Parse(value); err != nil {
		util.HandleError(w, what+" не найден", http.StatusNotFound)
		return false
	}
	return true
}

// statusFor сопоставляет ошибки ядра с HTTP-статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateSiblingName),
		errors.Is(err, model.ErrIntegrityViolation):
		return http.StatusConflict
	case errors.Is(err, model.ErrForbiddenTarget):
		return http.StatusForbidden
	case errors.Is(err, model.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrCannotDownload):
		return http.StatusGone
	case errors.Is(err, model.ErrUnreadableContent),
		errors.Is(err, model.ErrContentNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError пишет ответ по ошибке сервиса; внутренние детали 5xx наружу не отдаются
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error().Err(err).Str("path", r.URL.Path).Msg("[Handler] внутренняя ошибка")
		util.HandleError(w, "внутренняя ошибка сервера", status)
		return
	}
	util.HandleError(w, publicMessage(err), status)
}

// sendPublicError : анонимный клиент узнаёт только, что ссылка недоступна
func sendPublicError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrCannotDownload) {
		util.HandleError(w, model.ErrCannotDownload.Error(), http.StatusGone)
		return
	}
	sendServiceError(w, r, err)
}

// publicMessage : текст типизированной ошибки без префиксов слоёв
func publicMessage(err error) string {
	for _, kind := range []error{
		model.ErrLinkExhausted, model.ErrLinkExpired, model.ErrLinkInactive,
		model.ErrNotFound, model.ErrDuplicateSiblingName, model.ErrForbiddenTarget,
		model.ErrQuotaExceeded, model.ErrUnreadableContent, model.ErrContentNotFound,
		model.ErrIntegrityViolation,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	if errors.Is(err, model.ErrInvalidArgument) {
		msg := err.Error()
		if i := strings.Index(msg, model.ErrInvalidArgument.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return err.Error()
}

// parseLimit : limit из query, по умолчанию 50, не больше 100
func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, maxListLimit)
		}
	}
	return limit
}

// optionalID : пустая строка и "root" означают корень
func optionalID(value string) *string {
	if value == "" || value == "root" {
		return nil
	}
	return &value
}

func encodeCursor(c *ports.FileCursor) string {
	if c == nil {
		return ""
	}
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(value string) (*ports.FileCursor, error) {
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: курсор", model.ErrInvalidArgument)
	}
	stamp, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, fmt.Errorf("%w: курсор", model.ErrInvalidArgument)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("%w: курсор", model.ErrInvalidArgument)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: курсор", model.ErrInvalidArgument)
	}
	return &ports.FileCursor{CreatedAt: createdAt, ID: id}, nil
}

// streamContent отдаёт байты файла; attachment=false показывает файл в браузере
func streamContent(w http.ResponseWriter, r *http.Request, rc io.ReadCloser, name, contentType string, size int64, attachment bool) {
	defer rc.Close()

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		logger.Log.Warn().Err(err).Str("path", r.URL.Path).Msg("[Handler] передача содержимого прервана")
	}
}
