package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"storage-manager/internal/logger"
)

// LogError : пишет ошибку в лог и возвращает её обёрнутой в message
func LogError(message string, err error) error {
	logger.Log.Error().Err(err).Msg(message)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		logger.Log.Error().Err(err).Msg("[util] ошибка записи ответа")
	}
}

// WriteJSON : успешный JSON-ответ
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Error().Err(err).Msg("[util] ошибка записи ответа")
	}
}
