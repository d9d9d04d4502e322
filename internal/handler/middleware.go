package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
)

// RequestLogger : пишет метод, маршрут, статус и длительность каждого запроса
func RequestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			// неизвестные пути сводятся к одной метке
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.HTTPRequest(r.Method, route, status, elapsed)

			event := logger.Log.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Log.Error()
			} else if status >= http.StatusBadRequest {
				event = logger.Log.Warn()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", elapsed).
				Msg("[HTTP] запрос обработан")
		})
	}
}
