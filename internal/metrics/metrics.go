package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics : счётчики хранилища. Методы безопасны для nil-получателя,
// поэтому сервисы работают и без включённых метрик.
type Metrics struct {
	registry        *prometheus.Registry
	uploads         *prometheus.CounterVec
	uploadedBytes   prometheus.Counter
	quotaRejections prometheus.Counter
	shareDownloads  *prometheus.CounterVec
	purges          *prometheus.CounterVec
	maintenance     *prometheus.CounterVec
	sweeps          *prometheus.CounterVec
	httpRequests    *prometheus.HistogramVec
}

func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_uploads_total",
				Help: "Загрузки файлов по результату",
			},
			[]string{"location", "result"},
		),
		uploadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storage_uploaded_bytes_total",
				Help: "Объём успешно загруженных байтов",
			},
		),
		quotaRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storage_quota_rejections_total",
				Help: "Загрузки, отклонённые из-за квоты",
			},
		),
		shareDownloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_share_downloads_total",
				Help: "Скачивания по публичным ссылкам по исходу",
			},
			[]string{"outcome"},
		),
		purges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_purged_total",
				Help: "Окончательно удалённые сущности",
			},
			[]string{"kind"},
		),
		maintenance: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_maintenance_items_total",
				Help: "Элементы, обработанные задачами обслуживания",
			},
			[]string{"task", "result"},
		),
		sweeps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_retention_sweeps_total",
				Help: "Запуски очистки корзины по сроку хранения",
			},
			[]string{"result"},
		),
		httpRequests: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storage_http_request_duration_seconds",
				Help:    "Длительность HTTP-запросов по маршруту",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) UploadSucceeded(location string, size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(location, "ok").Inc()
	m.uploadedBytes.Add(float64(size))
}

func (m *Metrics) UploadFailed(location string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(location, "error").Inc()
}

func (m *Metrics) QuotaRejected() {
	if m == nil {
		return
	}
	m.quotaRejections.Inc()
}

// ShareDownload : outcome = ok | inactive | expired | exhausted | not_found
func (m *Metrics) ShareDownload(outcome string) {
	if m == nil {
		return
	}
	m.shareDownloads.WithLabelValues(outcome).Inc()
}

// Purged : kind = file | folder
func (m *Metrics) Purged(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.purges.WithLabelValues(kind).Add(float64(n))
}

// MaintenanceItem : result = ok | skipped | failed
func (m *Metrics) MaintenanceItem(task, result string) {
	if m == nil {
		return
	}
	m.maintenance.WithLabelValues(task, result).Inc()
}

func (m *Metrics) Sweep(result string) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(result).Inc()
}

// HTTPRequest : route = шаблон chi, а не фактический путь
func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
