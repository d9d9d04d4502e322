package service

import (
	"context"
	"sync"
	"time"

	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
	"storage-manager/internal/model"
)

const (
	defaultSweepInterval = time.Hour
	sweepRunTimeout      = 10 * time.Minute
)

// ExpiredSweeper : окончательное удаление просроченного содержимого корзины
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context, retention time.Duration, dryRun bool) (*model.RetentionReport, error)
}

// Sweeper : фоновая очистка корзины по сроку хранения.
// Start запускает воркер, Stop дожидается завершения текущего прохода.
type Sweeper struct {
	target    ExpiredSweeper
	interval  time.Duration
	retention time.Duration
	metrics   *metrics.Metrics

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewSweeper(target ExpiredSweeper, interval, retention time.Duration, m *metrics.Metrics) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{
		target:    target,
		interval:  interval,
		retention: retention,
		metrics:   m,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()

		logger.Log.Info().Dur("interval", s.interval).Dur("retention", s.retention).Msg("[Sweeper] запуск очистки корзины")
		go s.worker()
	})
}

// Stop : повторный вызов и вызов без Start безопасны
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.stopOnce.Do(func() { close(s.stopCh) })

	select {
	case <-s.doneCh:
		logger.Log.Info().Msg("[Sweeper] остановлен")
		return nil
	case <-ctx.Done():
		logger.Log.Warn().Msg("[Sweeper] таймаут остановки")
		return ctx.Err()
	}
}

// RunNow : один проход синхронно
func (s *Sweeper) RunNow(ctx context.Context) (*model.RetentionReport, error) {
	report, err := s.target.SweepExpired(ctx, s.retention, false)
	if err != nil {
		s.metrics.Sweep("error")
		return nil, err
	}
	s.metrics.Sweep("ok")
	return report, nil
}

func (s *Sweeper) worker() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), sweepRunTimeout)
			report, err := s.RunNow(ctx)
			cancel()

			if err != nil {
				logger.Log.Error().Err(err).Msg("[Sweeper] проход завершился ошибкой")
				continue
			}
			logger.Log.Info().Int("files", report.PurgedFiles).Int("folders", report.PurgedFolders).
				Int("failed", len(report.Failures)).Msg("[Sweeper] проход завершён")

		case <-s.stopCh:
			return
		}
	}
}
