package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"storage-manager/config"
	"storage-manager/internal/hasher"
	"storage-manager/internal/logger"
	"storage-manager/internal/metrics"
	"storage-manager/internal/ports"
	"storage-manager/internal/repository"
	"storage-manager/internal/service"
	"storage-manager/internal/storage"
	"storage-manager/internal/thumbnail"
)

// App : собранные зависимости, общие для HTTP-сервера и утилиты обслуживания
type App struct {
	Config   *config.AppConfig
	DB       *config.Database
	Redis    *config.RedisClient
	Resolver *storage.Resolver
	Metrics  *metrics.Metrics

	Files       *service.FileService
	Folders     *service.FolderService
	Lifecycle   *service.LifecycleService
	Shares      *service.ShareService
	Profiles    *service.ProfileService
	Quota       *service.QuotaService
	Maintenance *service.MaintenanceService
	Sweeper     *service.Sweeper
}

// New : подключается к БД и Redis, строит резолвер локаций и сервисы.
// При ошибке уже открытые соединения закрываются.
func New(ctx context.Context, cfg *config.AppConfig) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.DB, err = config.SetupDatabase(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	var cache ports.CacheRepository = repository.NoopCache{}
	if cfg.Redis.Enabled {
		app.Redis, err = config.SetupRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}
		cache = repository.NewCacheRepository(app.Redis, cfg.Redis.TTL)
	}

	app.Resolver, err = storage.NewResolverFromConfig(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилищ: %w", err)
	}

	if cfg.Metrics.Enabled {
		app.Metrics = metrics.New(prometheus.NewRegistry())
	}

	files := repository.NewFileRepository(app.DB)
	folders := repository.NewFolderRepository(app.DB)
	users := repository.NewUserRepository(app.DB)
	profiles := repository.NewProfileRepository(app.DB)
	links := repository.NewSharedLinkRepository(app.DB)

	hashStep := service.NewHashStep(app.DB, files, cache, app.Resolver, hasher.New(cfg.Hashing.ChunkSize))
	thumbStep := service.NewThumbnailStep(app.DB, files, cache, app.Resolver,
		thumbnail.New(cfg.Thumbnails.MaxWidth, cfg.Thumbnails.MaxHeight, cfg.Thumbnails.Quality).
			WithMaxPixels(cfg.Thumbnails.MaxPixels))

	steps := []service.Step{hashStep}
	if cfg.Thumbnails.Enabled {
		steps = append(steps, thumbStep)
	}

	app.Quota = service.NewQuotaService(app.DB, files, users, cfg.Quota.TotalCapacityBytes, app.Metrics)
	app.Files = service.NewFileService(app.DB, files, folders, cache, app.Resolver, app.Quota,
		service.NewPipeline(steps...), app.Metrics, cfg.Storage.PresignTTL)
	app.Folders = service.NewFolderService(app.DB, folders)
	app.Lifecycle = service.NewLifecycleService(app.DB, files, folders, cache, app.Resolver, app.Metrics, cfg.Retention.Period())
	app.Shares = service.NewShareService(app.DB, links, files, app.Resolver, app.Metrics)
	app.Profiles = service.NewProfileService(app.DB, users, profiles, app.Resolver)
	app.Maintenance = service.NewMaintenanceService(app.DB, files, app.Lifecycle, hashStep, thumbStep, app.Metrics)
	app.Sweeper = service.NewSweeper(app.Lifecycle, cfg.Retention.SweepInterval, cfg.Retention.Period(), app.Metrics)

	logger.Log.Info().Strs("locations", app.Resolver.Keys()).Str("default", app.Resolver.DefaultKey()).
		Bool("redis", cfg.Redis.Enabled).Bool("thumbnails", cfg.Thumbnails.Enabled).Msg("[App] зависимости собраны")

	return app, nil
}

// Close : закрывает соединения, ошибки только логируются
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("[App] ошибка при закрытии Redis")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("[App] ошибка при закрытии БД")
		}
	}
}
