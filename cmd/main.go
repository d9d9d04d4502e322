package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	httpSwagger "github.com/swaggo/http-swagger"

	"storage-manager/config"
	_ "storage-manager/docs"
	"storage-manager/internal/app"
	"storage-manager/internal/handler"
	"storage-manager/internal/logger"
	"storage-manager/internal/security"
	"storage-manager/internal/service"
)

// @title storage-manager
// @version 1.0
// @description REST API файлового хранилища: папки, корзина, квоты и публичные ссылки

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags := pflag.NewFlagSet("storage-manager", pflag.ExitOnError)
	configPath := flags.String("config", "", "путь к файлу конфигурации (по умолчанию ./config.yaml)")
	flags.String("server.addr", "", "адрес HTTP-сервера")
	flags.String("logging.level", "", "уровень логирования")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(*configPath, flags)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("[Main] ошибка загрузки конфигурации")
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		logger.Log.Fatal().Err(err).Msg("[Main] ошибка настройки логирования")
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("[Main] ошибка инициализации")
	}
	defer a.Close()

	srv, router := config.SetupServer(cfg.Server.Addr)
	jwtService := security.NewJWTService(&cfg.JWT)

	fileHandler := handler.NewFileHandler(a.Files, cfg.Server.MaxUploadBytes, cfg.Storage.PresignTTL)
	folderHandler := handler.NewFolderHandler(a.Folders)
	trashHandler := handler.NewTrashHandler(a.Lifecycle, cfg.Retention.Period())
	shareHandler := handler.NewShareHandler(a.Shares)
	profileHandler := handler.NewProfileHandler(a.Profiles, a.Quota)
	duplicateHandler := handler.NewDuplicateHandler(a.Maintenance)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(handler.RequestLogger(a.Metrics))
	router.Use(middleware.Recoverer)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	if a.Metrics != nil {
		router.Handle(cfg.Metrics.Path, a.Metrics.Handler())
	}

	setupPublicRoutes(router, shareHandler)
	router.Route("/api", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService, a.Profiles))

		setupFileRoutes(r, fileHandler, trashHandler, shareHandler)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
			setupFolderRoutes(r, folderHandler, trashHandler)
			setupTrashRoutes(r, trashHandler)
			setupLinkRoutes(r, shareHandler)
			setupProfileRoutes(r, profileHandler, duplicateHandler)
		})
	})

	if cfg.Retention.SweepEnabled {
		a.Sweeper.Start()
	}

	runServer(ctx, srv, a.Sweeper, cfg.Server.ShutdownTimeout)
}

func setupPublicRoutes(r chi.Router, h *handler.ShareHandler) {
	r.Get("/s/{token}", h.DownloadShared)
	r.Head("/s/{token}", h.CheckShared)
}

// загрузка и скачивание идут без таймаута запроса
func setupFileRoutes(r chi.Router, h *handler.FileHandler, trash *handler.TrashHandler, share *handler.ShareHandler) {
	r.Route("/files", func(r chi.Router) {
		r.Get("/", h.ListFiles)
		r.Post("/", h.UploadFile)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetFile)
			r.Patch("/", h.UpdateFile)
			r.Delete("/", trash.TrashFile)
			r.Put("/folder", h.MoveFile)
			r.Get("/content", h.DownloadFile)
			r.Head("/content", h.DownloadFileHead)
			r.Get("/preview", h.PreviewFile)
			r.Get("/url", h.GetDownloadURL)
			r.Post("/restore", trash.RestoreFile)
			r.Delete("/permanent", trash.PurgeFile)
			r.Post("/links", share.IssueLink)
		})
	})

	r.Get("/search", h.Search)
	r.Get("/tags", h.TagSuggestions)
}

func setupFolderRoutes(r chi.Router, h *handler.FolderHandler, trash *handler.TrashHandler) {
	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetFolder)
			r.Patch("/", h.RenameFolder)
			r.Delete("/", trash.TrashFolder)
			r.Put("/parent", h.MoveFolder)
			r.Post("/restore", trash.RestoreFolder)
			r.Delete("/permanent", trash.PurgeFolder)
		})
	})
}

func setupTrashRoutes(r chi.Router, h *handler.TrashHandler) {
	r.Route("/trash", func(r chi.Router) {
		r.Get("/", h.ListTrash)
		r.Delete("/", h.EmptyTrash)
		r.Post("/restore", h.RestoreFiles)
		r.Post("/purge", h.PurgeFiles)
	})
}

func setupLinkRoutes(r chi.Router, h *handler.ShareHandler) {
	r.Route("/links", func(r chi.Router) {
		r.Get("/", h.ListLinks)
		r.Patch("/{id}", h.SetLinkActive)
		r.Delete("/{id}", h.DeleteLink)
	})
}

func setupProfileRoutes(r chi.Router, h *handler.ProfileHandler, duplicates *handler.DuplicateHandler) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Patch("/", h.UpdateProfile)
		r.Get("/avatar", h.GetAvatar)
		r.Put("/avatar", h.UploadAvatar)
	})
	r.Get("/stats", h.GetStats)

	r.Get("/duplicates", duplicates.FindDuplicates)
	r.Delete("/duplicates/{id}", duplicates.DeleteDuplicate)
}

func runServer(ctx context.Context, server *http.Server, sweeper *service.Sweeper, shutdownTimeout time.Duration) {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", server.Addr).Msg("[Main] сервер запущен")
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error().Err(err).Msg("[Main] ошибка работы сервера")
		}
	case sig := <-signalChannel:
		logger.Log.Info().Str("signal", sig.String()).Msg("[Main] получен сигнал остановки сервера")
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("[Main] ошибка при остановке сервера")
	} else {
		logger.Log.Info().Msg("[Main] сервер успешно остановлен")
	}

	if err := sweeper.Stop(shutDownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("[Main] очистка корзины не завершилась вовремя")
	}
}
