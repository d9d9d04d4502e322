package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "STORAGE"

const (
	DefaultLocationKey    = "disk1"
	DefaultCapacityBytes  = int64(100) << 30
	DefaultRetentionDays  = 30
	DefaultHashChunkSize  = 4096
	DefaultThumbnailSize  = 300
	DefaultThumbnailScale = 85
	DefaultThumbnailMaxPx = 50_000_000
)

// LoadConfig : читает конфигурацию из файла, переменных окружения STORAGE_* и флагов.
// Порядок приоритета: флаги, окружение, файл, значения по умолчанию.
func LoadConfig(path string, flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	setupViper(v, path)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("ошибка привязки флагов: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("конфигурация некорректна: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// секреты обычно приходят только из окружения, AutomaticEnv их не видит без ключа в файле
	for _, key := range []string{"database.dsn", "jwt.secret_key", "redis.password", "redis.addr"} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		return
	}
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// ApplyDefaults : заполняет пропущенные значения
func ApplyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 512 << 20
	}

	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 10 * time.Minute
	}

	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storage-manager"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Storage.DefaultLocation == "" {
		cfg.Storage.DefaultLocation = DefaultLocationKey
	}
	if len(cfg.Storage.Locations) == 0 {
		cfg.Storage.Locations = map[string]LocationConfig{
			DefaultLocationKey: {
				Type:       "filesystem",
				URLPrefix:  "/media/",
				Filesystem: map[string]any{"path": "./media"},
			},
		}
	}
	if cfg.Storage.PresignTTL == 0 {
		cfg.Storage.PresignTTL = 15 * time.Minute
	}

	if cfg.Quota.TotalCapacityBytes == 0 {
		cfg.Quota.TotalCapacityBytes = DefaultCapacityBytes
	}

	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.SweepInterval == 0 {
		cfg.Retention.SweepInterval = 24 * time.Hour
	}

	if cfg.Hashing.ChunkSize == 0 {
		cfg.Hashing.ChunkSize = DefaultHashChunkSize
	}

	if cfg.Thumbnails.MaxWidth == 0 {
		cfg.Thumbnails.MaxWidth = DefaultThumbnailSize
	}
	if cfg.Thumbnails.MaxHeight == 0 {
		cfg.Thumbnails.MaxHeight = DefaultThumbnailSize
	}
	if cfg.Thumbnails.Quality == 0 {
		cfg.Thumbnails.Quality = DefaultThumbnailScale
	}
	if cfg.Thumbnails.MaxPixels == 0 {
		cfg.Thumbnails.MaxPixels = DefaultThumbnailMaxPx
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
