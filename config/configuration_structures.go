package config

import "time"

type AppConfig struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Quota      QuotaConfig      `mapstructure:"quota"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Hashing    HashingConfig    `mapstructure:"hashing"`
	Thumbnails ThumbnailsConfig `mapstructure:"thumbnails"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	// MaxUploadBytes : предел тела multipart-запроса
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" validate:"required"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl"`
	Enabled  bool          `mapstructure:"enabled"`
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	Issuer    string `mapstructure:"issuer"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	Output string `mapstructure:"output" validate:"required"`
}

// StorageConfig : неизменяемая карта локаций хранения
type StorageConfig struct {
	DefaultLocation string                    `mapstructure:"default_location" validate:"required"`
	Locations       map[string]LocationConfig `mapstructure:"locations" validate:"required,min=1,dive"`
	// PresignTTL : время жизни ссылок на скачивание из S3
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

// LocationConfig : тип и параметры конкретного бэкенда, разбираются фабрикой через mapstructure
type LocationConfig struct {
	Type       string         `mapstructure:"type" validate:"required,oneof=filesystem s3"`
	URLPrefix  string         `mapstructure:"url_prefix"`
	Filesystem map[string]any `mapstructure:"filesystem"`
	S3         map[string]any `mapstructure:"s3"`
}

type QuotaConfig struct {
	TotalCapacityBytes int64 `mapstructure:"total_capacity_bytes" validate:"gt=0"`
}

type RetentionConfig struct {
	Days          int           `mapstructure:"days" validate:"gt=0"`
	SweepEnabled  bool          `mapstructure:"sweep_enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func (c RetentionConfig) Period() time.Duration {
	return time.Duration(c.Days) * 24 * time.Hour
}

type HashingConfig struct {
	ChunkSize int `mapstructure:"chunk_size" validate:"gt=0"`
}

type ThumbnailsConfig struct {
	MaxWidth  int  `mapstructure:"max_width" validate:"gt=0"`
	MaxHeight int  `mapstructure:"max_height" validate:"gt=0"`
	Quality   int  `mapstructure:"quality" validate:"gte=1,lte=100"`
	Enabled   bool `mapstructure:"enabled"`
	// MaxPixels : более крупные изображения остаются без миниатюры
	MaxPixels int `mapstructure:"max_pixels" validate:"gt=0"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
