package storage

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"storage-manager/config"
	"storage-manager/internal/logger"
	"storage-manager/internal/ports"
)

// NewResolverFromConfig : создаёт хранилище для каждой локации по её типу
func NewResolverFromConfig(ctx context.Context, cfg *config.StorageConfig) (*Resolver, error) {
	stores := make(map[string]ports.ContentStore, len(cfg.Locations))
	for key, location := range cfg.Locations {
		store, err := createStore(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("[Storage] локация %q: %w", key, err)
		}
		stores[key] = store
		logger.Log.Info().Str("location", key).Str("type", location.Type).Msg("[Storage] локация подключена")
	}
	return NewResolver(cfg.DefaultLocation, stores)
}

func createStore(ctx context.Context, location config.LocationConfig) (ports.ContentStore, error) {
	switch location.Type {
	case "filesystem":
		return createFilesystemStore(location)
	case "s3":
		return createS3Store(ctx, location.S3)
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %q", location.Type)
	}
}

func createFilesystemStore(location config.LocationConfig) (ports.ContentStore, error) {
	type filesystemOptions struct {
		Path string `mapstructure:"path"`
	}

	var opts filesystemOptions
	if err := mapstructure.Decode(location.Filesystem, &opts); err != nil {
		return nil, fmt.Errorf("ошибка разбора параметров filesystem: %w", err)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("filesystem: не указан path")
	}

	return NewFilesystemStore(opts.Path, location.URLPrefix)
}

func createS3Store(ctx context.Context, options map[string]any) (ports.ContentStore, error) {
	var opts S3Config
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("ошибка разбора параметров s3: %w", err)
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	return NewS3Store(ctx, opts)
}
