package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storage-manager/config"
	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/util"
)

// fileKeyPrefix : версия в ключе сбрасывает кэш при смене формата model.File
const fileKeyPrefix = "storage:file:v1:"

// CacheRepository : метаданные файлов в Redis с общим TTL.
// Промах кэша и битая запись одинаково возвращают (nil, nil).
type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{client: rdb, ttl: ttl}
}

// SetFile : файл из корзины не кэшируется, прежняя запись снимается
func (r *CacheRepository) SetFile(ctx context.Context, file *model.File) error {
	if file.IsDeleted {
		return r.DeleteFile(ctx, file.ID)
	}

	payload, err := json.Marshal(file)
	if err != nil {
		return util.LogError("[CacheRepo] не удалось закодировать файл", err)
	}
	if err := r.client.Client.Set(ctx, fileKey(file.ID), payload, r.ttl).Err(); err != nil {
		return util.LogError("[CacheRepo] Redis отклонил запись", err)
	}
	return nil
}

func (r *CacheRepository) GetFile(ctx context.Context, id string) (*model.File, error) {
	payload, err := r.client.Client.Get(ctx, fileKey(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, util.LogError("[CacheRepo] Redis недоступен на чтение", err)
	}

	var file model.File
	if err := json.Unmarshal(payload, &file); err != nil {
		logger.Log.Warn().Err(err).Str("file", id).Msg("[CacheRepo] битая запись, удаляем")
		_ = r.client.Client.Del(ctx, fileKey(id)).Err()
		return nil, nil
	}
	return &file, nil
}

func (r *CacheRepository) DeleteFile(ctx context.Context, id string) error {
	if err := r.client.Client.Del(ctx, fileKey(id)).Err(); err != nil {
		return util.LogError("[CacheRepo] не удалось снять запись", err)
	}
	return nil
}

func fileKey(id string) string {
	return fmt.Sprintf("%s%s", fileKeyPrefix, id)
}

// NoopCache : используется, когда redis.enabled = false
type NoopCache struct{}

func (NoopCache) SetFile(context.Context, *model.File) error           { return nil }
func (NoopCache) GetFile(context.Context, string) (*model.File, error) { return nil, nil }
func (NoopCache) DeleteFile(context.Context, string) error             { return nil }
