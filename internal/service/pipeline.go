package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"storage-manager/internal/hasher"
	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
)

// ErrStepSkipped : шаг неприменим к файлу (например, миниатюра для не-изображения)
var ErrStepSkipped = errors.New("шаг пропущен")

// Step : шаг обработки после создания файла
type Step interface {
	Name() string
	Run(ctx context.Context, file *model.File) error
}

type StepResult struct {
	Step    string
	Err     error
	Skipped bool
}

// Pipeline : последовательность шагов, ошибка одного шага не останавливает остальные
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Run(ctx context.Context, file *model.File) []StepResult {
	if p == nil {
		return nil
	}
	results := make([]StepResult, 0, len(p.steps))
	for _, step := range p.steps {
		err := step.Run(ctx, file)
		result := StepResult{Step: step.Name()}

		switch {
		case errors.Is(err, ErrStepSkipped):
			result.Skipped = true
			logger.Log.Debug().Str("step", step.Name()).Str("file", file.ID).Msg("[Pipeline] шаг пропущен")
		case err != nil:
			result.Err = err
			logger.Log.Warn().Err(err).Str("step", step.Name()).Str("file", file.ID).Msg("[Pipeline] шаг завершился ошибкой")
		default:
			logger.Log.Debug().Str("step", step.Name()).Str("file", file.ID).Msg("[Pipeline] шаг выполнен")
		}
		results = append(results, result)
	}
	return results
}

// HashStep : считает SHA-256 содержимого и сохраняет его в записи файла
type HashStep struct {
	tx       ports.Transactor
	files    ports.FileRepository
	cache    ports.CacheRepository
	resolver ports.LocationResolver
	hasher   *hasher.Hasher
}

func NewHashStep(tx ports.Transactor, files ports.FileRepository, cache ports.CacheRepository, resolver ports.LocationResolver, h *hasher.Hasher) *HashStep {
	return &HashStep{tx: tx, files: files, cache: cache, resolver: resolver, hasher: h}
}

func (s *HashStep) Name() string { return "hash" }

func (s *HashStep) Run(ctx context.Context, file *model.File) error {
	store, _, err := s.resolver.Resolve(file.LocationKey)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrUnreadableContent, err)
	}

	sum, err := s.hasher.HashContent(ctx, store, file.ContentRef)
	if err != nil {
		return err
	}

	if err := s.files.UpdateHash(ctx, s.tx.Executor(), file.ID, &sum); err != nil {
		return fmt.Errorf("[HashStep] не удалось сохранить хеш: %w", err)
	}
	invalidate(ctx, s.cache, file.ID)
	file.ContentHash = &sum
	return nil
}

// ThumbnailStep : строит JPEG-превью для изображений, перезаписывая прежнее
type ThumbnailStep struct {
	tx        ports.Transactor
	files     ports.FileRepository
	cache     ports.CacheRepository
	resolver  ports.LocationResolver
	generator ports.ThumbnailGenerator
}

func NewThumbnailStep(tx ports.Transactor, files ports.FileRepository, cache ports.CacheRepository, resolver ports.LocationResolver, gen ports.ThumbnailGenerator) *ThumbnailStep {
	return &ThumbnailStep{tx: tx, files: files, cache: cache, resolver: resolver, generator: gen}
}

func (s *ThumbnailStep) Name() string { return "thumbnail" }

func (s *ThumbnailStep) Run(ctx context.Context, file *model.File) error {
	if !s.generator.Supports(file.MimeType) {
		return ErrStepSkipped
	}

	store, _, err := s.resolver.Resolve(file.LocationKey)
	if err != nil {
		return err
	}

	src, err := store.Open(ctx, file.ContentRef)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrUnreadableContent, err)
	}
	defer src.Close()

	buf := &bytes.Buffer{}
	if err := s.generator.Generate(src, buf); err != nil {
		return err
	}

	ref := s.generator.Ref(file.ID)
	if _, err := store.Write(ctx, ref, buf); err != nil {
		return fmt.Errorf("[ThumbnailStep] не удалось сохранить миниатюру: %w", err)
	}

	if err := s.files.UpdateThumbnail(ctx, s.tx.Executor(), file.ID, &ref); err != nil {
		return fmt.Errorf("[ThumbnailStep] не удалось обновить запись: %w", err)
	}
	invalidate(ctx, s.cache, file.ID)
	file.ThumbnailRef = &ref
	return nil
}
