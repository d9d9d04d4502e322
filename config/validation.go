package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate : проверка по тегам плюс правила, которые тегами не выразить
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if _, ok := cfg.Storage.Locations[cfg.Storage.DefaultLocation]; !ok {
		return fmt.Errorf("storage.default_location: локация %q не описана в storage.locations", cfg.Storage.DefaultLocation)
	}

	if cfg.Retention.SweepEnabled && cfg.Retention.SweepInterval <= 0 {
		return fmt.Errorf("retention.sweep_interval: должен быть больше нуля")
	}

	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		return fmt.Errorf("redis.addr: обязателен при redis.enabled=true")
	}

	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: не пройдена проверка '%s' (значение: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
