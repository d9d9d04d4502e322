package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log : глобальный логгер приложения
var Log = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init : настраивает уровень, формат (text|json) и вывод (stdout|stderr|путь к файлу)
func Init(level, format, output string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var writer io.Writer
	switch strings.ToLower(output) {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writer = file
	}

	if strings.ToLower(format) != "json" {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	Log = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	return nil
}
