package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"storage-manager/config"
	"storage-manager/internal/app"
	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/service"
)

const usage = `Использование: maintenance <команда> [флаги]

Команды:
  recompute-hashes       пересчитать SHA-256 (--force для всех файлов)
  regenerate-thumbnails  перестроить превью изображений (--force для всех)
  purge-trash            удалить просроченное из корзины (--days N, --dry-run)
  find-duplicates        найти файлы с одинаковым содержимым (--owner UUID)

Общие флаги:
  --config PATH          файл конфигурации
  --format text|yaml|json
`

var errUsage = errors.New("неверные аргументы")

type options struct {
	configPath string
	format     string
	force      bool
	dryRun     bool
	days       int
	owner      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		logger.Log.Error().Err(err).Msg("[Maintenance] задача завершилась с ошибкой")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	command := args[0]

	opts, err := parseFlags(command, args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath, nil)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, "stderr"); err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := execute(ctx, a.Maintenance, command, opts)
	if err != nil {
		return err
	}
	return render(out, opts.format, report)
}

func parseFlags(command string, args []string) (*options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&opts.configPath, "config", "", "файл конфигурации")
	flags.StringVar(&opts.format, "format", "text", "формат отчёта")

	switch command {
	case service.TaskRecomputeHashes, service.TaskRegenerateThumbnails:
		flags.BoolVar(&opts.force, "force", false, "обработать все файлы")
	case service.TaskPurgeTrash:
		flags.IntVar(&opts.days, "days", 0, "срок хранения в днях, 0 - из конфигурации")
		flags.BoolVar(&opts.dryRun, "dry-run", false, "только показать, что будет удалено")
	case service.TaskFindDuplicates:
		flags.StringVar(&opts.owner, "owner", "", "UUID владельца, пусто - все")
	default:
		return nil, fmt.Errorf("%w: неизвестная команда %q", errUsage, command)
	}

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	switch opts.format {
	case "text", "yaml", "json":
	default:
		return nil, fmt.Errorf("%w: неизвестный формат %q", errUsage, opts.format)
	}
	if opts.days < 0 {
		return nil, fmt.Errorf("%w: --days не может быть отрицательным", errUsage)
	}
	return opts, nil
}

// Maintainer : задачи обслуживания, которые умеет запускать утилита
type Maintainer interface {
	RecomputeHashes(ctx context.Context, force bool) (*model.BatchReport, error)
	RegenerateThumbnails(ctx context.Context, force bool) (*model.BatchReport, error)
	PurgeTrash(ctx context.Context, days int, dryRun bool) (*model.RetentionReport, error)
	FindDuplicates(ctx context.Context, ownerID string) (*model.DuplicateReport, error)
}

func execute(ctx context.Context, m Maintainer, command string, opts *options) (any, error) {
	switch command {
	case service.TaskRecomputeHashes:
		return m.RecomputeHashes(ctx, opts.force)
	case service.TaskRegenerateThumbnails:
		return m.RegenerateThumbnails(ctx, opts.force)
	case service.TaskPurgeTrash:
		return m.PurgeTrash(ctx, opts.days, opts.dryRun)
	case service.TaskFindDuplicates:
		return m.FindDuplicates(ctx, opts.owner)
	}
	return nil, fmt.Errorf("%w: неизвестная команда %q", errUsage, command)
}

func render(out io.Writer, format string, report any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	switch r := report.(type) {
	case *model.BatchReport:
		fmt.Fprintf(out, "%s: успешно %d, пропущено %d, ошибок %d\n", r.Task, r.Succeeded, r.Skipped, r.Failed)
		for _, f := range r.Failures {
			fmt.Fprintf(out, "  %s: %s\n", f.ID, f.Error)
		}
	case *model.RetentionReport:
		if r.DryRun {
			fmt.Fprintf(out, "будет удалено: файлов %d, папок %d, %s (старше %s)\n",
				r.FileCount, r.FolderCount, model.HumanSize(r.TotalBytes), r.Cutoff.Format("2006-01-02 15:04"))
			return nil
		}
		fmt.Fprintf(out, "удалено: файлов %d, папок %d, освобождено %s\n",
			r.PurgedFiles, r.PurgedFolders, model.HumanSize(r.TotalBytes))
		for _, f := range r.Failures {
			fmt.Fprintf(out, "  %s: %s\n", f.ID, f.Error)
		}
	case *model.DuplicateReport:
		fmt.Fprintf(out, "групп дубликатов: %d, лишний объём %s\n", len(r.Groups), model.HumanSize(r.TotalWasted))
		for _, g := range r.Groups {
			fmt.Fprintf(out, "%s (%s)\n", g.ContentHash, model.HumanSize(g.WastedBytes))
			fmt.Fprintf(out, "  оригинал: %s %s\n", g.Original.ID, g.Original.Name)
			for _, d := range g.Duplicates {
				fmt.Fprintf(out, "  копия:    %s %s\n", d.ID, d.Name)
			}
		}
	default:
		return fmt.Errorf("неизвестный тип отчёта %T", report)
	}
	return nil
}
