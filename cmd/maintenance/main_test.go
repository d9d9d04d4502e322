package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"storage-manager/internal/model"
)

type fakeMaintainer struct {
	force  bool
	days   int
	dryRun bool
	owner  string
}

func (f *fakeMaintainer) RecomputeHashes(_ context.Context, force bool) (*model.BatchReport, error) {
	f.force = force
	report := &model.BatchReport{Task: "recompute-hashes", Succeeded: 2, Skipped: 1}
	report.Fail("f3", errors.New("содержимое не найдено"))
	return report, nil
}

func (f *fakeMaintainer) RegenerateThumbnails(_ context.Context, force bool) (*model.BatchReport, error) {
	f.force = force
	return &model.BatchReport{Task: "regenerate-thumbnails"}, nil
}

func (f *fakeMaintainer) PurgeTrash(_ context.Context, days int, dryRun bool) (*model.RetentionReport, error) {
	f.days, f.dryRun = days, dryRun
	return &model.RetentionReport{
		Cutoff:      time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		DryRun:      dryRun,
		FileCount:   3,
		FolderCount: 1,
		TotalBytes:  2048,
	}, nil
}

func (f *fakeMaintainer) FindDuplicates(_ context.Context, ownerID string) (*model.DuplicateReport, error) {
	f.owner = ownerID
	return &model.DuplicateReport{}, nil
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags("purge-trash", []string{"--days", "7", "--dry-run", "--format", "yaml"})
	require.NoError(t, err)
	assert.Equal(t, 7, opts.days)
	assert.True(t, opts.dryRun)
	assert.Equal(t, "yaml", opts.format)

	opts, err = parseFlags("recompute-hashes", []string{"--force"})
	require.NoError(t, err)
	assert.True(t, opts.force)
	assert.Equal(t, "text", opts.format)
}

func TestParseFlagsRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"unknown command":    {"defrag"},
		"flag of other task": {"recompute-hashes", "--days", "3"},
		"negative days":      {"purge-trash", "--days", "-1"},
		"unsupported format": {"find-duplicates", "--format", "xml"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseFlags(args[0], args[1:])
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestRunWithoutCommand(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUsage)
}

func TestExecutePassesOptions(t *testing.T) {
	m := &fakeMaintainer{}

	_, err := execute(context.Background(), m, "purge-trash", &options{days: 10, dryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 10, m.days)
	assert.True(t, m.dryRun)

	_, err = execute(context.Background(), m, "find-duplicates", &options{owner: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", m.owner)

	_, err = execute(context.Background(), m, "regenerate-thumbnails", &options{force: true})
	require.NoError(t, err)
	assert.True(t, m.force)
}

func TestRenderText(t *testing.T) {
	m := &fakeMaintainer{}
	report, err := execute(context.Background(), m, "recompute-hashes", &options{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, render(&out, "text", report))
	assert.Contains(t, out.String(), "recompute-hashes: успешно 2, пропущено 1, ошибок 1")
	assert.Contains(t, out.String(), "f3: содержимое не найдено")

	out.Reset()
	dry, _ := m.PurgeTrash(context.Background(), 0, true)
	require.NoError(t, render(&out, "text", dry))
	assert.Contains(t, out.String(), "будет удалено: файлов 3, папок 1")
}

func TestRenderYAML(t *testing.T) {
	m := &fakeMaintainer{}
	report, _ := m.PurgeTrash(context.Background(), 5, true)

	var out bytes.Buffer
	require.NoError(t, render(&out, "yaml", report))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, true, decoded["dry_run"])
	assert.Equal(t, 3, decoded["file_count"])
}
