package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeHashes(t *testing.T) {
	env := newTestEnv(t)
	env.addUsers("u1")
	ctx := context.Background()

	a := env.upload(t, "u1", nil, "a.txt", "alpha")
	b := env.upload(t, "u1", nil, "b.txt", "beta")
	lost := env.upload(t, "u1", nil, "lost.txt", "gone")

	env.db.mu.Lock()
	env.db.files[a.ID].ContentHash = nil
	env.db.files[lost.ID].ContentHash = nil
	env.db.mu.Unlock()
	require.NoError(t, env.store.Delete(ctx, lost.ContentRef))

	report, err := env.maint.RecomputeHashes(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, TaskRecomputeHashes, report.Task)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, lost.ID, report.Failures[0].ID)
	assert.Equal(t, sha("alpha"), *env.file(a.ID).ContentHash)
	assert.False(t, env.file(lost.ID).HasHash())

	report, err = env.maint.RecomputeHashes(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, sha("beta"), *env.file(b.ID).ContentHash)
}

func TestMaintenanceRefreshesCachedFile(t *testing.T) {
	env := newTestEnv(t)
	env.addUsers("u1")
	ctx := context.Background()

	doc := env.upload(t, "u1", nil, "doc.txt", "alpha")
	pic := env.upload(t, "u1", nil, "pic.png", string(pngBytes(t, 30, 30)))

	env.db.mu.Lock()
	env.db.files[doc.ID].ContentHash = nil
	env.db.files[pic.ID].ThumbnailRef = nil
	env.db.mu.Unlock()
	require.NoError(t, env.cache.DeleteFile(ctx, doc.ID))
	require.NoError(t, env.cache.DeleteFile(ctx, pic.ID))
	stale, err := env.files.GetFile(ctx, "u1", doc.ID)
	require.NoError(t, err)
	require.False(t, stale.HasHash())
	stalePic, err := env.files.GetFile(ctx, "u1", pic.ID)
	require.NoError(t, err)
	require.False(t, stalePic.HasThumbnail())
	require.True(t, env.cache.has(doc.ID))

	_, err = env.maint.RecomputeHashes(ctx, false)
	require.NoError(t, err)
	assert.False(t, env.cache.has(doc.ID))
	fresh, err := env.files.GetFile(ctx, "u1", doc.ID)
	require.NoError(t, err)
	require.True(t, fresh.HasHash())
	assert.Equal(t, sha("alpha"), *fresh.ContentHash)

	_, err = env.maint.RegenerateThumbnails(ctx, false)
	require.NoError(t, err)
	assert.False(t, env.cache.has(pic.ID))
	freshPic, err := env.files.GetFile(ctx, "u1", pic.ID)
	require.NoError(t, err)
	assert.True(t, freshPic.HasThumbnail())
}

func TestFindDuplicatesGroupsByOwner(t *testing.T) {
	env := newTestEnv(t)
	env.addUsers("u1", "u2")
	ctx := context.Background()

	a := env.upload(t, "u1", nil, "a.txt", "same bytes")
	b := env.upload(t, "u1", nil, "b.txt", "same bytes")
	c := env.upload(t, "u1", nil, "c.txt", "other bytes")
	env.upload(t, "u2", nil, "d.txt", "same bytes")

	report, err := env.maint.FindDuplicates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, report.Groups, 1)
	group := report.Groups[0]
	assert.Equal(t, a.ID, group.Original.ID)
	require.Len(t, group.Duplicates, 1)
	assert.Equal(t, b.ID, group.Duplicates[0].ID)
	assert.Equal(t, b.SizeBytes, group.WastedBytes)
	for _, dup := range group.Duplicates {
		assert.NotEqual(t, c.ID, dup.ID)
	}

	all, err := env.maint.FindDuplicates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Groups, 1)

	require.NoError(t, env.maint.DeleteDuplicate(ctx, "u1", b.ID))
	assert.True(t, env.file(b.ID).IsDeleted)

	report, err = env.maint.FindDuplicates(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
}

func TestRegenerateThumbnails(t *testing.T) {
	env := newTestEnv(t)
	env.addUsers("u1")
	ctx := context.Background()

	pic := env.upload(t, "u1", nil, "pic.png", string(pngBytes(t, 50, 40)))
	broken := env.upload(t, "u1", nil, "broken.png", "garbage")
	env.upload(t, "u1", nil, "notes.txt", "text")

	env.db.mu.Lock()
	env.db.files[pic.ID].ThumbnailRef = nil
	env.db.mu.Unlock()

	report, err := env.maint.RegenerateThumbnails(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, broken.ID, report.Failures[0].ID)
	assert.True(t, env.file(pic.ID).HasThumbnail())

	report, err = env.maint.RegenerateThumbnails(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
}

func TestPurgeTrashDays(t *testing.T) {
	env := newTestEnv(t)
	env.addUsers("u1")
	ctx := context.Background()

	file := env.upload(t, "u1", nil, "a.txt", "abc")
	require.NoError(t, env.lifecycle.TrashFile(ctx, "u1", file.ID))
	env.clock.advance(2 * day)

	// по сроку из конфигурации (30 дней) ещё рано
	report, err := env.maint.PurgeTrash(ctx, 0, false)
	require.NoError(t, err)
	assert.Zero(t, report.PurgedFiles)

	report, err = env.maint.PurgeTrash(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FileCount)
	assert.Equal(t, int64(3), report.TotalBytes)
	assert.NotNil(t, env.file(file.ID))

	report, err = env.maint.PurgeTrash(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PurgedFiles)
	assert.Nil(t, env.file(file.ID))
}
