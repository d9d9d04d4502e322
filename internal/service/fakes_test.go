package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"storage-manager/internal/hasher"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/storage"
	"storage-manager/internal/thumbnail"
)

// fakeTx : транзакции без БД, репозитории ниже игнорируют exec
type fakeTx struct{}

func (fakeTx) Executor() sqlx.ExtContext { return nil }

func (fakeTx) BeginTX(context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	noop := func() error { return nil }
	return nil, noop, noop, nil
}

// memDB : общее состояние фейковых репозиториев
type memDB struct {
	mu       sync.Mutex
	folders  map[string]*model.Folder
	files    map[string]*model.File
	links    map[string]*model.SharedLink
	users    map[string]*model.User
	profiles map[string]*model.UserProfile
}

func newMemDB() *memDB {
	return &memDB{
		folders:  map[string]*model.Folder{},
		files:    map[string]*model.File{},
		links:    map[string]*model.SharedLink{},
		users:    map[string]*model.User{},
		profiles: map[string]*model.UserProfile{},
	}
}

func cloneFolder(f *model.Folder) *model.Folder {
	c := *f
	return &c
}

func cloneFile(f *model.File) *model.File {
	c := *f
	c.Tags = append(model.Tags(nil), f.Tags...)
	return &c
}

func cloneLink(l *model.SharedLink) *model.SharedLink {
	c := *l
	return &c
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func isExpired(deletedAt *time.Time, cutoff time.Time) bool {
	return deletedAt != nil && deletedAt.Before(cutoff)
}

// --- папки ---

type fakeFolderRepo struct{ db *memDB }

func (r *fakeFolderRepo) Create(_ context.Context, _ sqlx.ExtContext, folder *model.Folder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.folders {
		if !f.IsDeleted && f.OwnerID == folder.OwnerID && sameParent(f.ParentID, folder.ParentID) && f.Name == folder.Name {
			return model.ErrDuplicateSiblingName
		}
	}
	r.db.folders[folder.ID] = cloneFolder(folder)
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, _ sqlx.ExtContext, id, ownerID string) (*model.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, model.ErrNotFound
	}
	return cloneFolder(f), nil
}

func (r *fakeFolderRepo) GetByIDUnscoped(_ context.Context, _ sqlx.ExtContext, id string) (*model.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneFolder(f), nil
}

func (r *fakeFolderRepo) ExistsActiveSibling(_ context.Context, _ sqlx.ExtContext, ownerID string, parentID *string, name, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.folders {
		if f.ID != excludeID && !f.IsDeleted && f.OwnerID == ownerID && sameParent(f.ParentID, parentID) && f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFolderRepo) selectFolders(keep func(*model.Folder) bool) []*model.Folder {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.Folder{}
	for _, f := range r.db.folders {
		if keep(f) {
			out = append(out, cloneFolder(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, _ sqlx.ExtContext, ownerID string, parentID *string, includeDeleted bool) ([]*model.Folder, error) {
	return r.selectFolders(func(f *model.Folder) bool {
		return f.OwnerID == ownerID && sameParent(f.ParentID, parentID) && (includeDeleted || !f.IsDeleted)
	}), nil
}

func (r *fakeFolderRepo) ListAll(_ context.Context, _ sqlx.ExtContext, ownerID string) ([]*model.Folder, error) {
	return r.selectFolders(func(f *model.Folder) bool { return f.OwnerID == ownerID && !f.IsDeleted }), nil
}

func (r *fakeFolderRepo) SearchByName(_ context.Context, _ sqlx.ExtContext, ownerID, query string) ([]*model.Folder, error) {
	q := strings.ToLower(query)
	return r.selectFolders(func(f *model.Folder) bool {
		return f.OwnerID == ownerID && !f.IsDeleted && strings.Contains(strings.ToLower(f.Name), q)
	}), nil
}

func (r *fakeFolderRepo) update(id, ownerID string, apply func(*model.Folder)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.folders[id]
	if !ok || f.OwnerID != ownerID {
		return model.ErrNotFound
	}
	apply(f)
	return nil
}

func (r *fakeFolderRepo) Rename(_ context.Context, _ sqlx.ExtContext, id, ownerID, name string) error {
	return r.update(id, ownerID, func(f *model.Folder) { f.Name = name })
}

func (r *fakeFolderRepo) UpdateParent(_ context.Context, _ sqlx.ExtContext, id, ownerID string, parentID *string) error {
	return r.update(id, ownerID, func(f *model.Folder) { f.ParentID = parentID })
}

func (r *fakeFolderRepo) SetDeleted(_ context.Context, _ sqlx.ExtContext, ids []string, deletedAt *time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		if f, ok := r.db.folders[id]; ok {
			f.IsDeleted = deletedAt != nil
			f.DeletedAt = deletedAt
		}
	}
	return nil
}

func (r *fakeFolderRepo) Delete(_ context.Context, _ sqlx.ExtContext, ids []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.folders, id)
	}
	return nil
}

func (r *fakeFolderRepo) ListTrashed(_ context.Context, _ sqlx.ExtContext, ownerID string) ([]*model.Folder, error) {
	out := r.selectFolders(func(f *model.Folder) bool { return f.OwnerID == ownerID && f.IsDeleted })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeletedAt.After(*out[j].DeletedAt) })
	return out, nil
}

func (r *fakeFolderRepo) ListExpiredTrash(_ context.Context, _ sqlx.ExtContext, cutoff time.Time) ([]*model.Folder, error) {
	r.db.mu.Lock()
	parentExpired := func(f *model.Folder) bool {
		if f.ParentID == nil {
			return false
		}
		p, ok := r.db.folders[*f.ParentID]
		return ok && p.IsDeleted && isExpired(p.DeletedAt, cutoff)
	}
	expired := map[string]bool{}
	for id, f := range r.db.folders {
		expired[id] = f.IsDeleted && isExpired(f.DeletedAt, cutoff) && !parentExpired(f)
	}
	r.db.mu.Unlock()

	return r.selectFolders(func(f *model.Folder) bool { return expired[f.ID] }), nil
}

// --- файлы ---

type fakeFileRepo struct{ db *memDB }

func (r *fakeFileRepo) Create(_ context.Context, _ sqlx.ExtContext, file *model.File) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.files[file.ID]; ok {
		return model.ErrIntegrityViolation
	}
	r.db.files[file.ID] = cloneFile(file)
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, _ sqlx.ExtContext, id, ownerID string) (*model.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.files[id]
	if !ok || f.OwnerID != ownerID {
		return nil, model.ErrNotFound
	}
	return cloneFile(f), nil
}

func (r *fakeFileRepo) GetByIDUnscoped(_ context.Context, _ sqlx.ExtContext, id string) (*model.File, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.files[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneFile(f), nil
}

func (r *fakeFileRepo) selectFiles(keep func(*model.File) bool) []*model.File {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.File{}
	for _, f := range r.db.files {
		if keep(f) {
			out = append(out, cloneFile(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, _ sqlx.ExtContext, ownerID string, folderID *string, after *ports.FileCursor, limit int) ([]*model.File, error) {
	out := r.selectFiles(func(f *model.File) bool {
		if f.OwnerID != ownerID || f.IsDeleted || !sameParent(f.FolderID, folderID) {
			return false
		}
		if after == nil {
			return true
		}
		return f.CreatedAt.After(after.CreatedAt) || (f.CreatedAt.Equal(after.CreatedAt) && f.ID > after.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFileRepo) ListInFolders(_ context.Context, _ sqlx.ExtContext, ownerID string, folderIDs []string) ([]*model.File, error) {
	set := map[string]bool{}
	for _, id := range folderIDs {
		set[id] = true
	}
	return r.selectFiles(func(f *model.File) bool {
		return f.OwnerID == ownerID && f.FolderID != nil && set[*f.FolderID]
	}), nil
}

func (r *fakeFileRepo) Search(_ context.Context, _ sqlx.ExtContext, ownerID, query string, limit int) ([]*model.File, error) {
	q := strings.ToLower(query)
	out := r.selectFiles(func(f *model.File) bool {
		if f.OwnerID != ownerID || f.IsDeleted {
			return false
		}
		return strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Description), q) ||
			strings.Contains(strings.ToLower(f.Tags.String()), q)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFileRepo) update(id string, apply func(*model.File)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.files[id]
	if !ok {
		return model.ErrNotFound
	}
	apply(f)
	return nil
}

func (r *fakeFileRepo) Update(_ context.Context, _ sqlx.ExtContext, file *model.File) error {
	return r.update(file.ID, func(f *model.File) {
		f.Name = file.Name
		f.Description = file.Description
		f.Tags = append(model.Tags(nil), file.Tags...)
	})
}

func (r *fakeFileRepo) UpdateFolder(_ context.Context, _ sqlx.ExtContext, id, _ string, folderID *string) error {
	return r.update(id, func(f *model.File) { f.FolderID = folderID })
}

func (r *fakeFileRepo) UpdateHash(_ context.Context, _ sqlx.ExtContext, id string, hash *string) error {
	return r.update(id, func(f *model.File) { f.ContentHash = hash })
}

func (r *fakeFileRepo) UpdateThumbnail(_ context.Context, _ sqlx.ExtContext, id string, ref *string) error {
	return r.update(id, func(f *model.File) { f.ThumbnailRef = ref })
}

func (r *fakeFileRepo) SetDeleted(_ context.Context, _ sqlx.ExtContext, ids []string, deletedAt *time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		if f, ok := r.db.files[id]; ok {
			f.IsDeleted = deletedAt != nil
			f.DeletedAt = deletedAt
		}
	}
	return nil
}

func (r *fakeFileRepo) Delete(_ context.Context, _ sqlx.ExtContext, ids []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.files, id)
	}
	return nil
}

func (r *fakeFileRepo) SumActiveSize(_ context.Context, _ sqlx.ExtContext, ownerID string) (int64, error) {
	var total int64
	for _, f := range r.selectFiles(func(f *model.File) bool { return f.OwnerID == ownerID && !f.IsDeleted }) {
		total += f.SizeBytes
	}
	return total, nil
}

func (r *fakeFileRepo) CountActive(_ context.Context, _ sqlx.ExtContext, ownerID string) (int, error) {
	return len(r.selectFiles(func(f *model.File) bool { return f.OwnerID == ownerID && !f.IsDeleted })), nil
}

func (r *fakeFileRepo) ListTrashed(_ context.Context, _ sqlx.ExtContext, ownerID string) ([]*model.File, error) {
	out := r.selectFiles(func(f *model.File) bool { return f.OwnerID == ownerID && f.IsDeleted })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeletedAt.After(*out[j].DeletedAt) })
	return out, nil
}

func (r *fakeFileRepo) ListExpiredTrash(_ context.Context, _ sqlx.ExtContext, cutoff time.Time) ([]*model.File, error) {
	return r.selectFiles(func(f *model.File) bool { return f.IsDeleted && isExpired(f.DeletedAt, cutoff) }), nil
}

func (r *fakeFileRepo) ListHashed(_ context.Context, _ sqlx.ExtContext, ownerID string) ([]*model.File, error) {
	return r.selectFiles(func(f *model.File) bool {
		return !f.IsDeleted && f.HasHash() && (ownerID == "" || f.OwnerID == ownerID)
	}), nil
}

func (r *fakeFileRepo) ListForHashing(_ context.Context, _ sqlx.ExtContext, force bool) ([]*model.File, error) {
	return r.selectFiles(func(f *model.File) bool { return !f.IsDeleted && (force || !f.HasHash()) }), nil
}

func (r *fakeFileRepo) ListMissingThumbnails(_ context.Context, _ sqlx.ExtContext) ([]*model.File, error) {
	return r.selectFiles(func(f *model.File) bool {
		return !f.IsDeleted && !f.HasThumbnail() && strings.HasPrefix(f.MimeType, "image/")
	}), nil
}

func (r *fakeFileRepo) ListTagStrings(_ context.Context, _ sqlx.ExtContext, ownerID string) ([]string, error) {
	out := []string{}
	for _, f := range r.selectFiles(func(f *model.File) bool { return f.OwnerID == ownerID && !f.IsDeleted && len(f.Tags) > 0 }) {
		out = append(out, f.Tags.String())
	}
	return out, nil
}

func (r *fakeFileRepo) LockOwner(context.Context, sqlx.ExtContext, string) error { return nil }

// --- ссылки ---

type fakeLinkRepo struct{ db *memDB }

func (r *fakeLinkRepo) Create(_ context.Context, _ sqlx.ExtContext, link *model.SharedLink) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.links {
		if l.Token == link.Token {
			return model.ErrIntegrityViolation
		}
	}
	r.db.links[link.ID] = cloneLink(link)
	return nil
}

func (r *fakeLinkRepo) GetByToken(_ context.Context, _ sqlx.ExtContext, token string) (*model.SharedLink, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.links {
		if l.Token == token {
			return cloneLink(l), nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeLinkRepo) GetByID(_ context.Context, _ sqlx.ExtContext, id, ownerID string) (*model.SharedLink, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.links[id]
	if !ok || l.CreatedBy != ownerID {
		return nil, model.ErrNotFound
	}
	return cloneLink(l), nil
}

func (r *fakeLinkRepo) ListByOwner(_ context.Context, _ sqlx.ExtContext, ownerID string) ([]*model.SharedLink, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*model.SharedLink{}
	for _, l := range r.db.links {
		if l.CreatedBy == ownerID {
			out = append(out, cloneLink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Consume : проверка и инкремент под одной блокировкой, как одно UPDATE в БД
func (r *fakeLinkRepo) Consume(_ context.Context, _ sqlx.ExtContext, token string, now time.Time) (*model.SharedLink, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.links {
		if l.Token != token {
			continue
		}
		if !l.CanDownload(now) {
			return nil, false, nil
		}
		l.DownloadCount++
		if l.IsExhausted() {
			l.IsActive = false
		}
		return cloneLink(l), true, nil
	}
	return nil, false, nil
}

func (r *fakeLinkRepo) SetActive(_ context.Context, _ sqlx.ExtContext, id, ownerID string, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.links[id]
	if !ok || l.CreatedBy != ownerID {
		return model.ErrNotFound
	}
	l.IsActive = active
	return nil
}

func (r *fakeLinkRepo) Delete(_ context.Context, _ sqlx.ExtContext, id, ownerID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.links[id]
	if !ok || l.CreatedBy != ownerID {
		return model.ErrNotFound
	}
	delete(r.db.links, id)
	return nil
}

// --- пользователи и профили ---

type fakeUserRepo struct{ db *memDB }

func (r *fakeUserRepo) Create(_ context.Context, _ sqlx.ExtContext, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; ok {
		return model.ErrIntegrityViolation
	}
	c := *user
	r.db.users[user.ID] = &c
	return nil
}

func (r *fakeUserRepo) Exists(_ context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.users[id]
	return ok, nil
}

func (r *fakeUserRepo) CountActive(context.Context, sqlx.ExtContext) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, u := range r.db.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

type fakeProfileRepo struct{ db *memDB }

func (r *fakeProfileRepo) Create(_ context.Context, _ sqlx.ExtContext, profile *model.UserProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *profile
	r.db.profiles[profile.UserID] = &c
	return nil
}

func (r *fakeProfileRepo) Get(_ context.Context, _ sqlx.ExtContext, userID string) (*model.UserProfile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, _ sqlx.ExtContext, profile *model.UserProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[profile.UserID]; !ok {
		return model.ErrNotFound
	}
	c := *profile
	r.db.profiles[profile.UserID] = &c
	return nil
}

// --- кэш ---

type memCache struct {
	mu    sync.Mutex
	files map[string]*model.File
}

func newMemCache() *memCache { return &memCache{files: map[string]*model.File{}} }

func (c *memCache) SetFile(_ context.Context, file *model.File) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[file.ID] = cloneFile(file)
	return nil
}

func (c *memCache) GetFile(_ context.Context, id string) (*model.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files[id]; ok {
		return cloneFile(f), nil
	}
	return nil, nil
}

func (c *memCache) DeleteFile(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, id)
	return nil
}

func (c *memCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.files[id]
	return ok
}

// stepClock : каждый вызов сдвигает время на step, advance перематывает вперёд
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// --- сборка окружения ---

const testCapacity = 100 * 1024 * 1024

type testEnv struct {
	db        *memDB
	folderRep *fakeFolderRepo
	fileRep   *fakeFileRepo
	linkRep   *fakeLinkRepo
	userRep   *fakeUserRepo
	cache     *memCache
	clock     *stepClock
	store     *storage.FilesystemStore
	resolver  *storage.Resolver

	quota     *QuotaService
	files     *FileService
	folders   *FolderService
	lifecycle *LifecycleService
	shares    *ShareService
	profiles  *ProfileService
	maint     *MaintenanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newMemDB()
	env := &testEnv{
		db:        db,
		folderRep: &fakeFolderRepo{db: db},
		fileRep:   &fakeFileRepo{db: db},
		linkRep:   &fakeLinkRepo{db: db},
		userRep:   &fakeUserRepo{db: db},
		cache:     newMemCache(),
		clock:     &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Second},
	}

	store, err := storage.NewFilesystemStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	env.store = store
	env.resolver, err = storage.NewResolver("disk1", map[string]ports.ContentStore{"disk1": store})
	require.NoError(t, err)

	tx := fakeTx{}
	hashStep := NewHashStep(tx, env.fileRep, env.cache, env.resolver, hasher.New(4096))
	thumbStep := NewThumbnailStep(tx, env.fileRep, env.cache, env.resolver, thumbnail.New(300, 300, 85))

	env.quota = NewQuotaService(tx, env.fileRep, env.userRep, testCapacity, nil)
	env.files = NewFileService(tx, env.fileRep, env.folderRep, env.cache, env.resolver, env.quota,
		NewPipeline(hashStep, thumbStep), nil, time.Minute)
	env.folders = NewFolderService(tx, env.folderRep)
	env.lifecycle = NewLifecycleService(tx, env.fileRep, env.folderRep, env.cache, env.resolver, nil, 30*24*time.Hour)
	env.shares = NewShareService(tx, env.linkRep, env.fileRep, env.resolver, nil)
	env.profiles = NewProfileService(tx, env.userRep, &fakeProfileRepo{db: db}, env.resolver)
	env.maint = NewMaintenanceService(tx, env.fileRep, env.lifecycle, hashStep, thumbStep, nil)

	env.files.now = env.clock.Now
	env.folders.now = env.clock.Now
	env.lifecycle.now = env.clock.Now
	env.shares.now = env.clock.Now
	env.profiles.now = env.clock.Now
	return env
}

// addUsers : активные пользователи для расчёта квоты
func (e *testEnv) addUsers(ids ...string) {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	for _, id := range ids {
		e.db.users[id] = &model.User{ID: id, Username: id, IsActive: true}
	}
}

func (e *testEnv) upload(t *testing.T, owner string, folderID *string, name, content string) *model.File {
	t.Helper()
	file, err := e.files.Upload(context.Background(), ports.UploadRequest{
		OwnerID:      owner,
		FolderID:     folderID,
		Filename:     name,
		DeclaredSize: int64(len(content)),
		Content:      strings.NewReader(content),
	})
	require.NoError(t, err)
	return file
}

func (e *testEnv) mkdir(t *testing.T, owner, name string, parentID *string) *model.Folder {
	t.Helper()
	folder, err := e.folders.CreateFolder(context.Background(), owner, name, parentID)
	require.NoError(t, err)
	return folder
}

func (e *testEnv) file(id string) *model.File {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	f, ok := e.db.files[id]
	if !ok {
		return nil
	}
	return cloneFile(f)
}

func (e *testEnv) folder(id string) *model.Folder {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	f, ok := e.db.folders[id]
	if !ok {
		return nil
	}
	return cloneFolder(f)
}
