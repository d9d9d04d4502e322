package handler

import (
	"context"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/security"
)

const (
	testUserID   = "3f6c2a9e-1b2d-4c5e-8f70-112233445566"
	testFileID   = "b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"
	testFolderID = "0b1f2e3d-1111-2222-3333-444455556666"
	testLinkID   = "5f8a3c2e-9d1b-4c6a-8e7f-0a1b2c3d4e5f"
	testToken    = "3d2c1b0a-9f8e-4d7c-6b5a-493827160504"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, req ports.UploadRequest) (*model.File, error) {
	args := m.Called(ctx, req)
	file, _ := args.Get(0).(*model.File)
	return file, args.Error(1)
}

func (m *MockFileService) GetFile(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	args := m.Called(ctx, ownerID, fileID)
	file, _ := args.Get(0).(*model.File)
	return file, args.Error(1)
}

func (m *MockFileService) ListFiles(ctx context.Context, ownerID string, folderID *string, after *ports.FileCursor, limit int) ([]*model.File, *ports.FileCursor, error) {
	args := m.Called(ctx, ownerID, folderID, after, limit)
	files, _ := args.Get(0).([]*model.File)
	next, _ := args.Get(1).(*ports.FileCursor)
	return files, next, args.Error(2)
}

func (m *MockFileService) Files(ctx context.Context, ownerID string, folderID *string, pageSize int) iter.Seq2[*model.File, error] {
	args := m.Called(ctx, ownerID, folderID, pageSize)
	return args.Get(0).(iter.Seq2[*model.File, error])
}

func (m *MockFileService) Search(ctx context.Context, ownerID, query string) (*model.SearchResult, error) {
	args := m.Called(ctx, ownerID, query)
	result, _ := args.Get(0).(*model.SearchResult)
	return result, args.Error(1)
}

func (m *MockFileService) TagSuggestions(ctx context.Context, ownerID, query string) ([]model.TagSuggestion, error) {
	args := m.Called(ctx, ownerID, query)
	suggestions, _ := args.Get(0).([]model.TagSuggestion)
	return suggestions, args.Error(1)
}

func (m *MockFileService) UpdateFile(ctx context.Context, ownerID, fileID string, upd ports.FileUpdate) (*model.File, error) {
	args := m.Called(ctx, ownerID, fileID, upd)
	file, _ := args.Get(0).(*model.File)
	return file, args.Error(1)
}

func (m *MockFileService) MoveFile(ctx context.Context, ownerID, fileID string, folderID *string) (*model.File, error) {
	args := m.Called(ctx, ownerID, fileID, folderID)
	file, _ := args.Get(0).(*model.File)
	return file, args.Error(1)
}

func (m *MockFileService) OpenContent(ctx context.Context, ownerID, fileID string) (*model.File, io.ReadCloser, error) {
	args := m.Called(ctx, ownerID, fileID)
	file, _ := args.Get(0).(*model.File)
	rc, _ := args.Get(1).(io.ReadCloser)
	return file, rc, args.Error(2)
}

func (m *MockFileService) OpenPreview(ctx context.Context, ownerID, fileID string) (*model.File, io.ReadCloser, error) {
	args := m.Called(ctx, ownerID, fileID)
	file, _ := args.Get(0).(*model.File)
	rc, _ := args.Get(1).(io.ReadCloser)
	return file, rc, args.Error(2)
}

func (m *MockFileService) DownloadURL(ctx context.Context, ownerID, fileID string) (string, error) {
	args := m.Called(ctx, ownerID, fileID)
	return args.String(0), args.Error(1)
}

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, name, parentID)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) GetFolder(ctx context.Context, ownerID, folderID string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, folderID)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*model.Folder, error) {
	args := m.Called(ctx, ownerID, parentID)
	folders, _ := args.Get(0).([]*model.Folder)
	return folders, args.Error(1)
}

func (m *MockFolderService) ListAll(ctx context.Context, ownerID string) ([]*model.Folder, error) {
	args := m.Called(ctx, ownerID)
	folders, _ := args.Get(0).([]*model.Folder)
	return folders, args.Error(1)
}

func (m *MockFolderService) RenameFolder(ctx context.Context, ownerID, folderID, name string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, folderID, name)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) MoveFolder(ctx context.Context, ownerID, folderID string, parentID *string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, folderID, parentID)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) FolderPath(ctx context.Context, ownerID, folderID string) (string, error) {
	args := m.Called(ctx, ownerID, folderID)
	return args.String(0), args.Error(1)
}

type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) TrashFile(ctx context.Context, ownerID, fileID string) error {
	return m.Called(ctx, ownerID, fileID).Error(0)
}

func (m *MockLifecycleService) RestoreFile(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	args := m.Called(ctx, ownerID, fileID)
	file, _ := args.Get(0).(*model.File)
	return file, args.Error(1)
}

func (m *MockLifecycleService) PurgeFile(ctx context.Context, ownerID, fileID string) error {
	return m.Called(ctx, ownerID, fileID).Error(0)
}

func (m *MockLifecycleService) TrashFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error) {
	args := m.Called(ctx, ownerID, folderID)
	result, _ := args.Get(0).(*model.CascadeResult)
	return result, args.Error(1)
}

func (m *MockLifecycleService) RestoreFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error) {
	args := m.Called(ctx, ownerID, folderID)
	result, _ := args.Get(0).(*model.CascadeResult)
	return result, args.Error(1)
}

func (m *MockLifecycleService) PurgeFolder(ctx context.Context, ownerID, folderID string) (*model.CascadeResult, error) {
	args := m.Called(ctx, ownerID, folderID)
	result, _ := args.Get(0).(*model.CascadeResult)
	return result, args.Error(1)
}

func (m *MockLifecycleService) ListTrash(ctx context.Context, ownerID string) (*model.TrashListing, error) {
	args := m.Called(ctx, ownerID)
	listing, _ := args.Get(0).(*model.TrashListing)
	return listing, args.Error(1)
}

func (m *MockLifecycleService) EmptyTrash(ctx context.Context, ownerID string) (*model.BatchReport, error) {
	args := m.Called(ctx, ownerID)
	report, _ := args.Get(0).(*model.BatchReport)
	return report, args.Error(1)
}

func (m *MockLifecycleService) RestoreFiles(ctx context.Context, ownerID string, fileIDs []string) (*model.BatchReport, error) {
	args := m.Called(ctx, ownerID, fileIDs)
	report, _ := args.Get(0).(*model.BatchReport)
	return report, args.Error(1)
}

func (m *MockLifecycleService) PurgeFiles(ctx context.Context, ownerID string, fileIDs []string) (*model.BatchReport, error) {
	args := m.Called(ctx, ownerID, fileIDs)
	report, _ := args.Get(0).(*model.BatchReport)
	return report, args.Error(1)
}

type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) Issue(ctx context.Context, req ports.IssueRequest) (*model.SharedLink, error) {
	args := m.Called(ctx, req)
	link, _ := args.Get(0).(*model.SharedLink)
	return link, args.Error(1)
}

func (m *MockShareService) Resolve(ctx context.Context, token string) (*model.SharedLink, error) {
	args := m.Called(ctx, token)
	link, _ := args.Get(0).(*model.SharedLink)
	return link, args.Error(1)
}

func (m *MockShareService) Consume(ctx context.Context, token string) (*model.SharedLink, *model.File, error) {
	args := m.Called(ctx, token)
	link, _ := args.Get(0).(*model.SharedLink)
	file, _ := args.Get(1).(*model.File)
	return link, file, args.Error(2)
}

func (m *MockShareService) Check(ctx context.Context, token string) (*model.SharedLink, error) {
	args := m.Called(ctx, token)
	link, _ := args.Get(0).(*model.SharedLink)
	return link, args.Error(1)
}

func (m *MockShareService) OpenShared(ctx context.Context, token string) (*model.File, io.ReadCloser, error) {
	args := m.Called(ctx, token)
	file, _ := args.Get(0).(*model.File)
	rc, _ := args.Get(1).(io.ReadCloser)
	return file, rc, args.Error(2)
}

func (m *MockShareService) ListLinks(ctx context.Context, ownerID string) ([]*model.SharedLink, error) {
	args := m.Called(ctx, ownerID)
	links, _ := args.Get(0).([]*model.SharedLink)
	return links, args.Error(1)
}

func (m *MockShareService) SetActive(ctx context.Context, ownerID, linkID string, active bool) (*model.SharedLink, error) {
	args := m.Called(ctx, ownerID, linkID, active)
	link, _ := args.Get(0).(*model.SharedLink)
	return link, args.Error(1)
}

func (m *MockShareService) DeleteLink(ctx context.Context, ownerID, linkID string) error {
	return m.Called(ctx, ownerID, linkID).Error(0)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) RegisterUser(ctx context.Context, user *model.User) (*model.UserProfile, error) {
	args := m.Called(ctx, user)
	profile, _ := args.Get(0).(*model.UserProfile)
	return profile, args.Error(1)
}

func (m *MockProfileService) EnsureUser(ctx context.Context, userID, username string) error {
	return m.Called(ctx, userID, username).Error(0)
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*model.UserProfile)
	return profile, args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error) {
	args := m.Called(ctx, userID, upd)
	profile, _ := args.Get(0).(*model.UserProfile)
	return profile, args.Error(1)
}

func (m *MockProfileService) UpdateAvatar(ctx context.Context, userID, filename string, content io.Reader) (*model.UserProfile, error) {
	args := m.Called(ctx, userID, filename, content)
	profile, _ := args.Get(0).(*model.UserProfile)
	return profile, args.Error(1)
}

func (m *MockProfileService) OpenAvatar(ctx context.Context, userID string) (string, io.ReadCloser, error) {
	args := m.Called(ctx, userID)
	rc, _ := args.Get(1).(io.ReadCloser)
	return args.String(0), rc, args.Error(2)
}

type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) Stats(ctx context.Context, userID string) (*model.UsageStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*model.UsageStats)
	return stats, args.Error(1)
}

type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) FindDuplicates(ctx context.Context, ownerID string) (*model.DuplicateReport, error) {
	args := m.Called(ctx, ownerID)
	report, _ := args.Get(0).(*model.DuplicateReport)
	return report, args.Error(1)
}

func (m *MockMaintenanceService) DeleteDuplicate(ctx context.Context, ownerID, fileID string) error {
	return m.Called(ctx, ownerID, fileID).Error(0)
}

// serve : прогоняет запрос через chi-маршрут, чтобы работал chi.URLParam
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// authorized : запрос с claims текущего пользователя, как после JWTMiddleware
func authorized(req *http.Request) *http.Request {
	claims := &security.Claims{UserID: testUserID, Username: "alice"}
	return req.WithContext(security.WithClaims(req.Context(), claims))
}
