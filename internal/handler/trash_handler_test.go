package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storage-manager/internal/model"
	"storage-manager/internal/model/requestresponse"
)

func TestTrashFolderReturnsCascadeCounts(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	svc.On("TrashFolder", mock.Anything, testUserID, testFolderID).
		Return(&model.CascadeResult{Folders: 3, Files: 12}, nil)

	rec := serve(t, http.MethodDelete, "/api/folders/{id}", h.TrashFolder,
		authorized(httptest.NewRequest(http.MethodDelete, "/api/folders/"+testFolderID, nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.CascadeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Folders)
	assert.Equal(t, 12, resp.Data.Files)
}

func TestTrashAndPurgeFile(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	svc.On("TrashFile", mock.Anything, testUserID, testFileID).Return(nil)
	svc.On("PurgeFile", mock.Anything, testUserID, testFileID).
		Return(fmt.Errorf("%w: файл не в корзине", model.ErrInvalidArgument))

	rec := serve(t, http.MethodDelete, "/api/files/{id}", h.TrashFile,
		authorized(httptest.NewRequest(http.MethodDelete, "/api/files/"+testFileID, nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, http.MethodDelete, "/api/files/{id}/permanent", h.PurgeFile,
		authorized(httptest.NewRequest(http.MethodDelete, "/api/files/"+testFileID+"/permanent", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "файл не в корзине")
}

func TestRestoreFolderNameClash(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	svc.On("RestoreFolder", mock.Anything, testUserID, testFolderID).Return(nil, model.ErrDuplicateSiblingName)

	rec := serve(t, http.MethodPost, "/api/folders/{id}/restore", h.RestoreFolder,
		authorized(httptest.NewRequest(http.MethodPost, "/api/folders/"+testFolderID+"/restore", nil)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListTrashShowsDaysUntilPurge(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	deleted := now.Add(-10 * 24 * time.Hour)
	file := sampleFile()
	file.IsDeleted, file.DeletedAt = true, &deleted
	folder := &model.Folder{ID: testFolderID, Name: "old", IsDeleted: true, DeletedAt: &deleted}
	svc.On("ListTrash", mock.Anything, testUserID).
		Return(&model.TrashListing{Files: []*model.File{file}, Folders: []*model.Folder{folder}}, nil)

	rec := serve(t, http.MethodGet, "/api/trash", h.ListTrash,
		authorized(httptest.NewRequest(http.MethodGet, "/api/trash", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.TrashResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Files, 1)
	require.Len(t, resp.Data.Folders, 1)
	assert.Equal(t, 20, *resp.Data.Files[0].DaysUntilPurge)
	assert.Equal(t, 20, *resp.Data.Folders[0].DaysUntilPurge)
}

func TestBatchPurgeReportsFailures(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	other := "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	report := &model.BatchReport{Task: "purge-files", Succeeded: 1}
	report.Fail(other, model.ErrNotFound)
	svc.On("PurgeFiles", mock.Anything, testUserID, []string{testFileID, other}).Return(report, nil)

	body := `{"file_ids":["` + testFileID + `","` + other + `"]}`
	rec := serve(t, http.MethodPost, "/api/trash/purge", h.PurgeFiles,
		authorized(httptest.NewRequest(http.MethodPost, "/api/trash/purge", strings.NewReader(body))))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.BatchReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Succeeded)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, other, resp.Data.Failures[0].ID)
}

func TestBatchRestoreValidatesIDs(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	for _, body := range []string{`{"file_ids":[]}`, `{"file_ids":["not-a-uuid"]}`} {
		rec := serve(t, http.MethodPost, "/api/trash/restore", h.RestoreFiles,
			authorized(httptest.NewRequest(http.MethodPost, "/api/trash/restore", strings.NewReader(body))))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	svc.AssertNotCalled(t, "RestoreFiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmptyTrash(t *testing.T) {
	svc := new(MockLifecycleService)
	h := NewTrashHandler(svc, 30*24*time.Hour)

	svc.On("EmptyTrash", mock.Anything, testUserID).Return(&model.BatchReport{Task: "empty-trash", Succeeded: 4}, nil)

	rec := serve(t, http.MethodDelete, "/api/trash", h.EmptyTrash,
		authorized(httptest.NewRequest(http.MethodDelete, "/api/trash", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"succeeded":4`)
}
