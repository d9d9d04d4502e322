package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storage-manager/internal/model"
	"storage-manager/internal/model/requestresponse"
)

func TestCreateFolder(t *testing.T) {
	svc := new(MockFolderService)
	h := NewFolderHandler(svc)

	parent := testFolderID
	created := &model.Folder{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Name: "Q3", OwnerID: testUserID, ParentID: &parent}
	svc.On("CreateFolder", mock.Anything, testUserID, "Q3", mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == testFolderID
	})).Return(created, nil)
	svc.On("FolderPath", mock.Anything, testUserID, created.ID).Return("Docs/Q3", nil)

	rec := serve(t, http.MethodPost, "/api/folders", h.CreateFolder,
		authorized(httptest.NewRequest(http.MethodPost, "/api/folders",
			strings.NewReader(`{"name":"Q3","parent_id":"`+testFolderID+`"}`))))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp requestresponse.GetFolderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Docs/Q3", resp.Data.Path)
	assert.Equal(t, testFolderID, *resp.Data.Folder.ParentID)
	svc.AssertExpectations(t)
}

func TestCreateFolderDuplicateName(t *testing.T) {
	svc := new(MockFolderService)
	h := NewFolderHandler(svc)

	svc.On("CreateFolder", mock.Anything, testUserID, "Docs", (*string)(nil)).
		Return(nil, fmt.Errorf("[FolderService] %w", model.ErrDuplicateSiblingName))

	rec := serve(t, http.MethodPost, "/api/folders", h.CreateFolder,
		authorized(httptest.NewRequest(http.MethodPost, "/api/folders", strings.NewReader(`{"name":"Docs"}`))))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), model.ErrDuplicateSiblingName.Error())
}

func TestCreateFolderRequiresName(t *testing.T) {
	svc := new(MockFolderService)
	h := NewFolderHandler(svc)

	rec := serve(t, http.MethodPost, "/api/folders", h.CreateFolder,
		authorized(httptest.NewRequest(http.MethodPost, "/api/folders", strings.NewReader(`{"name":""}`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateFolder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListFolders(t *testing.T) {
	svc := new(MockFolderService)
	h := NewFolderHandler(svc)

	svc.On("ListChildren", mock.Anything, testUserID, (*string)(nil)).
		Return([]*model.Folder{{ID: testFolderID, Name: "Docs"}}, nil)
	svc.On("ListAll", mock.Anything, testUserID).
		Return([]*model.Folder{{ID: testFolderID, Name: "Docs"}, {ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Name: "Q3"}}, nil)

	rec := serve(t, http.MethodGet, "/api/folders", h.ListFolders,
		authorized(httptest.NewRequest(http.MethodGet, "/api/folders?parent_id=root", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var roots requestresponse.ListFoldersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roots))
	assert.Len(t, roots.Data.Folders, 1)

	rec = serve(t, http.MethodGet, "/api/folders", h.ListFolders,
		authorized(httptest.NewRequest(http.MethodGet, "/api/folders?all=true", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var all requestresponse.ListFoldersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all.Data.Folders, 2)
}

func TestMoveFolderIntoOwnSubtree(t *testing.T) {
	svc := new(MockFolderService)
	h := NewFolderHandler(svc)

	target := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	svc.On("MoveFolder", mock.Anything, testUserID, testFolderID, mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == target
	})).Return(nil, fmt.Errorf("[FolderService] перенос в собственное поддерево: %w", model.ErrForbiddenTarget))

	rec := serve(t, http.MethodPut, "/api/folders/{id}/parent", h.MoveFolder,
		authorized(httptest.NewRequest(http.MethodPut, "/api/folders/"+testFolderID+"/parent",
			strings.NewReader(`{"parent_id":"`+target+`"}`))))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRenameFolderReturnsPath(t *testing.T) {
	svc := new(MockFolderService)
	h := NewFolderHandler(svc)

	svc.On("RenameFolder", mock.Anything, testUserID, testFolderID, "Documents").
		Return(&model.Folder{ID: testFolderID, Name: "Documents", OwnerID: testUserID}, nil)
	svc.On("FolderPath", mock.Anything, testUserID, testFolderID).Return("Documents", nil)

	rec := serve(t, http.MethodPatch, "/api/folders/{id}", h.RenameFolder,
		authorized(httptest.NewRequest(http.MethodPatch, "/api/folders/"+testFolderID, strings.NewReader(`{"name":"Documents"}`))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"Documents"`)
}
