package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionapp "github.com/webide/backend/internal/application/session"
	workspaceapp "github.com/webide/backend/internal/application/workspace"
	"github.com/webide/backend/internal/domain/session"
	infraws "github.com/webide/backend/internal/infrastructure/workspace"
)

type stubSessionRepo struct {
	sessions map[string]*session.EditorSession
	removed  []string
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*session.EditorSession)}
}

func (s *stubSessionRepo) Save(sess *session.EditorSession) error {
	copied := *sess
	s.sessions[sess.Workspace] = &copied
	return nil
}

func (s *stubSessionRepo) FindByWorkspace(workspace string) (*session.EditorSession, error) {
	return s.sessions[workspace], nil
}

func (s *stubSessionRepo) RemovePath(workspace, path string) error {
	s.removed = append(s.removed, path)
	return nil
}

// setupRouter 构建带工作区和会话路由的测试路由器
func setupRouter(t *testing.T) (*gin.Engine, string, *stubSessionRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	store, err := infraws.NewFSStore(root)
	require.NoError(t, err)

	repo := newStubSessionRepo()
	workspaceService := workspaceapp.NewService(store, repo)
	sessionService := sessionapp.NewService(repo)

	workspaceHandler := NewWorkspaceHandler(workspaceService)
	sessionHandler := NewSessionHandler(sessionService, workspaceService)

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/files/tree", workspaceHandler.Tree)
	api.GET("/files/content", workspaceHandler.Content)
	api.POST("/files/save", workspaceHandler.Save)
	api.POST("/files/create", workspaceHandler.Create)
	api.DELETE("/files/delete", workspaceHandler.Delete)
	api.POST("/files/rename", workspaceHandler.Rename)
	api.GET("/session", sessionHandler.Get)
	api.PUT("/session", sessionHandler.Update)

	return router, root, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestWorkspaceHandler_Tree(t *testing.T) {
	router, root, _ := setupRouter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0644))

	w := doJSON(t, router, http.MethodGet, "/api/v1/files/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.EqualValues(t, 0, envelope["code"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, root, data["root"])

	tree := data["tree"].([]any)
	require.Len(t, tree, 1)
	assert.Equal(t, "src", tree[0].(map[string]any)["name"])
}

func TestWorkspaceHandler_SaveAndContent(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/files/save", SaveFileRequest{
		Path:    "notes/todo.md",
		Content: "# TODO",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/files/content?path=notes/todo.md", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "# TODO", data["content"])
	assert.Equal(t, "notes/todo.md", data["path"])
}

func TestWorkspaceHandler_ContentNotFound(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/files/content?path=missing.go", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceHandler_PathEscapeForbidden(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/files/content?path=../../etc/passwd", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWorkspaceHandler_CreateConflict(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/files/create", CreateEntryRequest{Path: "a.go", Type: "file"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/files/create", CreateEntryRequest{Path: "a.go", Type: "file"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWorkspaceHandler_DeletePrunesSession(t *testing.T) {
	router, root, repo := setupRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "gone.go"), []byte("x"), 0644))

	w := doJSON(t, router, http.MethodDelete, "/api/v1/files/delete?path=gone.go", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, repo.removed, "gone.go")

	_, err := os.Stat(filepath.Join(root, "gone.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestWorkspaceHandler_Rename(t *testing.T) {
	router, root, _ := setupRouter(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.go"), []byte("package old"), 0644))

	w := doJSON(t, router, http.MethodPost, "/api/v1/files/rename", RenameEntryRequest{
		OldPath: "old.go",
		NewPath: "new.go",
	})
	require.Equal(t, http.StatusOK, w.Code)

	_, err := os.Stat(filepath.Join(root, "new.go"))
	assert.NoError(t, err)
}

func TestWorkspaceHandler_MissingParam(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/files/content", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_GetEmptyThenUpdate(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Empty(t, data["activeFile"])

	w = doJSON(t, router, http.MethodPut, "/api/v1/session", UpdateSessionRequest{
		OpenFiles:  []string{"main.go"},
		ActiveFile: "main.go",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "main.go", data["activeFile"])
}

func TestSessionHandler_UpdateRejectsInvalidActiveFile(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/session", UpdateSessionRequest{
		OpenFiles:  []string{"a.go"},
		ActiveFile: "other.go",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
