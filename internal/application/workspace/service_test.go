package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webide/backend/internal/domain/session"
	domain "github.com/webide/backend/internal/domain/workspace"
	infraWorkspace "github.com/webide/backend/internal/infrastructure/workspace"
)

// memorySessionRepo 内存会话仓储，记录 RemovePath 调用
type memorySessionRepo struct {
	removed []string
}

func (r *memorySessionRepo) Save(*session.EditorSession) error { return nil }
func (r *memorySessionRepo) FindByWorkspace(string) (*session.EditorSession, error) {
	return nil, nil
}
func (r *memorySessionRepo) RemovePath(workspace, path string) error {
	r.removed = append(r.removed, path)
	return nil
}

// newTestService 创建基于临时目录的服务
func newTestService(t *testing.T) (*Service, *memorySessionRepo) {
	t.Helper()

	store, err := infraWorkspace.NewFSStore(t.TempDir())
	require.NoError(t, err)

	repo := &memorySessionRepo{}
	return NewService(store, repo), repo
}

func TestService_WriteReadRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Write("src/app.js", "let x = 1"))

	content, err := svc.Read("src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "let x = 1", content.Content)
}

func TestService_Delete_PrunesSession(t *testing.T) {
	svc, repo := newTestService(t)

	require.NoError(t, svc.Create("a.txt", domain.EntryFile, "x"))
	require.NoError(t, svc.Delete("a.txt"))

	assert.Equal(t, []string{"a.txt"}, repo.removed)
}

func TestService_Search(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Write("src/app.js", ""))
	require.NoError(t, svc.Write("src/util/helper.js", ""))
	require.NoError(t, svc.Write("README.md", ""))

	matches, err := svc.Search("APP")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.js"}, matches)

	matches, err = svc.Search(".js")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/app.js", "src/util/helper.js"}, matches)
}
