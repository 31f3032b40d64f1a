package reconciler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webide/backend/internal/domain/workspace"
)

// fakeBackend 内存后端
type fakeBackend struct {
	files      map[string]string
	treeCalls  int
	fetchCalls map[string]int
}

func newFakeBackend(files map[string]string) *fakeBackend {
	if files == nil {
		files = make(map[string]string)
	}
	return &fakeBackend{files: files, fetchCalls: make(map[string]int)}
}

func (f *fakeBackend) FetchTree() (*TreeData, error) {
	f.treeCalls++
	entries := make([]*workspace.Entry, 0, len(f.files))
	for path := range f.files {
		entries = append(entries, &workspace.Entry{Name: path, Path: path, Type: workspace.EntryFile})
	}
	return &TreeData{Root: "/fake", Tree: entries}, nil
}

func (f *fakeBackend) FetchContent(path string) (*workspace.FileContent, error) {
	f.fetchCalls[path]++
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return &workspace.FileContent{Path: path, Content: content}, nil
}

func (f *fakeBackend) SaveFile(path, content string) error {
	f.files[path] = content
	return nil
}

func (f *fakeBackend) CreateEntry(path, entryType, content string) error {
	if _, ok := f.files[path]; ok {
		return fmt.Errorf("already exists: %s", path)
	}
	f.files[path] = content
	return nil
}

func (f *fakeBackend) DeleteEntry(path string) error {
	delete(f.files, path)
	return nil
}

func (f *fakeBackend) RenameEntry(oldPath, newPath string) error {
	f.files[newPath] = f.files[oldPath]
	delete(f.files, oldPath)
	return nil
}

func TestReconciler_OpenFile(t *testing.T) {
	backend := newFakeBackend(map[string]string{"main.go": "package main"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("main.go"))

	state := r.Snapshot()
	assert.Equal(t, []string{"main.go"}, state.OpenFiles)
	assert.Equal(t, "main.go", state.ActiveFile)
	assert.Equal(t, "package main", state.FileContents["main.go"])
}

func TestReconciler_OpenFile_AlreadyOpenOnlyActivates(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a", "b.go": "b"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	require.NoError(t, r.OpenFile("b.go"))
	require.NoError(t, r.OpenFile("a.go"))

	state := r.Snapshot()
	assert.Equal(t, []string{"a.go", "b.go"}, state.OpenFiles)
	assert.Equal(t, "a.go", state.ActiveFile)
	// 内容只拉取一次
	assert.Equal(t, 1, backend.fetchCalls["a.go"])
}

func TestReconciler_CloseActiveFile_ActivatesPrevious(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a", "b.go": "b", "c.go": "c"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	require.NoError(t, r.OpenFile("b.go"))
	require.NoError(t, r.OpenFile("c.go"))

	r.CloseFile("c.go")

	state := r.Snapshot()
	assert.Equal(t, []string{"a.go", "b.go"}, state.OpenFiles)
	assert.Equal(t, "b.go", state.ActiveFile)
	// 关闭后内容被释放
	assert.NotContains(t, state.FileContents, "c.go")
}

func TestReconciler_CloseActiveMiddleFile_ActivatesPrevious(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a", "b.go": "b", "c.go": "c"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	require.NoError(t, r.OpenFile("b.go"))
	require.NoError(t, r.OpenFile("c.go"))
	require.NoError(t, r.OpenFile("b.go"))

	r.CloseFile("b.go")

	state := r.Snapshot()
	assert.Equal(t, []string{"a.go", "c.go"}, state.OpenFiles)
	// 激活打开顺序中被关闭文件的前一个
	assert.Equal(t, "a.go", state.ActiveFile)
}

func TestReconciler_CloseActiveFirstFile_ActivatesNext(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a", "b.go": "b"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	require.NoError(t, r.OpenFile("b.go"))
	require.NoError(t, r.OpenFile("a.go"))

	r.CloseFile("a.go")

	state := r.Snapshot()
	// 没有前一个时回退到后一个
	assert.Equal(t, "b.go", state.ActiveFile)
}

func TestReconciler_CloseFile_NonActiveKeepsActive(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a", "b.go": "b"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	require.NoError(t, r.OpenFile("b.go"))

	r.CloseFile("a.go")

	state := r.Snapshot()
	assert.Equal(t, "b.go", state.ActiveFile)
}

func TestReconciler_CloseLastFile(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	r.CloseFile("a.go")

	state := r.Snapshot()
	assert.Empty(t, state.OpenFiles)
	assert.Empty(t, state.ActiveFile)
}

func TestReconciler_SaveFile(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "old"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	r.Edit("a.go", "draft")
	require.NoError(t, r.SaveFile("a.go", "new"))

	assert.Equal(t, "new", backend.files["a.go"])
	assert.Equal(t, "new", r.Snapshot().FileContents["a.go"])
}

func TestReconciler_RenameRemapsState(t *testing.T) {
	backend := newFakeBackend(map[string]string{"old.go": "content"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("old.go"))
	require.NoError(t, r.RenameFile("old.go", "new.go"))

	state := r.Snapshot()
	assert.Equal(t, []string{"new.go"}, state.OpenFiles)
	assert.Equal(t, "new.go", state.ActiveFile)
	assert.Equal(t, "content", state.FileContents["new.go"])
	assert.NotContains(t, state.FileContents, "old.go")
}

func TestReconciler_DeleteFileClosesIt(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a", "b.go": "b"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	require.NoError(t, r.OpenFile("b.go"))
	require.NoError(t, r.DeleteFile("b.go"))

	state := r.Snapshot()
	assert.Equal(t, []string{"a.go"}, state.OpenFiles)
	assert.Equal(t, "a.go", state.ActiveFile)
	assert.NotContains(t, backend.files, "b.go")
}

func TestReconciler_FileChangedRefreshesOpenFile(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "v1"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	backend.files["a.go"] = "v2"

	r.HandleMessage([]byte(`{"type":"file:changed","path":"a.go"}`))

	assert.Equal(t, "v2", r.Snapshot().FileContents["a.go"])
}

func TestReconciler_FileChangedKeepsDirtyCopy(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "v1"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	r.Edit("a.go", "local draft")
	backend.files["a.go"] = "v2"

	r.HandleMessage([]byte(`{"type":"file:changed","path":"a.go"}`))

	assert.Equal(t, "local draft", r.Snapshot().FileContents["a.go"])
}

func TestReconciler_FileChangedIgnoredWhenNotOpen(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "v1"})
	r, err := New(backend)
	require.NoError(t, err)

	r.HandleMessage([]byte(`{"type":"file:changed","path":"a.go"}`))

	assert.Zero(t, backend.fetchCalls["a.go"])
}

func TestReconciler_FileDeletedPrunesState(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a"})
	r, err := New(backend)
	require.NoError(t, err)

	require.NoError(t, r.OpenFile("a.go"))
	delete(backend.files, "a.go")

	r.HandleMessage([]byte(`{"type":"file:deleted","path":"a.go"}`))

	state := r.Snapshot()
	assert.Empty(t, state.OpenFiles)
	assert.Empty(t, state.ActiveFile)
	assert.Empty(t, state.FileTree)
}

func TestReconciler_FileAddedRefreshesTree(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a"})
	r, err := New(backend)
	require.NoError(t, err)

	backend.files["b.go"] = "b"
	r.HandleMessage([]byte(`{"type":"file:added","path":"b.go"}`))

	assert.Len(t, r.Snapshot().FileTree, 2)
}

func TestReconciler_MalformedAndUnknownMessagesIgnored(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a.go": "a"})
	r, err := New(backend)
	require.NoError(t, err)

	before := r.Snapshot()
	r.HandleMessage([]byte(`not json`))
	r.HandleMessage([]byte(`{"type":"mystery"}`))
	r.HandleMessage([]byte(`{"type":"connected","message":"hi"}`))

	assert.Equal(t, before.OpenFiles, r.Snapshot().OpenFiles)
}
