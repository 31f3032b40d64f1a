package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/webide/backend/internal/domain/workspace"
)

// newTestStore 创建带初始文件的测试存储
func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.js"), []byte("console.log('hi')"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# demo"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SECRET=1"), 0644))

	store, err := NewFSStore(root)
	require.NoError(t, err)
	return store
}

func TestFSStore_ListTree_Order(t *testing.T) {
	store := newTestStore(t)

	// 补充条目，验证目录在前、同类型按名称排序
	require.NoError(t, store.Create("zeta.txt", domain.EntryFile, ""))
	require.NoError(t, store.Create("alpha", domain.EntryDirectory, ""))

	tree, err := store.ListTree()
	require.NoError(t, err)

	names := make([]string, 0, len(tree))
	for _, e := range tree {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "src", "README.md", "zeta.txt"}, names)
}

func TestFSStore_ListTree_Deterministic(t *testing.T) {
	store := newTestStore(t)

	first, err := store.ListTree()
	require.NoError(t, err)
	second, err := store.ListTree()
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
	}
}

func TestFSStore_ListTree_SkipsHidden(t *testing.T) {
	store := newTestStore(t)

	tree, err := store.ListTree()
	require.NoError(t, err)

	for _, e := range tree {
		assert.NotEqual(t, ".env", e.Name)
	}
}

func TestFSStore_Read(t *testing.T) {
	store := newTestStore(t)

	content, err := store.Read("src/app.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi')", content.Content)
	assert.Equal(t, "src/app.js", content.Path)
	assert.Equal(t, int64(len("console.log('hi')")), content.Size)
}

func TestFSStore_Read_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read("missing.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFSStore_Read_Directory(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read("src")
	assert.ErrorIs(t, err, domain.ErrIsDirectory)
}

func TestFSStore_PathContainment(t *testing.T) {
	store := newTestStore(t)

	cases := []string{
		"../outside.txt",
		"src/../../outside.txt",
		"/etc/passwd",
		"..",
	}
	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			_, err := store.Read(path)
			assert.ErrorIs(t, err, domain.ErrAccessDenied)

			err = store.Write(path, "x")
			assert.ErrorIs(t, err, domain.ErrAccessDenied)

			err = store.Delete(path)
			assert.ErrorIs(t, err, domain.ErrAccessDenied)
		})
	}

	// 越界检查必须发生在任何存储访问之前
	outside := filepath.Join(store.Root(), "..", "outside.txt")
	_, err := os.Stat(outside)
	assert.True(t, os.IsNotExist(err), "containment check should not touch storage")
}

func TestFSStore_WriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Write("deep/nested/file.txt", "hello"))

	content, err := store.Read("deep/nested/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", content.Content)
}

func TestFSStore_Create_AlreadyExists(t *testing.T) {
	store := newTestStore(t)

	err := store.Create("README.md", domain.EntryFile, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestFSStore_Delete_Recursive(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Delete("src"))

	_, err := store.Read("src/app.js")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFSStore_Rename(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Rename("src/app.js", "src/main.js"))

	_, err := store.Read("src/app.js")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	content, err := store.Read("src/main.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi')", content.Content)
}

func TestFSStore_Rename_OutsideTarget(t *testing.T) {
	store := newTestStore(t)

	err := store.Rename("src/app.js", "../stolen.js")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
