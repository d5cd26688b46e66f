package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/pyindex/pkg/fsutil"
	"github.com/datawire/pyindex/pkg/testutil"
)

func TestCopyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.whl")
	require.NoError(t, os.WriteFile(src, []byte("wheel"), 0o600))

	dst := filepath.Join(dir, "out", "nested", "dst.whl")
	copied, err := fsutil.CopyFile(src, dst)
	require.NoError(t, err)
	assert.True(t, copied)

	ok, err := fsutil.Exists(dst)
	require.NoError(t, err)
	assert.True(t, ok)

	// An existing destination is kept as-is.
	require.NoError(t, os.WriteFile(src, []byte("changed"), 0o600))
	copied, err = fsutil.CopyFile(src, dst)
	require.NoError(t, err)
	assert.False(t, copied)
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	if !assert.Equal(t, "wheel", string(content)) {
		dump, _ := testutil.DumpFile(dst)
		t.Log(dump)
	}

	_, err = fsutil.CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "x"))
	assert.True(t, os.IsNotExist(err))
	testutil.AssertFiles(t, []string{"out/nested/dst.whl", "src.whl"}, dir)
}
