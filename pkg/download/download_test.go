package download_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/pyindex/pkg/download"
	"github.com/datawire/pyindex/pkg/testutil"
)

func TestDownload(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/demo_pkg-1.0.0.tar.gz":
			_, _ = w.Write([]byte("tarball"))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := dlog.NewTestContext(t, true)
	dl := download.New(ctx, 0, "pyindex-test")
	dir := filepath.Join(t.TempDir(), "packages", "demo-pkg")
	dest := filepath.Join(dir, "demo_pkg-1.0.0.tar.gz")

	did, err := dl.Download(ctx, srv.URL+"/demo_pkg-1.0.0.tar.gz", dest)
	require.NoError(t, err)
	assert.True(t, did)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "tarball", string(content))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	// Present files are not fetched again.
	did, err = dl.Download(ctx, srv.URL+"/demo_pkg-1.0.0.tar.gz", dest)
	require.NoError(t, err)
	assert.False(t, did)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	_, err = dl.Download(ctx, srv.URL+"/missing.whl", filepath.Join(dir, "missing.whl"))
	assert.True(t, errors.Is(err, download.ErrNotFound))

	_, err = dl.Download(ctx, srv.URL+"/broken", filepath.Join(dir, "broken.whl"))
	assert.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits), "no retries by default")

	testutil.AssertFiles(t, []string{"demo_pkg-1.0.0.tar.gz"}, dir)
}
