package resolve_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/pyindex/pkg/hosting"
	"github.com/datawire/pyindex/pkg/resolve"
	"github.com/datawire/pyindex/pkg/testutil"
)

type fakeReleases struct {
	releases map[string]*hosting.Release
	err      error
	asked    []string
}

func (f *fakeReleases) Release(_ context.Context, _, tag string) (*hosting.Release, error) {
	f.asked = append(f.asked, tag)
	if f.err != nil {
		return nil, f.err
	}
	if rel, ok := f.releases[tag]; ok {
		return rel, nil
	}
	return nil, hosting.ErrReleaseNotFound
}

type fakeDownloads struct {
	fail map[string]bool
}

func (f *fakeDownloads) Download(_ context.Context, url, dest string) (bool, error) {
	if f.fail[url] {
		return false, errors.New("HTTP 500 Internal Server Error")
	}
	if err := os.WriteFile(dest, []byte(url), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

type fakeBuilds struct {
	files []string
	err   error
	tags  []string
}

func (f *fakeBuilds) Build(_ context.Context, _, tag, outDir string) ([]string, error) {
	f.tags = append(f.tags, tag)
	if f.err != nil {
		return nil, f.err
	}
	var ret []string
	for _, name := range f.files {
		filename := filepath.Join(outDir, name)
		if err := os.WriteFile(filename, nil, 0o644); err != nil {
			return nil, err
		}
		ret = append(ret, filename)
	}
	return ret, nil
}

func asset(name string) hosting.Asset {
	return hosting.Asset{
		Name:        name,
		DownloadURL: "https://example.com/dl/" + name,
	}
}

func TestResolveAlternateTagOnce(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	outDir := t.TempDir()

	releases := &fakeReleases{}
	builds := &fakeBuilds{err: errors.New("build failed")}
	resolver := &resolve.Resolver{
		Releases:  releases,
		Downloads: &fakeDownloads{},
		Builds:    builds,
	}
	_, err := resolver.Resolve(ctx, "https://github.com/o/r", "1.0.0", "demo-pkg", outDir)
	assert.EqualError(t, err, "build failed")
	assert.Equal(t, []string{"1.0.0", "v1.0.0"}, releases.asked)
	assert.Equal(t, []string{"1.0.0"}, builds.tags)

	releases.asked = nil
	builds.tags = nil
	_, err = resolver.Resolve(ctx, "https://github.com/o/r", "v2.0", "demo-pkg", outDir)
	assert.Error(t, err)
	assert.Equal(t, []string{"v2.0", "2.0"}, releases.asked)
}

func TestResolveFromRelease(t *testing.T) {
	t.Parallel()
	type testcase struct {
		Version      string
		Assets       []hosting.Asset
		FailDownload string
		ExpWheel     string
		ExpTarGz     string
		ExpBuilt     bool
	}
	testcases := map[string]testcase{
		"both": {
			Version: "v1.0.0",
			Assets: []hosting.Asset{
				asset("demo_pkg-1.0.0.tar.gz"),
				asset("other_pkg-1.0.0-py3-none-any.whl"),
				asset("demo_pkg-1.0.0-py3-none-any.whl"),
			},
			ExpWheel: "demo_pkg-1.0.0-py3-none-any.whl",
			ExpTarGz: "demo_pkg-1.0.0.tar.gz",
		},
		"tarball-only": {
			Version:  "1.0.0",
			Assets:   []hosting.Asset{asset("demo-pkg-1.0.0.tar.gz"), asset("checksums.txt")},
			ExpTarGz: "demo-pkg-1.0.0.tar.gz",
		},
		"alternate-tag": {
			Version:  "1.0.0",
			Assets:   []hosting.Asset{asset("demo_pkg-1.0.0-py3-none-any.whl")},
			ExpWheel: "demo_pkg-1.0.0-py3-none-any.whl",
		},
		"no-package-files": {
			Version:  "v1.0.0",
			Assets:   []hosting.Asset{asset("checksums.txt")},
			ExpWheel: "demo_pkg-1.0.0-py3-none-any.whl",
			ExpBuilt: true,
		},
		"download-fails": {
			Version:      "v1.0.0",
			Assets:       []hosting.Asset{asset("demo_pkg-1.0.0-py3-none-any.whl"), asset("demo_pkg-1.0.0.tar.gz")},
			FailDownload: "demo_pkg-1.0.0-py3-none-any.whl",
			ExpTarGz:     "demo_pkg-1.0.0.tar.gz",
		},
	}
	for tcName, tcData := range testcases {
		tcData := tcData
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			ctx := dlog.NewTestContext(t, true)
			outDir := t.TempDir()

			// Releases are always tagged with a "v"; "alternate-tag" asks without one.
			releases := &fakeReleases{releases: map[string]*hosting.Release{
				"v1.0.0": {Tag: "v1.0.0", Assets: tcData.Assets},
			}}
			downloads := &fakeDownloads{fail: map[string]bool{}}
			if tcData.FailDownload != "" {
				downloads.fail[asset(tcData.FailDownload).DownloadURL] = true
			}
			builds := &fakeBuilds{files: []string{"demo_pkg-1.0.0-py3-none-any.whl"}}
			resolver := &resolve.Resolver{
				Releases:  releases,
				Downloads: downloads,
				Builds:    builds,
			}

			arts, err := resolver.Resolve(ctx, "https://github.com/o/r", tcData.Version, "demo-pkg", outDir)
			require.NoError(t, err)
			expected := resolve.Artifacts{}
			var expFiles []string
			if tcData.ExpWheel != "" {
				expected.Wheel = filepath.Join(outDir, tcData.ExpWheel)
				expFiles = append(expFiles, tcData.ExpWheel)
			}
			if tcData.ExpTarGz != "" {
				expected.TarGz = filepath.Join(outDir, tcData.ExpTarGz)
				expFiles = append(expFiles, tcData.ExpTarGz)
			}
			assert.Equal(t, expected, arts)
			if tcData.ExpBuilt {
				assert.Equal(t, []string{"v1.0.0"}, builds.tags)
			} else {
				assert.Empty(t, builds.tags)
			}
			testutil.AssertFiles(t, expFiles, outDir)
		})
	}
}

func TestArtifactsPreferred(t *testing.T) {
	t.Parallel()
	arts := resolve.Artifacts{TarGz: "/x/demo-pkg-1.0.0.tar.gz"}
	assert.Equal(t, "/x/demo-pkg-1.0.0.tar.gz", arts.Preferred())
	arts.Wheel = "/x/demo_pkg-1.0.0-py3-none-any.whl"
	assert.Equal(t, "/x/demo_pkg-1.0.0-py3-none-any.whl", arts.Preferred())
	assert.True(t, resolve.Artifacts{}.Empty())
}

func TestResolveReusesLocalArtifacts(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	outDir := t.TempDir()
	for _, name := range []string{
		"demo_pkg-1.0.0-py3-none-any.whl",
		"demo_pkg-1.0.0.tar.gz",
		"demo_pkg-1.0.0.post1.tar.gz",
		"demo_pkg-1.0.1-py3-none-any.whl",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(outDir, name), nil, 0o644))
	}

	builds := &fakeBuilds{err: errors.New("should not build")}
	resolver := &resolve.Resolver{
		Releases:  &fakeReleases{err: errors.New("API rate limit exceeded")},
		Downloads: &fakeDownloads{},
		Builds:    builds,
	}
	arts, err := resolver.Resolve(ctx, "https://github.com/o/r", "v1.0.0", "Demo.Pkg", outDir)
	require.NoError(t, err)
	assert.Equal(t, resolve.Artifacts{
		Wheel: filepath.Join(outDir, "demo_pkg-1.0.0-py3-none-any.whl"),
		TarGz: filepath.Join(outDir, "demo_pkg-1.0.0.tar.gz"),
	}, arts)
	assert.Empty(t, builds.tags)
}

func TestResolveWithoutBuilder(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, true)
	resolver := &resolve.Resolver{
		Releases:  &fakeReleases{},
		Downloads: &fakeDownloads{},
	}
	_, err := resolver.Resolve(ctx, "https://github.com/o/r", "1.0.0", "demo-pkg", t.TempDir())
	assert.EqualError(t, err, "no artifacts for demo-pkg 1.0.0")
}
