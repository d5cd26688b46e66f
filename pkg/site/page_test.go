package site_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/pyindex/pkg/site"
)

func renderTestPage(t *testing.T, link string) *site.PackagePage {
	t.Helper()
	tmpl, err := os.ReadFile("testdata/pkg_template.html")
	require.NoError(t, err)
	content := site.RenderPageTemplate(tmpl, site.PageFields{
		PackageName:     "Demo-Pkg",
		Version:         "1.0.0",
		NormVersion:     "1.0.0",
		Author:          "Jane Doe",
		Homepage:        "https://github.com/example/demo-pkg",
		LongDescription: "https://raw.githubusercontent.com/example/demo-pkg/main/README.md",
		Link:            link,
		LatestMain:      "1.0.0",
	})
	page, err := site.ParsePackagePage(content)
	require.NoError(t, err)
	return page
}

func TestPackagePageFromTemplate(t *testing.T) {
	t.Parallel()
	page := renderTestPage(t, "source+https://github.com/example/demo-pkg@1.0.0")

	name, ok := page.Name()
	assert.True(t, ok)
	assert.Equal(t, "Demo-Pkg", name)

	homepage, ok := page.Homepage()
	assert.True(t, ok)
	assert.Equal(t, "https://github.com/example/demo-pkg", homepage)

	latest, ok := page.LatestVersion()
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", latest)

	assert.Equal(t, []site.VersionEntry{{
		ID:      "1.0.0",
		Version: "1.0.0",
		HRef:    "source+https://github.com/example/demo-pkg@1.0.0",
		Title:   "source+https://github.com/example/demo-pkg@1.0.0",
	}}, page.Versions())
}

func TestPackagePageWithVersion(t *testing.T) {
	t.Parallel()
	page := renderTestPage(t, "../packages/demo-pkg/demo_pkg-1.0.0-py3-none-any.whl")

	updated, err := page.WithVersion("2.0.0a1", "2.0.0a1",
		"source+https://github.com/example/demo-pkg@2.0.0a1", "")
	require.NoError(t, err)
	assert.Len(t, page.Versions(), 1, "receiver must not be modified")
	assert.Equal(t, []site.VersionEntry{
		{
			ID:      "1.0.0",
			Version: "1.0.0",
			HRef:    "../packages/demo-pkg/demo_pkg-1.0.0-py3-none-any.whl",
			Title:   "../packages/demo-pkg/demo_pkg-1.0.0-py3-none-any.whl",
		},
		{
			ID:         "2.0.0a1",
			Version:    "2.0.0a1",
			HRef:       "source+https://github.com/example/demo-pkg@2.0.0a1",
			Prerelease: true,
		},
	}, updated.Versions())

	content, err := updated.Render()
	require.NoError(t, err)
	assert.Contains(t, string(content),
		`<div id="2.0.0a1" class="prerelease" onclick="load_readme(&#39;2.0.0a1&#39;, scroll_to_div=true);">`+
			`<a href="source+https://github.com/example/demo-pkg@2.0.0a1">2.0.0a1</a></div>`)

	stable, err := updated.WithVersion("v2.1.0", "2.1.0",
		"../packages/demo-pkg/demo_pkg-2.1.0.tar.gz", "demo_pkg-2.1.0.tar.gz")
	require.NoError(t, err)
	versions := stable.Versions()
	require.Len(t, versions, 3)
	assert.Equal(t, site.VersionEntry{
		ID:      "v2.1.0",
		Version: "v2.1.0",
		HRef:    "../packages/demo-pkg/demo_pkg-2.1.0.tar.gz",
		Title:   "demo_pkg-2.1.0.tar.gz",
	}, versions[2])
}

func TestPackagePageWithLatestAndLink(t *testing.T) {
	t.Parallel()
	page := renderTestPage(t, "git+https://github.com/example/demo-pkg@1.0.0#egg=demo_pkg-1.0.0")

	latest, err := page.WithLatest("1.1.0")
	require.NoError(t, err)
	ver, _ := latest.LatestVersion()
	assert.Equal(t, "1.1.0", ver)

	linked, err := page.WithEntryLink("1.0.0", "git+https://github.com/example/demo-pkg@1.0.0", "")
	require.NoError(t, err)
	assert.Equal(t, "git+https://github.com/example/demo-pkg@1.0.0", linked.Versions()[0].HRef)
	assert.Equal(t, "git+https://github.com/example/demo-pkg@1.0.0#egg=demo_pkg-1.0.0",
		linked.Versions()[0].Title, "empty title leaves the old one")

	_, err = page.WithEntryLink("9.9.9", "x", "")
	assert.EqualError(t, err, "malformed package page: missing version entry 9.9.9")
}

func TestPackagePageMissingPieces(t *testing.T) {
	t.Parallel()
	page, err := site.ParsePackagePage([]byte(`<html><body><section class="versions"></section></body></html>`))
	require.NoError(t, err)

	_, ok := page.Homepage()
	assert.False(t, ok)
	_, ok = page.Name()
	assert.False(t, ok)
	assert.Empty(t, page.Versions())

	_, err = page.WithVersion("1.0.0", "1.0.0", "x", "")
	assert.EqualError(t, err, `malformed package page: missing <section class="versions"> entry to clone`)
	_, err = page.WithLatest("1.0.0")
	assert.EqualError(t, err, `malformed package page: missing element with id="latest-main-version"`)
}

func TestLayoutPackageDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for _, dir := range []string{"demo-pkg", "static", "packages/demo-pkg", "empty-dir", ".github"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	for _, file := range []string{"demo-pkg/index.html", "static/index.html", ".github/index.html", "index.html"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, file), []byte("<html></html>"), 0o644))
	}
	layout := site.DefaultLayout()
	layout.Root = root
	dirs, err := layout.PackageDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo-pkg"}, dirs)
}
