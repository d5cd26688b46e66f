package site_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/pyindex/pkg/site"
	"github.com/datawire/pyindex/pkg/testutil"
)

func readIndex(t *testing.T) ([]byte, *site.Index) {
	t.Helper()
	content, err := os.ReadFile("testdata/index.html")
	require.NoError(t, err)
	idx, err := site.ParseIndex(content)
	require.NoError(t, err)
	return content, idx
}

func TestIndexCard(t *testing.T) {
	t.Parallel()
	_, idx := readIndex(t)

	assert.True(t, idx.Has("existing-pkg"))
	assert.False(t, idx.Has("demo-pkg"))

	card, ok := idx.Card("existing-pkg")
	require.True(t, ok)
	assert.Equal(t, site.Card{
		Name:        "Existing_Pkg",
		Version:     "0.3.0",
		Description: "Something that was already here",
	}, card)
}

func TestIndexWithCardRoundTrip(t *testing.T) {
	t.Parallel()
	orig, idx := readIndex(t)

	added, err := idx.WithCard(site.Card{
		Name:        "Demo.Pkg",
		Version:     "1.0.0",
		Description: "A demo",
	})
	require.NoError(t, err)
	assert.False(t, idx.Has("demo-pkg"), "receiver must not be modified")
	assert.True(t, added.Has("demo-pkg"))

	// Go through bytes, the way the publisher does.
	content, err := added.Render()
	require.NoError(t, err)
	assert.Contains(t, string(content),
		`<a class="card" href="demo-pkg/"><h3>Demo.Pkg</h3><span class="version">1.0.0</span><p>A demo</p></a>`)
	reparsed, err := site.ParseIndex(content)
	require.NoError(t, err)

	removed, err := reparsed.WithoutCard("demo-pkg")
	require.NoError(t, err)
	final, err := removed.Render()
	require.NoError(t, err)
	testutil.AssertEqualHTML(t, string(orig), string(final))
}

func TestIndexWithVersion(t *testing.T) {
	t.Parallel()
	_, idx := readIndex(t)

	bumped, err := idx.WithVersion("existing-pkg", "0.4.0")
	require.NoError(t, err)
	card, _ := bumped.Card("existing-pkg")
	assert.Equal(t, "0.4.0", card.Version)
	card, _ = idx.Card("existing-pkg")
	assert.Equal(t, "0.3.0", card.Version)

	_, err = idx.WithVersion("demo-pkg", "1.0.0")
	var malformed *site.MalformedError
	assert.True(t, errors.As(err, &malformed))
}

func TestIndexMissingList(t *testing.T) {
	t.Parallel()
	idx, err := site.ParseIndex([]byte(`<html><body><p>nothing</p></body></html>`))
	require.NoError(t, err)
	_, err = idx.WithCard(site.Card{Name: "x"})
	assert.EqualError(t, err,
		`malformed global index: missing element with id="packages" or <h6 class="text-header">`)
}

func TestIndexFlatLayout(t *testing.T) {
	t.Parallel()
	orig, err := os.ReadFile("testdata/index_flat.html")
	require.NoError(t, err)
	idx, err := site.ParseIndex(orig)
	require.NoError(t, err)

	card, ok := idx.Card("existing-pkg")
	require.True(t, ok)
	assert.Equal(t, site.Card{
		Name:        "Existing_Pkg",
		Version:     "0.3.0",
		Description: "Something that was already here",
	}, card)

	added, err := idx.WithCard(site.Card{
		Name:        "Demo.Pkg",
		Version:     "1.0.0",
		Description: "A demo",
	})
	require.NoError(t, err)
	content, err := added.Render()
	require.NoError(t, err)
	assert.Contains(t, string(content),
		`<h6 class="text-header">Packages</h6><a class="card" href="demo-pkg/">Demo.Pkg<span></span>`+
			`<span class="version">1.0.0</span><br/><span class="description">A demo</span></a>`)

	reparsed, err := site.ParseIndex(content)
	require.NoError(t, err)
	card, ok = reparsed.Card("demo-pkg")
	require.True(t, ok)
	assert.Equal(t, site.Card{Name: "Demo.Pkg", Version: "1.0.0", Description: "A demo"}, card)

	bumped, err := reparsed.WithVersion("existing-pkg", "0.4.0")
	require.NoError(t, err)
	card, _ = bumped.Card("existing-pkg")
	assert.Equal(t, "0.4.0", card.Version)

	removed, err := reparsed.WithoutCard("demo-pkg")
	require.NoError(t, err)
	final, err := removed.Render()
	require.NoError(t, err)
	testutil.AssertEqualHTML(t, string(orig), string(final))
}
