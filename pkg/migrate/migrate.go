// Package migrate rewrites the version links of already-published package pages to point at
// downloaded artifacts instead of source-control URLs.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/pyindex/pkg/config"
	"github.com/datawire/pyindex/pkg/python/pep503"
	"github.com/datawire/pyindex/pkg/resolve"
	"github.com/datawire/pyindex/pkg/site"
)

// ErrNoHomepage is returned for a page that has no repository button to take the homepage
// from.
var ErrNoHomepage = errors.New("no homepage found")

type ArtifactResolver interface {
	Resolve(ctx context.Context, repoURL, version, pkgName, outDir string) (resolve.Artifacts, error)
}

type Migrator struct {
	Config   config.Config
	Resolver ArtifactResolver
}

// Result tallies a migration run.
type Result struct {
	// Total is the number of package directories found.
	Total int
	// Migrated are the packages whose page was rewritten.
	Migrated []string
	// Failed are the packages that could not be migrated, and why.
	Failed map[string]error
}

func (r Result) String() string {
	return fmt.Sprintf("Successfully migrated %d/%d packages", len(r.Migrated), r.Total)
}

// Run migrates every package directory in the site.  A failure in one package is recorded and
// does not stop the others; the returned error is only for failing to enumerate packages.
func (m *Migrator) Run(ctx context.Context) (Result, error) {
	result := Result{
		Failed: make(map[string]error),
	}
	dirs, err := m.Config.Site.PackageDirs()
	if err != nil {
		return result, err
	}
	result.Total = len(dirs)
	dlog.Infof(ctx, "found %d packages to migrate: %v", len(dirs), dirs)

	for _, dir := range dirs {
		changed, err := m.migratePackage(ctx, dir)
		switch {
		case errors.Is(err, ErrNoHomepage):
			dlog.Warnf(ctx, "%s: %v, skipping", dir, err)
			result.Failed[dir] = err
		case err != nil:
			dlog.Errorf(ctx, "%s: error migrating: %v", dir, err)
			result.Failed[dir] = err
		case changed:
			dlog.Infof(ctx, "%s: migration complete", dir)
			result.Migrated = append(result.Migrated, dir)
		default:
			dlog.Infof(ctx, "%s: no changes needed", dir)
		}
	}
	return result, nil
}

func (m *Migrator) migratePackage(ctx context.Context, dir string) (bool, error) {
	pagePath := filepath.Join(m.Config.Site.Root, dir, m.Config.Site.PageFile)
	content, err := site.ReadFile(pagePath)
	if err != nil {
		return false, err
	}
	page, err := site.ParsePackagePage(content)
	if err != nil {
		return false, err
	}
	name, ok := page.Name()
	if !ok {
		name = dir
	}
	homepage, ok := page.Homepage()
	if !ok {
		return false, ErrNoHomepage
	}
	normName := pep503.NormalizeName(name)
	outDir := m.Config.Site.ArtifactDir(normName)

	changed := false
	for _, entry := range page.Versions() {
		dlog.Infof(ctx, "%s: processing version %s", dir, entry.Version)
		href, title := site.StripFragment(entry.HRef), ""
		arts, err := m.Resolver.Resolve(ctx, homepage, entry.Version, name, outDir)
		switch {
		case err != nil:
			dlog.Warnf(ctx, "%s: failed to obtain files for %s: %v", dir, entry.Version, err)
		case !arts.Empty():
			title = filepath.Base(arts.Preferred())
			href = m.Config.Site.ArtifactLink(normName, title)
		}
		if href == entry.HRef {
			continue
		}
		page, err = page.WithEntryLink(entry.ID, href, title)
		if err != nil {
			return false, err
		}
		dlog.Infof(ctx, "%s: %s => %s", dir, entry.Version, href)
		changed = true
	}
	if !changed {
		return false, nil
	}
	content, err = page.Render()
	if err != nil {
		return false, err
	}
	return true, site.WriteFile(pagePath, content)
}
