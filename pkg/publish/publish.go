// Package publish registers, updates, and deletes package listings in a site checkout.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/pyindex/pkg/config"
	"github.com/datawire/pyindex/pkg/python/pep503"
	"github.com/datawire/pyindex/pkg/resolve"
	"github.com/datawire/pyindex/pkg/site"
)

// ArtifactResolver is satisfied by *resolve.Resolver.
type ArtifactResolver interface {
	Resolve(ctx context.Context, repoURL, version, pkgName, outDir string) (resolve.Artifacts, error)
}

type Publisher struct {
	Config   config.Config
	Resolver ArtifactResolver
}

// Run performs the action against the site.
func (p *Publisher) Run(ctx context.Context, action Action) error {
	switch action := action.(type) {
	case Register:
		return p.register(ctx, action)
	case Update:
		return p.update(ctx, action)
	case Delete:
		return p.delete(ctx, action)
	default:
		panic(fmt.Errorf("should not happen: unknown action type %T", action))
	}
}

func (p *Publisher) readIndex() (*site.Index, error) {
	content, err := site.ReadFile(p.Config.Site.IndexPath())
	if err != nil {
		return nil, err
	}
	return site.ParseIndex(content)
}

func (p *Publisher) transformIndex(fn func(*site.Index) (*site.Index, error)) error {
	return site.TransformFile(p.Config.Site.IndexPath(), func(content []byte) ([]byte, error) {
		idx, err := site.ParseIndex(content)
		if err != nil {
			return nil, err
		}
		idx, err = fn(idx)
		if err != nil {
			return nil, err
		}
		return idx.Render()
	})
}

// link resolves artifacts for a version and returns the href and title for its entry.  If no
// artifact could be obtained, it degrades to a source-control link with no title.
func (p *Publisher) link(ctx context.Context, name, homepage, version string) (href, title string) {
	normName := pep503.NormalizeName(name)
	arts, err := p.Resolver.Resolve(ctx, homepage, version, name, p.Config.Site.ArtifactDir(normName))
	if err == nil && arts.Empty() {
		err = fmt.Errorf("no artifacts")
	}
	if err != nil {
		dlog.Warnf(ctx, "could not obtain package files for %s %s, linking to source instead: %v",
			name, version, err)
		return site.SourceLink(p.Config.SourcePrefix, homepage, version), ""
	}
	filename := filepath.Base(arts.Preferred())
	return p.Config.Site.ArtifactLink(normName, filename), filename
}

func (p *Publisher) register(ctx context.Context, action Register) error {
	normName := pep503.NormalizeName(action.Name)
	normVersion := site.NormalizeVersion(action.Version)
	card := site.Card{
		Name:        action.Name,
		Version:     normVersion,
		Description: action.Description,
	}

	idx, err := p.readIndex()
	if err != nil {
		return err
	}
	if idx.Has(normName) {
		return &PackageExistsError{Name: normName}
	}
	// Nothing gets written unless the index is able to take the card.
	if _, err := idx.WithCard(card); err != nil {
		return err
	}
	tmpl, err := os.ReadFile(p.Config.Site.TemplatePath())
	if err != nil {
		return err
	}
	readme, err := site.ReadmeURL(action.Homepage, p.Config.ReadmeBranch)
	if err != nil {
		dlog.Warnf(ctx, "no README link for %s: %v", action.Name, err)
		readme = ""
	}

	dlog.Infof(ctx, "registering %s %s", action.Name, action.Version)
	href, title := p.link(ctx, action.Name, action.Homepage, action.Version)

	page, err := site.ParsePackagePage(site.RenderPageTemplate(tmpl, site.PageFields{
		PackageName:     action.Name,
		Version:         action.Version,
		NormVersion:     normVersion,
		Author:          action.Author,
		Homepage:        action.Homepage,
		LongDescription: readme,
		Link:            href,
		LatestMain:      action.Version,
	}))
	if err != nil {
		return err
	}
	if title != "" {
		page, err = page.WithEntryLink(action.Version, href, title)
		if err != nil {
			return err
		}
	}
	content, err := page.Render()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.Config.Site.PackageDir(normName), 0o755); err != nil {
		return err
	}
	if err := site.WriteFile(p.Config.Site.PagePath(normName), content); err != nil {
		return err
	}
	err = p.transformIndex(func(idx *site.Index) (*site.Index, error) {
		if idx.Has(normName) {
			return nil, &PackageExistsError{Name: normName}
		}
		return idx.WithCard(card)
	})
	if err != nil {
		var exists *PackageExistsError
		if !errors.As(err, &exists) {
			p.removeListing(ctx, normName)
		}
		return err
	}
	return nil
}

// removeListing deletes the page and artifact directories of a listing that could not be
// added to the index.
func (p *Publisher) removeListing(ctx context.Context, normName string) {
	for _, dir := range []string{p.Config.Site.PackageDir(normName), p.Config.Site.ArtifactDir(normName)} {
		if err := os.RemoveAll(dir); err != nil {
			dlog.Errorf(ctx, "cleaning up %s: %v", dir, err)
		}
	}
}

func (p *Publisher) update(ctx context.Context, action Update) error {
	normName := pep503.NormalizeName(action.Name)
	normVersion := site.NormalizeVersion(action.Version)
	stable := site.IsStable(action.Version)

	idx, err := p.readIndex()
	if err != nil {
		return err
	}
	if !idx.Has(normName) {
		return &PackageNotFoundError{Name: normName}
	}
	pagePath := p.Config.Site.PagePath(normName)
	content, err := site.ReadFile(pagePath)
	if err != nil {
		return err
	}
	page, err := site.ParsePackagePage(content)
	if err != nil {
		return err
	}
	homepage, ok := page.Homepage()
	if !ok {
		return &site.MalformedError{Document: pagePath, Missing: "homepage URL (#repoHomepage)"}
	}

	dlog.Infof(ctx, "updating %s to %s", action.Name, action.Version)
	href, title := p.link(ctx, action.Name, homepage, action.Version)

	err = site.TransformFile(pagePath, func(content []byte) ([]byte, error) {
		page, err := site.ParsePackagePage(content)
		if err != nil {
			return nil, err
		}
		page, err = page.WithVersion(action.Version, normVersion, href, title)
		if err != nil {
			return nil, err
		}
		if stable {
			page, err = page.WithLatest(action.Version)
			if err != nil {
				return nil, err
			}
		}
		return page.Render()
	})
	if err != nil {
		return err
	}

	if !stable {
		dlog.Infof(ctx, "%s is a pre-release; leaving the main version alone", action.Version)
		return nil
	}
	return p.transformIndex(func(idx *site.Index) (*site.Index, error) {
		return idx.WithVersion(normName, normVersion)
	})
}

func (p *Publisher) delete(ctx context.Context, action Delete) error {
	normName := pep503.NormalizeName(action.Name)

	idx, err := p.readIndex()
	if err != nil {
		return err
	}
	if !idx.Has(normName) {
		return &PackageNotFoundError{Name: normName}
	}

	dlog.Infof(ctx, "deleting %s", action.Name)
	if err := os.RemoveAll(p.Config.Site.PackageDir(normName)); err != nil {
		return err
	}
	if err := os.RemoveAll(p.Config.Site.ArtifactDir(normName)); err != nil {
		return err
	}
	return p.transformIndex(func(idx *site.Index) (*site.Index, error) {
		return idx.WithoutCard(normName)
	})
}
