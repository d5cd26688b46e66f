// Package resolve obtains the wheel and/or sdist for one version of a package: from the
// hosting service's release assets if possible, and by building from source if not.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/datawire/pyindex/pkg/config"
	"github.com/datawire/pyindex/pkg/download"
	"github.com/datawire/pyindex/pkg/hosting"
	"github.com/datawire/pyindex/pkg/pybuild"
	"github.com/datawire/pyindex/pkg/python/pep503"
	"github.com/datawire/pyindex/pkg/site"
)

type ReleaseFinder interface {
	Release(ctx context.Context, repoURL, tag string) (*hosting.Release, error)
}

type Downloader interface {
	Download(ctx context.Context, url, dest string) (bool, error)
}

type Builder interface {
	Build(ctx context.Context, repoURL, tag, outDir string) ([]string, error)
}

// Artifacts are the paths of the files that were obtained; either may be empty.
type Artifacts struct {
	Wheel string
	TarGz string
}

func (a Artifacts) Empty() bool {
	return a.Wheel == "" && a.TarGz == ""
}

// Preferred is the file that a version entry should link to: the wheel if there is one.
func (a Artifacts) Preferred() string {
	if a.Wheel != "" {
		return a.Wheel
	}
	return a.TarGz
}

func (a *Artifacts) add(filename string) {
	switch {
	case a.Wheel == "" && strings.HasSuffix(filename, pybuild.WheelSuffix):
		a.Wheel = filename
	case a.TarGz == "" && strings.HasSuffix(filename, pybuild.SdistSuffix):
		a.TarGz = filename
	}
}

type Resolver struct {
	Releases  ReleaseFinder
	Downloads Downloader
	// Builds may be nil, in which case a version without release assets is an error.
	Builds Builder
}

// New wires a Resolver to the services described by cfg.
func New(ctx context.Context, cfg config.Config) *Resolver {
	return &Resolver{
		Releases: hosting.Client{
			BaseURL:   cfg.Hosting.APIURL,
			UserAgent: cfg.Hosting.UserAgent,
			Token:     cfg.Hosting.Token,
		},
		Downloads: download.New(ctx, cfg.Hosting.DownloadRetries, cfg.Hosting.UserAgent),
		Builds: pybuild.Builder{
			Command: cfg.Build.Command,
			Token:   cfg.Hosting.Token,
		},
	}
}

// findRelease looks up the release for version, and if there is none, for the alternate
// spelling of the tag ("v1.0" <-> "1.0").  Only one alternate is ever tried.
func (r *Resolver) findRelease(ctx context.Context, repoURL, version string) (*hosting.Release, error) {
	release, err := r.Releases.Release(ctx, repoURL, version)
	if errors.Is(err, hosting.ErrReleaseNotFound) {
		alt := site.AlternateTag(version)
		dlog.Infof(ctx, "no release tagged %q, trying %q", version, alt)
		release, err = r.Releases.Release(ctx, repoURL, alt)
		if err == nil && release.Tag == "" {
			release.Tag = alt
		}
	} else if err == nil && release.Tag == "" {
		release.Tag = version
	}
	return release, err
}

// selectAssets picks the package's wheel and any sdist out of a release.
func selectAssets(release *hosting.Release, pkgName string) (wheel, tarGz *hosting.Asset) {
	wheelName := pep503.WheelName(pkgName)
	for i := range release.Assets {
		asset := &release.Assets[i]
		switch {
		case wheel == nil && strings.HasSuffix(asset.Name, pybuild.WheelSuffix) && strings.Contains(asset.Name, wheelName):
			wheel = asset
		case tarGz == nil && strings.HasSuffix(asset.Name, pybuild.SdistSuffix):
			tarGz = asset
		}
	}
	return wheel, tarGz
}

func (r *Resolver) download(ctx context.Context, release *hosting.Release, pkgName, outDir string) Artifacts {
	var ret Artifacts
	wheel, tarGz := selectAssets(release, pkgName)
	for _, asset := range []*hosting.Asset{wheel, tarGz} {
		if asset == nil {
			continue
		}
		dest := filepath.Join(outDir, filepath.Base(asset.Name))
		if _, err := r.Downloads.Download(ctx, asset.DownloadURL, dest); err != nil {
			dlog.Warnf(ctx, "unable to download %s: %v", asset.Name, err)
			continue
		}
		ret.add(dest)
	}
	return ret
}

// findLocal returns artifacts for (pkgName, version) that are already in outDir.
func findLocal(outDir, pkgName, version string) (Artifacts, error) {
	var ret Artifacts
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ret, nil
		}
		return ret, err
	}
	prefix := pep503.WheelName(pep503.NormalizeName(pkgName)) + "-" + site.NormalizeVersion(version)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		rest, ok := strings.CutPrefix(strings.ToLower(name), prefix)
		if !ok || !(rest == pybuild.SdistSuffix || strings.HasPrefix(rest, "-")) {
			continue
		}
		ret.add(filepath.Join(outDir, name))
	}
	return ret, nil
}

// Resolve obtains artifacts for version of the package pkgName, whose source lives at repoURL,
// in to outDir.  The first of these to yield anything wins:
//
//  1. the assets of the release tagged version (or its alternate spelling);
//  2. artifacts already present in outDir;
//  3. building the tag from source.
//
// An error means that nothing could be obtained.
func (r *Resolver) Resolve(ctx context.Context, repoURL, version, pkgName, outDir string) (Artifacts, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Artifacts{}, err
	}
	tag := version
	release, err := r.findRelease(ctx, repoURL, version)
	if err != nil {
		dlog.Warnf(ctx, "unable to get release assets: %v", err)
	} else {
		tag = release.Tag
		if ret := r.download(ctx, release, pkgName, outDir); !ret.Empty() {
			return ret, nil
		}
		dlog.Warnf(ctx, "release %q of %s has no package files", release.Tag, repoURL)
	}

	local, err := findLocal(outDir, pkgName, version)
	if err != nil {
		return Artifacts{}, err
	}
	if !local.Empty() {
		dlog.Infof(ctx, "using existing artifacts in %s", outDir)
		return local, nil
	}

	if r.Builds == nil {
		return Artifacts{}, fmt.Errorf("no artifacts for %s %s", pkgName, version)
	}
	dlog.Infof(ctx, "building %s %s from source", pkgName, version)
	files, err := r.Builds.Build(ctx, repoURL, tag, outDir)
	if err != nil {
		return Artifacts{}, err
	}
	var ret Artifacts
	for _, file := range files {
		ret.add(file)
	}
	if ret.Empty() {
		return ret, fmt.Errorf("building %s %s: no artifacts", pkgName, version)
	}
	return ret, nil
}
