// Package pybuild builds a wheel and an sdist from a tagged revision of a Python project's
// repository.
package pybuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/datawire/dlib/dexec"
	"github.com/datawire/dlib/dlog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/datawire/pyindex/pkg/fsutil"
	"github.com/datawire/pyindex/pkg/reproducible"
)

// ErrTagNotFound is returned when the repository has no such tag.
var ErrTagNotFound = errors.New("tag not found")

const (
	WheelSuffix = ".whl"
	SdistSuffix = ".tar.gz"
)

// Builder clones and builds.  The zero value is not usable; Command must be set.
type Builder struct {
	// Command is the build frontend, e.g. ["python3", "-m", "build"].  "--outdir DIR SRCDIR"
	// is appended.
	Command []string
	// Token, if set, authenticates the clone.
	Token string
}

func (b Builder) auth() transport.AuthMethod {
	if b.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: b.Token,
	}
}

// clone makes a shallow clone of the tag into dir, and returns the time of the tagged commit.
func (b Builder) clone(ctx context.Context, repoURL, tag, dir string) (time.Time, error) {
	ref := plumbing.NewTagReferenceName(tag)
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           repoURL,
		Auth:          b.auth(),
		ReferenceName: ref,
		SingleBranch:  true,
		Depth:         1,
		Tags:          git.NoTags,
	})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || isNoMatchingRefErr(err, ref) {
			return time.Time{}, fmt.Errorf("unable to clone %q: %w: %s", repoURL, ErrTagNotFound, tag)
		}
		return time.Time{}, fmt.Errorf("unable to clone %q: %w", repoURL, err)
	}
	head, err := repo.Head()
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to resolve HEAD of tag %q: %w", tag, err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		// Annotated tags point at a tag object, not a commit; the clone itself is fine.
		return time.Time{}, nil
	}
	return commit.Committer.When, nil
}

func isNoMatchingRefErr(err error, ref plumbing.ReferenceName) bool {
	var noMatch git.NoMatchingRefSpecError
	if errors.As(err, &noMatch) {
		return true
	}
	return strings.Contains(err.Error(), fmt.Sprintf("couldn't find remote ref %q", ref.String())) ||
		strings.Contains(err.Error(), "reference not found")
}

// Build clones repoURL at tag in to a scratch directory, runs the build frontend there, and
// copies the first wheel and the first sdist that it produced in to outDir.  It returns the
// paths of the files in outDir.
func (b Builder) Build(ctx context.Context, repoURL, tag, outDir string) (_ []string, err error) {
	if len(b.Command) == 0 {
		return nil, fmt.Errorf("pybuild: no build command configured")
	}
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	tmpdir, err := os.MkdirTemp("", "pyindex-build.")
	if err != nil {
		return nil, err
	}
	defer func() {
		maybeSetErr(os.RemoveAll(tmpdir))
	}()
	srcDir := filepath.Join(tmpdir, "src")
	distDir := filepath.Join(tmpdir, "dist")

	dlog.Infof(ctx, "cloning %s at %s", repoURL, tag)
	commitTime, err := b.clone(ctx, repoURL, tag, srcDir)
	if err != nil {
		return nil, err
	}
	if commitTime.IsZero() {
		commitTime = time.Now()
	}

	args := append(append([]string(nil), b.Command...), "--outdir", distDir, srcDir)
	cmd := dexec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = srcDir
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stderr
	cmd.Env = append(os.Environ(),
		reproducible.Env(reproducible.SourceDateEpoch(commitTime)))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("building %s at %s: %w", repoURL, tag, err)
	}

	produced, err := selectDists(distDir)
	if err != nil {
		return nil, err
	}
	if len(produced) == 0 {
		return nil, fmt.Errorf("building %s at %s: no wheel or sdist produced", repoURL, tag)
	}
	var ret []string
	for _, name := range produced {
		dst := filepath.Join(outDir, name)
		if _, err := fsutil.CopyFile(filepath.Join(distDir, name), dst); err != nil {
			return nil, err
		}
		ret = append(ret, dst)
	}
	return ret, nil
}

// selectDists returns the (lexically) first wheel and first sdist in dir.
func selectDists(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var wheel, sdist string
	for _, name := range names {
		switch {
		case wheel == "" && strings.HasSuffix(name, WheelSuffix):
			wheel = name
		case sdist == "" && strings.HasSuffix(name, SdistSuffix):
			sdist = name
		}
	}
	var ret []string
	for _, name := range []string{wheel, sdist} {
		if name != "" {
			ret = append(ret, name)
		}
	}
	return ret, nil
}
