package site

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fluxcd/pkg/lockedfile"
)

// Layout describes where things live in a site checkout.
type Layout struct {
	// Root is the directory holding the global index.
	Root string `json:"root"`
	// IndexFile is the global index, relative to Root.
	IndexFile string `json:"indexFile"`
	// TemplateFile is the per-package page template, relative to Root.
	TemplateFile string `json:"templateFile"`
	// PageFile is the name of the page inside each package directory.
	PageFile string `json:"pageFile"`
	// PackagesDir is the artifact storage tree, relative to Root.
	PackagesDir string `json:"packagesDir"`
	// Reserved top-level directories are never treated as packages.
	Reserved []string `json:"reserved"`
}

func DefaultLayout() Layout {
	return Layout{
		Root:         ".",
		IndexFile:    "index.html",
		TemplateFile: "pkg_template.html",
		PageFile:     "index.html",
		PackagesDir:  "packages",
		Reserved:     []string{".git", ".github", "static", "packages"},
	}
}

func (l Layout) IndexPath() string    { return filepath.Join(l.Root, l.IndexFile) }
func (l Layout) TemplatePath() string { return filepath.Join(l.Root, l.TemplateFile) }

func (l Layout) PackageDir(normName string) string { return filepath.Join(l.Root, normName) }
func (l Layout) PagePath(normName string) string {
	return filepath.Join(l.Root, normName, l.PageFile)
}
func (l Layout) ArtifactDir(normName string) string {
	return filepath.Join(l.Root, l.PackagesDir, normName)
}

// ArtifactLink is the href of an artifact file as seen from the package's page.
func (l Layout) ArtifactLink(normName, filename string) string {
	return ArtifactLink(filepath.ToSlash(l.PackagesDir), normName, filename)
}

func (l Layout) isReserved(name string) bool {
	for _, reserved := range l.Reserved {
		if name == reserved {
			return true
		}
	}
	return false
}

// PackageDirs lists the top-level directories that hold a package page, skipping reserved names.
func (l Layout) PackageDirs() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, entry := range entries {
		if !entry.IsDir() || l.isReserved(entry.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(l.Root, entry.Name(), l.PageFile)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		ret = append(ret, entry.Name())
	}
	return ret, nil
}

// ReadFile reads a whole document while holding a read lock on it.
func ReadFile(filename string) ([]byte, error) {
	return lockedfile.Read(filename)
}

// WriteFile replaces a whole document while holding a write lock on it.
func WriteFile(filename string, content []byte) error {
	return lockedfile.Write(filename, bytes.NewReader(content), 0o644)
}

// TransformFile reads, transforms, and rewrites a document under a single write lock.
func TransformFile(filename string, fn func([]byte) ([]byte, error)) error {
	return lockedfile.Transform(filename, fn)
}
