package testutil

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/net/html"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

func unifiedDiff(exp, act string) string {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(exp),
		B:        difflib.SplitLines(act),
		FromFile: "Expected",
		FromDate: "",
		ToFile:   "Actual",
		ToDate:   "",
		Context:  1,
	})
	return diff
}

// CanonicalHTML parses and re-renders an HTML document, so that two documents that differ only
// in the parser's implied elements compare equal.
func CanonicalHTML(doc string) (string, error) {
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AssertEqualHTML compares two HTML documents after canonicalizing them, and reports a unified
// diff if they differ.
func AssertEqualHTML(t *testing.T, exp, act string) bool {
	t.Helper()
	expStr, err := CanonicalHTML(exp)
	if err != nil {
		t.Errorf("error parsing expected HTML: %v", err)
		return false
	}
	actStr, err := CanonicalHTML(act)
	if err != nil {
		t.Errorf("error parsing actual HTML: %v", err)
		return false
	}
	if expStr != actStr {
		t.Errorf("HTML diff:\n%s", unifiedDiff(expStr, actStr))
		return false
	}
	return true
}

// DumpDirListing returns a table of the regular files under dir (relative path and size), in
// lexical order.
func DumpDirListing(dir string) (string, error) {
	ret := new(strings.Builder)
	table := tabwriter.NewWriter(
		ret, // output
		0,   // minwidth
		1,   // tabwidth
		1,   // padding
		' ', // padchar
		0)   // flags
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size := ""
		if info.Mode().IsRegular() {
			size = fmt.Sprintf("% 10d", info.Size())
		}
		_, err = fmt.Fprintln(table, strings.Join([]string{
			"",
			info.Mode().Type().String(),
			size,
			filepath.ToSlash(rel),
		}, "\t"))
		return err
	})
	if err != nil {
		return "", err
	}
	if err := table.Flush(); err != nil {
		return "", err
	}
	return ret.String(), nil
}

// DumpFile returns a readable dump of a file's content, for use in failure messages.
func DumpFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s =%s", filepath.Base(filename), spewConfig.Sdump(content)), nil
}

// ListFiles returns the slash-separated relative paths of the regular files under dir, in
// lexical order.  A dir that does not exist has no files.
func ListFiles(dir string) ([]string, error) {
	var ret []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		ret = append(ret, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return ret, nil
}

// AssertFiles checks that the regular files under dir are exactly exp.  On mismatch the full
// listing is included in the failure message.
func AssertFiles(t *testing.T, exp []string, dir string) bool {
	t.Helper()
	act, err := ListFiles(dir)
	if err != nil {
		t.Errorf("error listing %q: %v", dir, err)
		return false
	}
	if strings.Join(exp, "\n") != strings.Join(act, "\n") {
		listing, _ := DumpDirListing(dir)
		t.Errorf("Files diff:\n%s\nListing:\n%s",
			unifiedDiff(strings.Join(exp, "\n")+"\n", strings.Join(act, "\n")+"\n"), listing)
		return false
	}
	return true
}
