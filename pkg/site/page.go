package site

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/datawire/pyindex/pkg/htmlutil"
)

const pageDoc = "package page"

// VersionEntry is one row of a package page's version list.
type VersionEntry struct {
	// ID is the entry's id attribute (the version as it was published).
	ID string
	// Version is the version to resolve artifacts for: taken from a source-control link when
	// the entry has one, otherwise the ID.
	Version string
	HRef    string
	Title   string
	// Prerelease is whether the entry carries the "prerelease" class.
	Prerelease bool
}

// PackagePage is a parsed per-package page.  Like Index, it is never modified in place.
type PackagePage struct {
	root *html.Node
}

func ParsePackagePage(content []byte) (*PackagePage, error) {
	root, err := htmlutil.Parse(content)
	if err != nil {
		return nil, err
	}
	return &PackagePage{root: root}, nil
}

func (p *PackagePage) Render() ([]byte, error) {
	return htmlutil.Render(p.root)
}

func (p *PackagePage) clone() *PackagePage {
	return &PackagePage{root: htmlutil.Clone(p.root)}
}

// Name returns the package name from the page header.
func (p *PackagePage) Name() (string, bool) {
	header := htmlutil.Find(p.root, htmlutil.ElementWithClass("section", "header"))
	if header == nil {
		return "", false
	}
	name := htmlutil.Find(header, htmlutil.ElementWithClass("", "name"))
	if name == nil {
		return "", false
	}
	text := strings.TrimSpace(htmlutil.Text(name))
	return text, text != ""
}

var reOpenLink = regexp.MustCompile(`openLinkInNewTab\('(.+?)'\)`)

// Homepage recovers the package homepage from the repository button's onclick handler.
func (p *PackagePage) Homepage() (string, bool) {
	button := htmlutil.Find(p.root, htmlutil.ElementWithID("repoHomepage"))
	onclick, ok := htmlutil.GetAttr(button, "", "onclick")
	if !ok {
		return "", false
	}
	match := reOpenLink.FindStringSubmatch(onclick)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// LatestVersion returns the page's main version label.
func (p *PackagePage) LatestVersion() (string, bool) {
	span := htmlutil.Find(p.root, htmlutil.ElementWithID(latestID))
	if span == nil {
		return "", false
	}
	return strings.TrimSpace(htmlutil.Text(span)), true
}

const latestID = "latest-main-version"

func (p *PackagePage) versionSection() *html.Node {
	return htmlutil.Find(p.root, htmlutil.ElementWithClass("section", "versions"))
}

func entryNodes(section *html.Node) []*html.Node {
	if section == nil {
		return nil
	}
	return htmlutil.FindAll(section, func(node *html.Node) bool {
		if node == section || !htmlutil.Element("div")(node) {
			return false
		}
		id, ok := htmlutil.GetAttr(node, "", "id")
		return ok && id != "" && id != "versions"
	})
}

// Versions lists the page's version entries in document order.  Entries without a link are
// skipped.
func (p *PackagePage) Versions() []VersionEntry {
	var ret []VersionEntry
	for _, div := range entryNodes(p.versionSection()) {
		anchor := htmlutil.Find(div, htmlutil.Element("a"))
		href, ok := htmlutil.GetAttr(anchor, "", "href")
		if !ok || href == "" {
			continue
		}
		id, _ := htmlutil.GetAttr(div, "", "id")
		entry := VersionEntry{
			ID:         id,
			Version:    id,
			HRef:       href,
			Prerelease: htmlutil.HasClass(div, "prerelease"),
		}
		entry.Title, _ = htmlutil.GetAttr(anchor, "", "title")
		if version, ok := VersionFromLink(href); ok {
			entry.Version = version
		}
		ret = append(ret, entry)
	}
	return ret
}

func (p *PackagePage) findEntry(id string) *html.Node {
	for _, div := range entryNodes(p.versionSection()) {
		if val, _ := htmlutil.GetAttr(div, "", "id"); val == id {
			return div
		}
	}
	return nil
}

// WithVersion returns a copy of the page with a new entry appended to the version list.  The
// new entry is structurally cloned from the last existing one.  text is what the entry
// displays; title is omitted when empty.
func (p *PackagePage) WithVersion(version, text, href, title string) (*PackagePage, error) {
	ret := p.clone()
	entries := entryNodes(ret.versionSection())
	if len(entries) == 0 {
		return nil, &MalformedError{Document: pageDoc, Missing: `<section class="versions"> entry to clone`}
	}
	last := entries[len(entries)-1]
	lastID, _ := htmlutil.GetAttr(last, "", "id")

	div := htmlutil.Clone(last)
	htmlutil.SetAttr(div, "id", version)
	if IsStable(version) {
		htmlutil.SetAttr(div, "class", "")
	} else {
		htmlutil.SetAttr(div, "class", "prerelease")
	}
	if onclick, ok := htmlutil.GetAttr(div, "", "onclick"); ok && lastID != "" {
		htmlutil.SetAttr(div, "onclick", strings.ReplaceAll(onclick, "'"+lastID+"'", "'"+version+"'"))
	}
	anchor := htmlutil.Find(div, htmlutil.Element("a"))
	if anchor == nil {
		return nil, &MalformedError{Document: pageDoc, Missing: "<a> in version entry " + lastID}
	}
	setLink(anchor, href, title)
	if title == "" {
		htmlutil.RemoveAttr(anchor, "title")
	}
	htmlutil.SetText(anchor, text)

	last.Parent.InsertBefore(div, last.NextSibling)
	return ret, nil
}

// WithEntryLink returns a copy of the page with the link of the entry with the given id
// replaced.  The title is left alone when empty.
func (p *PackagePage) WithEntryLink(id, href, title string) (*PackagePage, error) {
	ret := p.clone()
	div := ret.findEntry(id)
	if div == nil {
		return nil, &MalformedError{Document: pageDoc, Missing: "version entry " + id}
	}
	anchor := htmlutil.Find(div, htmlutil.Element("a"))
	if anchor == nil {
		return nil, &MalformedError{Document: pageDoc, Missing: "<a> in version entry " + id}
	}
	setLink(anchor, href, title)
	return ret, nil
}

func setLink(anchor *html.Node, href, title string) {
	htmlutil.SetAttr(anchor, "href", href)
	if title != "" {
		htmlutil.SetAttr(anchor, "title", title)
	}
}

// WithLatest returns a copy of the page with the main version label replaced.
func (p *PackagePage) WithLatest(version string) (*PackagePage, error) {
	ret := p.clone()
	span := htmlutil.Find(ret.root, htmlutil.ElementWithID(latestID))
	if span == nil {
		return nil, &MalformedError{Document: pageDoc, Missing: `element with id="` + latestID + `"`}
	}
	htmlutil.SetText(span, version)
	return ret, nil
}
