package site

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultSourcePrefix is prepended to a homepage to form a source-control reference link.
const DefaultSourcePrefix = "source+"

// SourceLink returns the source-control reference link used when no artifact is available:
// "<prefix><homepage>@<version>", with no fragment.
func SourceLink(prefix, homepage, version string) string {
	return prefix + homepage + "@" + version
}

// ArtifactLink returns the href of an artifact as seen from a package page.
func ArtifactLink(packagesDir, normName, filename string) string {
	return path.Join("..", packagesDir, normName, filename)
}

var reLinkVersion = regexp.MustCompile(`@([^#]+)`)

// VersionFromLink extracts the version out of a source-control reference link.  ok is false if
// the link doesn't carry one.
func VersionFromLink(href string) (version string, ok bool) {
	if !strings.Contains(href, "@") {
		return "", false
	}
	match := reLinkVersion.FindStringSubmatch(href)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// StripFragment removes a trailing "#egg=..." (or any other "#...") fragment from a link.
func StripFragment(href string) string {
	if idx := strings.Index(href, "#"); idx >= 0 {
		return href[:idx]
	}
	return href
}

// ReadmeURL rewrites a GitHub homepage URL into the raw URL of the README on the given branch.
func ReadmeURL(homepage, branch string) (string, error) {
	owner, repo, err := SplitRepoURL(homepage)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/README.md", owner, repo, branch), nil
}

// SplitRepoURL splits a repository URL into owner and repo, taking the last two path segments.
// A trailing "/tree/<ref>", "/blob/<ref>/..." or GitLab-style "/-/..." suffix is ignored, as is
// a ".git" extension on the repo.
func SplitRepoURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", err
	}
	var parts []string
	for _, part := range strings.Split(u.Path, "/") {
		if part == "" {
			continue
		}
		if len(parts) >= 2 && (part == "-" || part == "tree" || part == "blob") {
			break
		}
		parts = append(parts, part)
	}
	if u.Host == "" || len(parts) < 2 {
		return "", "", fmt.Errorf("not a repository URL: %q", repoURL)
	}
	return parts[len(parts)-2], strings.TrimSuffix(parts[len(parts)-1], ".git"), nil
}
