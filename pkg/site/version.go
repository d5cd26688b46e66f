package site

import (
	"strings"
)

// prereleaseMarkers are matched as plain substrings, not as version components; "1.2.3beta",
// "1.2.3b1", and "1.2.3a" are all pre-releases.
var prereleaseMarkers = []string{"dev", "a", "b", "rc"}

// IsStable reports whether a version string names a stable release.  Only stable versions
// advance a listing's main version.
func IsStable(version string) bool {
	for _, marker := range prereleaseMarkers {
		if strings.Contains(version, marker) {
			return false
		}
	}
	return true
}

// NormalizeVersion strips at most one leading "v" or "V" and lowercases the rest.
func NormalizeVersion(version string) string {
	if strings.HasPrefix(version, "v") || strings.HasPrefix(version, "V") {
		version = version[1:]
	}
	return strings.ToLower(version)
}

// AlternateTag returns the other spelling of a release tag: with the leading "v" removed if it
// has one, or added if it doesn't.
func AlternateTag(version string) string {
	if strings.HasPrefix(version, "v") {
		return strings.TrimPrefix(version, "v")
	}
	return "v" + version
}
