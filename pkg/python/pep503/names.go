// Package pep503 implements the parts of PEP 503 -- Simple Repository API that a static index
// needs: project name normalization and validation.
//
// https://www.python.org/dev/peps/pep-0503/
package pep503

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reSeparators = regexp.MustCompile("[-_.]+")

// NormalizeName returns the normalized form of a project name: runs of "-", "_", and "." are
// collapsed to a single "-", and the result is lowercased.
//
// NormalizeName is idempotent.
func NormalizeName(name string) string {
	return strings.ToLower(reSeparators.ReplaceAllLiteralString(name, "-"))
}

// ValidateName checks that a project name only uses the characters that PEP 503 allows.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty project name")
	}
	// "the only valid characters in a name are the ASCII alphabet, ASCII numbers, `.`, `-`, and
	// `_`."
	for _, char := range name {
		if !(('a' <= char && char <= 'z') ||
			('A' <= char && char <= 'Z') ||
			('0' <= char && char <= '9') ||
			char == '.' ||
			char == '-' ||
			char == '_') {
			return fmt.Errorf("illegal character in project name: %q: %s",
				name, strconv.QuoteRuneToASCII(char))
		}
	}
	return nil
}

// WheelName returns the form of a project name that appears in wheel filenames ("-" replaced by
// "_").  Unlike NormalizeName, the case and any "." are preserved.
func WheelName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
