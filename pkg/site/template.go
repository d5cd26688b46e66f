package site

import (
	"html"
	"strings"
)

// PageFields are the values substituted into the package page template.
type PageFields struct {
	PackageName     string
	Version         string
	NormVersion     string
	Author          string
	Homepage        string
	LongDescription string
	Link            string
	LatestMain      string
}

// RenderPageTemplate substitutes the "_package_name", "_version", "_norm_version", "_author",
// "_homepage", "_long_description", "_link", and "_latest_main" placeholders in a page template.
// Values are HTML-escaped.
func RenderPageTemplate(tmpl []byte, fields PageFields) []byte {
	replacer := strings.NewReplacer(
		"_package_name", html.EscapeString(fields.PackageName),
		"_long_description", html.EscapeString(fields.LongDescription),
		"_latest_main", html.EscapeString(fields.LatestMain),
		"_homepage", html.EscapeString(fields.Homepage),
		"_norm_version", html.EscapeString(fields.NormVersion),
		"_version", html.EscapeString(fields.Version),
		"_author", html.EscapeString(fields.Author),
		"_link", html.EscapeString(fields.Link),
	)
	return []byte(replacer.Replace(string(tmpl)))
}
