// Package config holds the explicit configuration that is built once at the process boundary
// and passed to the publisher, migrator, and resolver.
package config

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/datawire/pyindex/pkg/python/pep503"
	"github.com/datawire/pyindex/pkg/site"
)

// Config describes the site and the services used to fill it.
type Config struct {
	Site site.Layout `json:"site"`

	// SourcePrefix is prepended to "<homepage>@<version>" to form the link used when no
	// artifact could be obtained.
	SourcePrefix string `json:"sourcePrefix"`
	// ReadmeBranch is the branch that a package's README is read from.
	ReadmeBranch string `json:"readmeBranch"`

	Hosting Hosting `json:"hosting"`
	Build   Build   `json:"build"`
}

type Hosting struct {
	// APIURL is the base URL of the GitHub REST API; empty means api.github.com.
	APIURL string `json:"apiURL"`
	// Token is used for the API and for cloning; it is never read from the config file.
	Token     string `json:"-"`
	UserAgent string `json:"userAgent"`
	// DownloadRetries is how many times an asset download is retried.
	DownloadRetries int `json:"downloadRetries"`
}

type Build struct {
	// Command is the build frontend; "--outdir DIR SRCDIR" is appended.
	Command []string `json:"command"`
}

func Default() Config {
	return Config{
		Site:         site.DefaultLayout(),
		SourcePrefix: site.DefaultSourcePrefix,
		ReadmeBranch: "main",
		Hosting: Hosting{
			UserAgent: "github.com/datawire/pyindex",
		},
		Build: Build{
			Command: []string{"python3", "-m", "build", "--sdist", "--wheel"},
		},
	}
}

// Load returns the default configuration overlaid with the YAML file at filename (if filename
// is non-empty).  Unknown fields in the file are an error.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	yamlBytes, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(yamlBytes, &cfg, yaml.DisallowUnknownFields); err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	if len(cfg.Build.Command) == 0 {
		return cfg, fmt.Errorf("%s: build.command must not be empty", filename)
	}
	return cfg, nil
}

// Environment variables that describe the package being published.
const (
	EnvAction      = "PKG_ACTION"
	EnvName        = "PKG_NAME"
	EnvVersion     = "PKG_VERSION"
	EnvAuthor      = "PKG_AUTHOR"
	EnvDescription = "PKG_SHORT_DESC"
	EnvHomepage    = "PKG_HOMEPAGE"
	EnvToken       = "GITHUB_TOKEN"
)

// Package is the metadata for one publish request.
type Package struct {
	Action      string
	Name        string
	Version     string
	Author      string
	Description string
	Homepage    string
}

// Validate checks that everything the action needs is present.
func (p Package) Validate() error {
	var missing []string
	require := func(val, env string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, env)
		}
	}
	require(p.Action, EnvAction)
	require(p.Name, EnvName)
	switch strings.ToUpper(strings.TrimSpace(p.Action)) {
	case "REGISTER":
		require(p.Version, EnvVersion)
		require(p.Homepage, EnvHomepage)
	case "UPDATE":
		require(p.Version, EnvVersion)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing package metadata: %s", strings.Join(missing, ", "))
	}
	return pep503.ValidateName(p.Name)
}
