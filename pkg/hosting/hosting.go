// Package hosting looks up releases and their assets on a GitHub-compatible hosting API.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v82/github"

	"github.com/datawire/pyindex/pkg/site"
)

// ErrReleaseNotFound is returned when the repository has no release for the requested tag.
var ErrReleaseNotFound = errors.New("release not found")

type Asset struct {
	Name        string
	DownloadURL string
}

type Release struct {
	Tag    string
	Assets []Asset
}

// Client queries the releases-by-tag endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	Token      string
}

func (c Client) github() (*github.Client, error) {
	client := github.NewClient(c.HTTPClient)
	if c.Token != "" {
		client = client.WithAuthToken(c.Token)
	}
	if c.UserAgent != "" {
		client.UserAgent = c.UserAgent
	}
	if c.BaseURL != "" {
		baseURL := c.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}
	return client, nil
}

// Release returns the release tagged tag in the repository at repoURL.
func (c Client) Release(ctx context.Context, repoURL, tag string) (_ *Release, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("release %q of %q => %w", tag, repoURL, err)
		}
	}()
	owner, repo, err := site.SplitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	client, err := c.github()
	if err != nil {
		return nil, err
	}

	release, resp, err := client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrReleaseNotFound
		}
		return nil, err
	}

	ret := &Release{
		Tag:    release.GetTagName(),
		Assets: make([]Asset, 0, len(release.Assets)),
	}
	for _, asset := range release.Assets {
		ret.Assets = append(ret.Assets, Asset{
			Name:        asset.GetName(),
			DownloadURL: asset.GetBrowserDownloadURL(),
		})
	}
	return ret, nil
}
