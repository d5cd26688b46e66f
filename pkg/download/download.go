// Package download fetches release assets into the artifact tree.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/datawire/pyindex/pkg/fsutil"
)

// ErrNotFound signals a 404 from the file server.
var ErrNotFound = errors.New("file not found")

// Downloader holds the HTTP client used for asset downloads.
type Downloader struct {
	httpClient *retryablehttp.Client
	userAgent  string
}

// New returns a Downloader that retries a failed download up to retries times; 0 means a
// single attempt.  The client's own logging goes to the logger in ctx.
func New(ctx context.Context, retries int, userAgent string) *Downloader {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryWaitMin = 1 * time.Second
	httpClient.RetryWaitMax = 30 * time.Second
	httpClient.RetryMax = retries
	httpClient.Logger = leveledLogger{ctx: ctx}
	return &Downloader{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Download fetches url into dest, unless dest already exists.  It reports whether a download
// actually happened.  dest is never left partially written.
func (d *Downloader) Download(ctx context.Context, url, dest string) (_ bool, err error) {
	if ok, err := fsutil.Exists(dest); err != nil || ok {
		return false, err
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("GET %q => %w", url, err)
		}
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if code := resp.StatusCode; code != http.StatusOK {
		if code == http.StatusNotFound {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("HTTP %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download.*.tmp")
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return false, err
	}
	dlog.Infof(ctx, "downloaded %s", filepath.Base(dest))
	return true, nil
}

// leveledLogger sends retryablehttp's logging to dlog.
type leveledLogger struct {
	ctx context.Context
}

func (l leveledLogger) log(lvl dlog.LogLevel, msg string, keysAndValues []interface{}) {
	logger := dlog.WithField(l.ctx, "component", "download")
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		logger = dlog.WithField(logger, fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	dlog.Log(logger, lvl, msg)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log(dlog.LogLevelError, msg, keysAndValues)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(dlog.LogLevelWarn, msg, keysAndValues)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log(dlog.LogLevelDebug, msg, keysAndValues)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(dlog.LogLevelTrace, msg, keysAndValues)
}
