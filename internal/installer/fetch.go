package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// ErrChecksumMismatch indicates the downloaded installer does not match the expected hash.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchError represents a failed installer download.
type FetchError struct {
	URL  string
	Op   string
	Err  error
	Hint string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Err)
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ChecksumError reports the expected and actual digest of a download.
// It wraps ErrChecksumMismatch.
type ChecksumError struct {
	File     string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.File, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// Download describes a completed download.
type Download struct {
	Path   string
	SHA256 string
	Size   int64
}

// Fetcher downloads installers over HTTP(S).
type Fetcher struct {
	Client  HTTPClient
	MaxSize int64         // max download size in bytes (0 = no limit)
	Timeout time.Duration // whole-download timeout (0 = none beyond ctx)
}

// Download streams url into dest. When expectedSHA256 is non-empty the content
// must match it. dest is only replaced once the download has completed and
// verified.
func (f *Fetcher) Download(ctx context.Context, url, dest, expectedSHA256 string) (*Download, error) {
	if path, ok := localPath(url); ok {
		return f.copyLocal(ctx, url, path, dest, expectedSHA256)
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	client := f.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Op: "fetch", Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Op: "fetch", Err: err, Hint: "check network connectivity and the installer URL"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			URL:  url,
			Op:   "fetch",
			Err:  fmt.Errorf("HTTP %d", resp.StatusCode),
			Hint: "check that an installer exists for this version and platform",
		}
	}

	return f.save(url, resp.Body, dest, expectedSHA256)
}

// save streams r into dest through a temp file in the same directory,
// enforcing MaxSize and the expected checksum before the final rename.
func (f *Fetcher) save(url string, r io.Reader, dest, expectedSHA256 string) (*Download, error) {
	body := r
	if f.MaxSize > 0 {
		body = io.LimitReader(r, f.MaxSize+1)
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".installer-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), body)
	if err != nil {
		return nil, &FetchError{URL: url, Op: "read", Err: err}
	}
	if f.MaxSize > 0 && n > f.MaxSize {
		return nil, &FetchError{URL: url, Op: "read", Err: fmt.Errorf("download exceeds max size %d bytes", f.MaxSize)}
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if expectedSHA256 != "" && !strings.EqualFold(actual, expectedSHA256) {
		return nil, &ChecksumError{File: filepath.Base(dest), Expected: strings.ToLower(expectedSHA256), Got: actual}
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		return nil, fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("renaming download to %s: %w", dest, err)
	}

	success = true
	return &Download{Path: dest, SHA256: actual, Size: n}, nil
}
