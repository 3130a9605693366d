package installer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// localPath returns the filesystem path of a file:// installer URL.
func localPath(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", false
	}
	return filepath.FromSlash(u.Path), u.Path != ""
}

// copyLocal copies an installer from the local filesystem, for runners that
// keep installers on a mounted volume instead of downloading them.
func (f *Fetcher) copyLocal(ctx context.Context, rawURL, path, dest, expectedSHA256 string) (*Download, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: rawURL, Op: "open", Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Op: "open", Err: err, Hint: "check that the installer file exists"}
	}
	if info.IsDir() {
		return nil, &FetchError{URL: rawURL, Op: "open", Err: fmt.Errorf("%s is a directory", path)}
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Op: "open", Err: err}
	}
	defer src.Close()

	return f.save(rawURL, src, dest, expectedSHA256)
}
