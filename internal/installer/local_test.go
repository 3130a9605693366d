package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"file:///opt/Miniconda.sh", "/opt/Miniconda.sh", true},
		{"file://localhost/opt/Miniconda.sh", "/opt/Miniconda.sh", true},
		{"file://mirror/opt/Miniconda.sh", "", false},
		{"https://repo.example/Miniconda.sh", "", false},
		{"file://", "", false},
	}
	for _, tt := range tests {
		got, ok := localPath(tt.url)
		if ok != tt.ok || (ok && got != filepath.FromSlash(tt.want)) {
			t.Errorf("localPath(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDownloadLocalFile(t *testing.T) {
	content := []byte("#!/bin/bash\necho local installer\n")
	src := filepath.Join(t.TempDir(), "Miniconda-3.19.0-Linux-x86_64.sh")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "miniconda.sh")

	dl, err := (&Fetcher{}).Download(context.Background(), "file://"+filepath.ToSlash(src), dest, sha256Hex(content))
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if dl.Size != int64(len(content)) || dl.SHA256 != sha256Hex(content) {
		t.Errorf("unexpected download: %+v", dl)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("installer not executable: %v", info.Mode())
	}
}

func TestDownloadLocalFileErrors(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(t.TempDir(), "miniconda.sh")

	_, err := (&Fetcher{}).Download(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "missing.sh")), dest, "")
	var fe *FetchError
	if !errors.As(err, &fe) || !strings.Contains(err.Error(), "installer file exists") {
		t.Errorf("missing file error = %v", err)
	}

	_, err = (&Fetcher{}).Download(context.Background(), "file://"+filepath.ToSlash(dir), dest, "")
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("directory error = %v", err)
	}

	src := filepath.Join(dir, "installer.sh")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = (&Fetcher{}).Download(context.Background(), "file://"+filepath.ToSlash(src), dest, strings.Repeat("f", 64))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("checksum error = %v", err)
	}
}
