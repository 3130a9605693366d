package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const exampleManifest = `version: 1
record:
  digest: 6b0d9fb5e0d1b3c1f1d8a5c2f7e3b9a4d6c8e0f2a4b6c8d0e2f4a6b8c0d2e4f6
  miniconda_version: 3.19.0
  channel: http://conda.lsst.codes/sims
  packages:
    - lsst-sims
tarball:
  file: miniconda.tar.gz
  sha256: 0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0
  size: 123456789
  entries: 41234
created_at: 2016-02-01T12:00:00Z
`

func validManifest() *Manifest {
	return &Manifest{
		Version: 1,
		Record: Record{
			Digest:           strings.Repeat("a", 64),
			MinicondaVersion: "3.19.0",
			Channel:          "http://conda.lsst.codes/sims",
			Packages:         []string{"lsst-sims"},
		},
		Tarball: Tarball{
			File:   "miniconda.tar.gz",
			SHA256: strings.Repeat("b", 64),
			Size:   1024,
		},
		CreatedAt: time.Date(2016, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoadExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(exampleManifest), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Record.MinicondaVersion != "3.19.0" {
		t.Errorf("miniconda_version = %q", m.Record.MinicondaVersion)
	}
	if m.Tarball.Size != 123456789 {
		t.Errorf("size = %d", m.Tarball.Size)
	}
	if m.Tarball.Entries != 41234 {
		t.Errorf("entries = %d", m.Tarball.Entries)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/manifest.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("version: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing manifest") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	original := validManifest()

	if err := Save(path, original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after Save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveToMissingDir(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "missing", FileName), validManifest()); err == nil {
		t.Fatal("expected error writing into missing directory")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manifest)
		wantErr string
	}{
		{"valid", func(m *Manifest) {}, ""},
		{"bad version", func(m *Manifest) { m.Version = 2 }, "unsupported version 2"},
		{"no digest", func(m *Manifest) { m.Record.Digest = "" }, "'digest' is required"},
		{"no packages", func(m *Manifest) { m.Record.Packages = nil }, "at least one package"},
		{"no file", func(m *Manifest) { m.Tarball.File = "" }, "'file' is required"},
		{"short sha", func(m *Manifest) { m.Tarball.SHA256 = "abc" }, "64 hex characters"},
		{"zero size", func(m *Manifest) { m.Tarball.Size = 0 }, "'size' must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)
			errs := Validate(m)

			if tt.wantErr == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if !strings.Contains(strings.Join(errs, "\n"), tt.wantErr) {
				t.Errorf("errors %v do not mention %q", errs, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Errors: []string{"a", "b"}}
	want := "manifest validation failed:\n  - a\n  - b"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
