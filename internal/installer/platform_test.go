package installer

import (
	"strings"
	"testing"
)

func TestPlatformBuiltins(t *testing.T) {
	pm := NewPlatformMap(nil)

	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "Linux-x86_64"},
		{"linux", "386", "Linux-x86"},
		{"linux", "arm64", "Linux-aarch64"},
		{"darwin", "amd64", "MacOSX-x86_64"},
		{"darwin", "arm64", "MacOSX-arm64"},
	}
	for _, tt := range tests {
		got, err := pm.Resolve(tt.goos, tt.goarch)
		if err != nil {
			t.Errorf("Resolve(%s/%s): %v", tt.goos, tt.goarch, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%s/%s) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestPlatformUnknown(t *testing.T) {
	pm := NewPlatformMap(nil)
	_, err := pm.Resolve("windows", "amd64")
	if err == nil {
		t.Fatal("expected error for windows")
	}
	if !strings.Contains(err.Error(), "MINICONDA_PLATFORM") {
		t.Errorf("error should hint at override: %v", err)
	}
}

func TestPlatformOverrides(t *testing.T) {
	pm := NewPlatformMap(map[string]string{
		"linux/amd64":   "Linux-x86_64-custom",
		"freebsd/amd64": "Linux-x86_64",
	})

	got, _ := pm.Resolve("linux", "amd64")
	if got != "Linux-x86_64-custom" {
		t.Errorf("override not applied: %q", got)
	}
	if !pm.IsCustom("linux/amd64") {
		t.Error("replaced builtin should be custom")
	}
	if !pm.IsCustom("freebsd/amd64") {
		t.Error("added entry should be custom")
	}
	if pm.IsCustom("darwin/arm64") {
		t.Error("untouched builtin should not be custom")
	}
}

func TestPlatformKnownSorted(t *testing.T) {
	known := NewPlatformMap(nil).Known()
	if len(known) != len(builtinPlatforms) {
		t.Fatalf("known = %d, want %d", len(known), len(builtinPlatforms))
	}
	for i := 1; i < len(known); i++ {
		if known[i-1] > known[i] {
			t.Fatalf("not sorted: %v", known)
		}
	}
}
