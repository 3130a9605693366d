package fingerprint

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewNoPackages(t *testing.T) {
	_, err := New("3.19.0", "http://conda.lsst.codes/sims", nil)
	if !errors.Is(err, ErrNoPackages) {
		t.Fatalf("err = %v, want ErrNoPackages", err)
	}
}

func TestNewRejectsBadValues(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		channel  string
		packages []string
	}{
		{"empty version", "", "http://c", []string{"a"}},
		{"empty channel", "1", " ", []string{"a"}},
		{"newline in channel", "1", "http://c\nPACKAGES=x", []string{"a"}},
		{"blank package", "1", "http://c", []string{"a", ""}},
		{"package with space", "1", "http://c", []string{"a b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.version, tt.channel, tt.packages); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewMatchSpecWithSpace(t *testing.T) {
	_, err := New("3.19.0", "http://c", []string{"numpy 1.10*"})
	if err == nil {
		t.Fatal("expected error for match spec containing a space")
	}
	if !strings.Contains(err.Error(), "numpy=1.10*") {
		t.Errorf("error should suggest the space-free form: %v", err)
	}

	r, err := New("3.19.0", "http://c", []string{"numpy=1.10*"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := Parse(r.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("Parse(Bytes()) mismatch (-want +got):\n%s", diff)
	}
}

func TestBytes(t *testing.T) {
	r, err := New("3.19.0", "http://conda.lsst.codes/sims", []string{"lsst-sims", "numpy"})
	if err != nil {
		t.Fatal(err)
	}

	want := "MINICONDA_VERSION=3.19.0\nCHANNEL=http://conda.lsst.codes/sims\nPACKAGES=lsst-sims numpy\n"
	if got := string(r.Bytes()); got != want {
		t.Errorf("Bytes() = %q, want %q", got, want)
	}
}

func TestPackageOrderMatters(t *testing.T) {
	a, _ := New("1", "http://c", []string{"x", "y"})
	b, _ := New("1", "http://c", []string{"y", "x"})
	if Equal(a.Bytes(), b.Bytes()) {
		t.Error("records with different package order should differ")
	}
	if a.Digest() == b.Digest() {
		t.Error("digests should differ")
	}
}

func TestNewCopiesPackages(t *testing.T) {
	pkgs := []string{"a"}
	r, _ := New("1", "http://c", pkgs)
	pkgs[0] = "mutated"
	if r.Packages[0] != "a" {
		t.Errorf("record shares caller slice: %v", r.Packages)
	}
}

func TestParseRoundTrip(t *testing.T) {
	r, _ := New("3.19.0", "http://conda.lsst.codes/sims", []string{"lsst-sims"})

	got, err := Parse(r.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing packages", "MINICONDA_VERSION=1\nCHANNEL=c\n"},
		{"malformed line", "MINICONDA_VERSION=1\ngarbage\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
