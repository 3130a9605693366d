package installer

import (
	"strings"
	"testing"
)

func TestRenderDefaultURL(t *testing.T) {
	got, err := RenderURL(DefaultURLTemplate, URLVars{Version: "3.19.0", Platform: "Linux-x86_64"})
	if err != nil {
		t.Fatalf("RenderURL: %v", err)
	}
	want := "https://repo.continuum.io/miniconda/Miniconda-3.19.0-Linux-x86_64.sh"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderURLErrors(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		wantErr string
	}{
		{"parse error", "https://x/{{.Version", "parsing"},
		{"unknown field", "https://x/{{.Arch}}.sh", "executing"},
		{"not http", "ftp://x/{{.Version}}.sh", "must use http"},
		{"relative", "Miniconda-{{.Version}}.sh", "must use http"},
		{"remote file host", "file://mirror/{{.Version}}.sh", "local file"},
		{"no host", "https:///{{.Version}}.sh", "no host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderURL(tt.tmpl, URLVars{Version: "1", Platform: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRenderFileURL(t *testing.T) {
	got, err := RenderURL("file:///opt/installers/Miniconda-{{.Version}}-{{.Platform}}.sh", URLVars{Version: "3.19.0", Platform: "Linux-x86_64"})
	if err != nil {
		t.Fatalf("RenderURL: %v", err)
	}
	if got != "file:///opt/installers/Miniconda-3.19.0-Linux-x86_64.sh" {
		t.Errorf("got %q", got)
	}
}

func TestCheckTemplate(t *testing.T) {
	if err := CheckTemplate(DefaultURLTemplate); err != nil {
		t.Errorf("default template: %v", err)
	}
	if err := CheckTemplate("{{.Version"); err == nil {
		t.Error("expected parse error")
	}
}
