package installer

import (
	"bytes"
	"fmt"
	"net/url"
	"text/template"
)

// DefaultURLTemplate is the download location of Miniconda installers.
const DefaultURLTemplate = "https://repo.continuum.io/miniconda/Miniconda-{{.Version}}-{{.Platform}}.sh"

// URLVars are the fields available to an installer URL template.
type URLVars struct {
	Version  string
	Platform string
}

// RenderURL expands tmpl with vars and checks the result is an absolute
// http(s) URL or a file:// URL naming a local path. Unknown fields are
// errors rather than empty strings.
func RenderURL(tmpl string, vars URLVars) (string, error) {
	t, err := template.New("installer_url").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parsing installer URL template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing installer URL template: %w", err)
	}

	rendered := buf.String()
	u, err := url.Parse(rendered)
	if err != nil {
		return "", fmt.Errorf("installer URL %q: %w", rendered, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("installer URL %q has no host", rendered)
		}
	case "file":
		if _, ok := localPath(rendered); !ok {
			return "", fmt.Errorf("installer URL %q must name a local file", rendered)
		}
	default:
		return "", fmt.Errorf("installer URL %q must use http, https or file", rendered)
	}
	return rendered, nil
}

// CheckTemplate parses tmpl without rendering it.
func CheckTemplate(tmpl string) error {
	if _, err := template.New("installer_url").Parse(tmpl); err != nil {
		return fmt.Errorf("parsing installer URL template: %w", err)
	}
	return nil
}
