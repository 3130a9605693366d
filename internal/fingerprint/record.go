package fingerprint

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Keys of the record lines, in the order they are written.
const (
	KeyVersion  = "MINICONDA_VERSION"
	KeyChannel  = "CHANNEL"
	KeyPackages = "PACKAGES"
)

// ErrNoPackages is returned when a record is requested for an empty package list.
var ErrNoPackages = errors.New("no packages specified")

// Record captures the inputs that decide whether a cached installation can be reused.
type Record struct {
	Version  string
	Channel  string
	Packages []string
}

// New builds a Record and validates its fields.
// Package order is kept as given: two lists in different order are different records.
func New(version, channel string, packages []string) (Record, error) {
	if len(packages) == 0 {
		return Record{}, ErrNoPackages
	}
	if strings.TrimSpace(version) == "" {
		return Record{}, fmt.Errorf("distribution version is empty")
	}
	if strings.TrimSpace(channel) == "" {
		return Record{}, fmt.Errorf("channel URL is empty")
	}
	for _, v := range []string{version, channel} {
		if strings.ContainsAny(v, "\r\n") {
			return Record{}, fmt.Errorf("value %q contains a line break", v)
		}
	}
	for i, p := range packages {
		if strings.TrimSpace(p) == "" {
			return Record{}, fmt.Errorf("package[%d] is empty", i)
		}
		// PACKAGES= is space separated, so a name with a space would not
		// round-trip through Parse.
		if strings.ContainsAny(p, " \t\r\n") {
			return Record{}, fmt.Errorf("package %q contains whitespace; write version constraints without spaces (e.g. numpy=1.10*)", p)
		}
	}

	pkgs := make([]string, len(packages))
	copy(pkgs, packages)
	return Record{Version: version, Channel: channel, Packages: pkgs}, nil
}

// Bytes renders the record as key=value lines.
func (r Record) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s=%s\n", KeyVersion, r.Version)
	fmt.Fprintf(&buf, "%s=%s\n", KeyChannel, r.Channel)
	fmt.Fprintf(&buf, "%s=%s\n", KeyPackages, strings.Join(r.Packages, " "))
	return buf.Bytes()
}

// Digest returns the hex SHA256 of the rendered record.
func (r Record) Digest() string {
	return Digest(r.Bytes())
}

// Digest returns the hex SHA256 of raw record bytes.
func Digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Equal reports whether two rendered records are byte-identical.
func Equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// Parse reads a rendered record back. Unknown keys are ignored; all three
// known keys must be present.
func Parse(data []byte) (Record, error) {
	var r Record
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Record{}, fmt.Errorf("malformed record line %q", line)
		}
		switch key {
		case KeyVersion:
			r.Version = value
		case KeyChannel:
			r.Channel = value
		case KeyPackages:
			r.Packages = strings.Fields(value)
		default:
			continue
		}
		seen[key] = true
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("scanning record: %w", err)
	}

	for _, k := range []string{KeyVersion, KeyChannel, KeyPackages} {
		if !seen[k] {
			return Record{}, fmt.Errorf("record is missing %s", k)
		}
	}
	return r, nil
}
