package manifest

import "time"

// FileName is the manifest's name inside the cache directory.
const FileName = "manifest.yaml"

// Manifest describes a published cache directory: which record produced it
// and what the tarball should look like on disk.
type Manifest struct {
	Version   int       `yaml:"version"`
	Record    Record    `yaml:"record"`
	Tarball   Tarball   `yaml:"tarball"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Record mirrors the fingerprint record in readable form.
type Record struct {
	Digest           string   `yaml:"digest"`
	MinicondaVersion string   `yaml:"miniconda_version"`
	Channel          string   `yaml:"channel"`
	Packages         []string `yaml:"packages"`
}

// Tarball records the packed installation's identity.
type Tarball struct {
	File    string `yaml:"file"`
	SHA256  string `yaml:"sha256"`
	Size    int64  `yaml:"size"`
	Entries int    `yaml:"entries,omitempty"`
}
