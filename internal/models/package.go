package models

import "strconv"

// Package is the fully assembled package description handed to a writer.
type Package struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Release string `yaml:"release"`
	Epoch   uint32 `yaml:"epoch,omitempty"`
	Arch    string `yaml:"arch"`
	License string `yaml:"license"`
	Summary string `yaml:"summary"`
	URL     string `yaml:"url,omitempty"`
	Vendor  string `yaml:"vendor,omitempty"`

	Requires  []Dependency `yaml:"requires,omitempty"`
	Obsoletes []Dependency `yaml:"obsoletes,omitempty"`
	Conflicts []Dependency `yaml:"conflicts,omitempty"`
	Provides  []Dependency `yaml:"provides,omitempty"`

	Scripts map[ScriptSlot]Scriptlet `yaml:"scripts,omitempty"`

	// Files is sorted by destination path.
	Files []ResolvedAsset `yaml:"files"`
}

// EVR returns [epoch:]version-release.
func (p *Package) EVR() string {
	evr := p.Version + "-" + p.Release
	if p.Epoch > 0 {
		return strconv.FormatUint(uint64(p.Epoch), 10) + ":" + evr
	}
	return evr
}

// PackageInfo is what is read back from a written package file.
type PackageInfo struct {
	Filename          string   `yaml:"filename"`
	Size              int64    `yaml:"size"`
	SHA256Sum         string   `yaml:"sha256"`
	Name              string   `yaml:"name"`
	Version           string   `yaml:"version"`
	Release           string   `yaml:"release"`
	Arch              string   `yaml:"arch"`
	Summary           string   `yaml:"summary"`
	License           string   `yaml:"license"`
	URL               string   `yaml:"url,omitempty"`
	PayloadCompressor string   `yaml:"payload_compressor"`
	Requires          []string `yaml:"requires,omitempty"`
	Provides          []string `yaml:"provides,omitempty"`
	Files             []string `yaml:"files"`
	// Contents is only filled when the payload archive is listed.
	Contents []PayloadEntry `yaml:"contents,omitempty"`
}

// PayloadEntry is one member of a package payload archive.
type PayloadEntry struct {
	Name  string `yaml:"name"`
	Mode  uint32 `yaml:"mode"`
	Size  int64  `yaml:"size"`
	MTime uint32 `yaml:"mtime"`
}
