package models

import (
	"fmt"
	"strings"
)

// File type bits carried in RPM file modes
const (
	ModeTypeMask uint32 = 0o170000
	ModeRegular  uint32 = 0o100000
	ModeDir      uint32 = 0o040000
)

// FileOptions are the per-file attributes declared on an asset.
type FileOptions struct {
	// Mode includes the file type bits. Zero means "take permissions from
	// the source file".
	Mode            uint32 `yaml:"mode,omitempty"`
	User            string `yaml:"user,omitempty"`
	Group           string `yaml:"group,omitempty"`
	Config          bool   `yaml:"config,omitempty"`
	ConfigNoReplace bool   `yaml:"config_noreplace,omitempty"`
	Doc             bool   `yaml:"doc,omitempty"`
	Caps            string `yaml:"caps,omitempty"`
}

// AssetSpec is an asset as declared in metadata.
type AssetSpec struct {
	Source  string
	Dest    string
	Options FileOptions
}

// HasWildcard reports whether the source is a glob pattern.
func (a AssetSpec) HasWildcard() bool {
	return strings.Contains(a.Source, "*")
}

// DestIsDir reports whether the destination is directory-shaped.
func (a AssetSpec) DestIsDir() bool {
	return strings.HasSuffix(a.Dest, "/")
}

// NormalizeDest returns dest as an absolute install path. A leading "./"
// is read as relative to the install root; any other relative path is
// rejected.
func NormalizeDest(dest string) (string, error) {
	if rest, ok := strings.CutPrefix(dest, "./"); ok {
		dest = "/" + strings.TrimLeft(rest, "/")
	}
	if !strings.HasPrefix(dest, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDestination, dest)
	}
	return dest, nil
}

// ResolvedAsset is one concrete source file and its install path.
type ResolvedAsset struct {
	Source     string      `yaml:"source"`
	Dest       string      `yaml:"dest"`
	Options    FileOptions `yaml:",inline"`
	Executable bool        `yaml:"executable,omitempty"`
}
