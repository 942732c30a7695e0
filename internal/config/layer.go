package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ralt/rpmgen/internal/models"
)

// Source describes where an override layer comes from. It is one of
// FileSource, TextSource or VariantSource.
type Source interface {
	origin() string
}

// FileSource is a TOML file, optionally narrowed to the table at Branch.
type FileSource struct {
	Path   string
	Branch string
}

// TextSource is inline TOML text.
type TextSource struct {
	Text string
}

// VariantSource selects package.metadata.generate-rpm.variants.<Name> of
// the manifest.
type VariantSource struct {
	Name string
}

func (s FileSource) origin() string {
	if s.Branch == "" {
		return s.Path
	}
	return s.Path + "#" + s.Branch
}

func (s TextSource) origin() string { return "<inline>" }

func (s VariantSource) origin() string { return "variant " + s.Name }

// ParseFileSource parses "path[#dotted.branch]". The path ends at the
// first '#'.
func ParseFileSource(s string) FileSource {
	if path, branch, ok := strings.Cut(s, "#"); ok {
		return FileSource{Path: path, Branch: branch}
	}
	return FileSource{Path: s}
}

// Layer is one partial configuration document.
type Layer struct {
	Origin string
	// Prefix is the key path of Table inside its document.
	Prefix []string
	Table  map[string]any
}

func (l Layer) keyName(key string) string {
	return strings.Join(append(append([]string{}, l.Prefix...), key), ".")
}

// LoadLayer materializes src. Relative paths resolve against ctx.WorkDir
// and variants read manifestPath.
func LoadLayer(src Source, ctx models.BuildContext, manifestPath string) (Layer, error) {
	switch s := src.(type) {
	case FileSource:
		return loadFileLayer(ctx.Abs(s.Path), s.Branch, s.origin())
	case TextSource:
		table, err := decodeTable([]byte(s.Text), s.origin())
		if err != nil {
			return Layer{}, err
		}
		return Layer{Origin: s.origin(), Table: table}, nil
	case VariantSource:
		if _, err := ParseKeyPath(s.Name); err != nil || s.Name == "" || strings.Contains(s.Name, ".") {
			return Layer{}, models.ConfigError(s.origin(), fmt.Errorf("%w: %q is not a single bare key", models.ErrAmbiguousVariant, s.Name))
		}
		branch := strings.Join(MetadataPath, ".") + ".variants." + s.Name
		return loadFileLayer(manifestPath, branch, s.origin())
	default:
		return Layer{}, models.ConfigError("", fmt.Errorf("unknown layer source %T", src))
	}
}

func loadFileLayer(path, branch, origin string) (Layer, error) {
	prefix, err := ParseKeyPath(branch)
	if err != nil {
		return Layer{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layer{}, &models.Error{
			Type:    models.ErrFileOp,
			Subject: path,
			Err:     fmt.Errorf("failed to read override file: %w", err),
		}
	}

	root, err := decodeTable(data, origin)
	if err != nil {
		return Layer{}, err
	}
	table, err := lookupTable(root, prefix)
	if err != nil {
		return Layer{}, fmt.Errorf("%s: %w", origin, err)
	}
	return Layer{Origin: origin, Prefix: prefix, Table: table}, nil
}

func decodeTable(data []byte, origin string) (map[string]any, error) {
	table := map[string]any{}
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, models.ConfigError(origin, fmt.Errorf("failed to parse toml: %w", err))
	}
	return table, nil
}
