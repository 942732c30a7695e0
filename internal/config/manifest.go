package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/sirupsen/logrus"
)

// ManifestFile is the name of the project manifest.
const ManifestFile = "Cargo.toml"

// MetadataPath is where the base configuration layer lives in the manifest.
var MetadataPath = []string{"package", "metadata", "generate-rpm"}

// Manifest holds the [package] fields used as metadata fallbacks and the
// base generate-rpm table.
type Manifest struct {
	Path        string
	Name        string
	Version     string
	License     string
	Description string
	Homepage    string
	Repository  string

	// Metadata is package.metadata.generate-rpm, nil when absent.
	Metadata map[string]any
}

type manifestDoc struct {
	Package   *packageSection   `toml:"package"`
	Workspace *workspaceSection `toml:"workspace"`
}

type packageSection struct {
	Name        string         `toml:"name"`
	Version     any            `toml:"version"`
	License     any            `toml:"license"`
	Description any            `toml:"description"`
	Homepage    any            `toml:"homepage"`
	Repository  any            `toml:"repository"`
	Metadata    map[string]any `toml:"metadata"`
}

type workspaceSection struct {
	Package map[string]any `toml:"package"`
}

func readManifest(path string) (*manifestDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.Error{
			Type:    models.ErrFileOp,
			Subject: path,
			Err:     fmt.Errorf("failed to read manifest: %w", err),
		}
	}

	var doc manifestDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, models.ConfigError(path, fmt.Errorf("failed to parse manifest: %w", err))
	}
	return &doc, nil
}

// LoadManifest reads the package manifest at path. workspacePath names the
// workspace root manifest used for `field.workspace = true` inheritance and
// may be empty.
func LoadManifest(path, workspacePath string) (*Manifest, error) {
	doc, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	if doc.Package == nil {
		return nil, models.ConfigError(path, fmt.Errorf("%w: [package]", models.ErrMissingField))
	}

	var inherited map[string]any
	if workspacePath != "" && workspacePath != path {
		ws, err := readManifest(workspacePath)
		if err != nil {
			return nil, err
		}
		if ws.Workspace != nil {
			inherited = ws.Workspace.Package
		}
	} else if doc.Workspace != nil {
		inherited = doc.Workspace.Package
	}

	m := &Manifest{Path: path, Name: doc.Package.Name}
	fields := []struct {
		key string
		raw any
		dst *string
	}{
		{"version", doc.Package.Version, &m.Version},
		{"license", doc.Package.License, &m.License},
		{"description", doc.Package.Description, &m.Description},
		{"homepage", doc.Package.Homepage, &m.Homepage},
		{"repository", doc.Package.Repository, &m.Repository},
	}
	for _, f := range fields {
		v, err := packageField(f.key, f.raw, inherited)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if meta, ok := doc.Package.Metadata[MetadataPath[2]]; ok {
		table, ok := meta.(map[string]any)
		if !ok {
			return nil, models.ConfigError("package.metadata.generate-rpm", fmt.Errorf("%w: expected table", models.ErrWrongType))
		}
		m.Metadata = table
	} else {
		logrus.Debugf("No [package.metadata.generate-rpm] table in %s", path)
	}

	return m, nil
}

// packageField resolves a [package] value that is either a string or
// { workspace = true }.
func packageField(key string, raw any, inherited map[string]any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case map[string]any:
		if ws, _ := v["workspace"].(bool); ws {
			s, ok := inherited[key].(string)
			if !ok {
				return "", models.ConfigError("workspace.package."+key, models.ErrMissingField)
			}
			return s, nil
		}
	}
	return "", models.ConfigError("package."+key, fmt.Errorf("%w: expected string", models.ErrWrongType))
}
