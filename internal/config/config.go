// Package config loads the manifest and override layers and folds them into
// the package metadata.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/sirupsen/logrus"
)

// Config is the manifest plus every configuration layer in precedence
// order. Layers[0] is always the manifest's generate-rpm table.
type Config struct {
	Manifest *Manifest
	Layers   []Layer
}

// ManifestPaths returns the package manifest path and the workspace root
// manifest path (empty outside workspace mode).
func ManifestPaths(ctx models.BuildContext) (string, string) {
	if ctx.PackageDir == "" {
		return ctx.Abs(ManifestFile), ""
	}
	return ctx.Abs(filepath.Join(ctx.PackageDir, ManifestFile)), ctx.Abs(ManifestFile)
}

// Load reads the manifest and materializes sources in order.
func Load(ctx models.BuildContext, sources []Source) (*Config, error) {
	manifestPath, workspacePath := ManifestPaths(ctx)
	logrus.Debugf("Loading manifest %s", manifestPath)

	manifest, err := LoadManifest(manifestPath, workspacePath)
	if err != nil {
		return nil, err
	}

	base := Layer{Origin: manifestPath, Prefix: MetadataPath, Table: manifest.Metadata}
	if base.Table == nil {
		base.Table = map[string]any{}
	}
	cfg := &Config{Manifest: manifest, Layers: []Layer{base}}

	for _, src := range sources {
		layer, err := LoadLayer(src, ctx, manifestPath)
		if err != nil {
			return nil, err
		}
		cfg.Layers = append(cfg.Layers, layer)
	}
	return cfg, nil
}

// Metadata merges all layers and resolves the result.
func (c *Config) Metadata(ctx models.BuildContext) (*models.Metadata, error) {
	merged, err := Merge(c.Layers)
	if err != nil {
		return nil, err
	}
	return Resolve(merged, c.Manifest, ctx)
}

// Resolve applies manifest fallbacks and defaults to a merged partial.
func Resolve(p Partial, m *Manifest, ctx models.BuildContext) (*models.Metadata, error) {
	if m == nil {
		m = &Manifest{}
	}
	meta := &models.Metadata{
		Name:      pick(p.Name, m.Name),
		Version:   pick(p.Version, m.Version),
		License:   pick(p.License, m.License),
		Summary:   pick(p.Summary, m.Description),
		URL:       pick(p.URL, m.Homepage, m.Repository),
		Vendor:    pick(p.Vendor),
		Release:   pick(p.Release, "1"),
		AutoReq:   pick(p.AutoReq),
		RequireSh: true,
		Arch:      ctx.PackageArch(),
	}

	for _, field := range []struct {
		value, key string
	}{
		{meta.Name, "package.name"},
		{meta.Version, "package.version"},
		{meta.License, "package.license"},
		{meta.Summary, "package.description"},
	} {
		if field.value == "" {
			return nil, models.ConfigError(field.key, models.ErrMissingField)
		}
	}

	if p.Epoch != nil {
		meta.Epoch = *p.Epoch
	}
	if p.RequireSh != nil {
		meta.RequireSh = *p.RequireSh
	}

	if p.Assets == nil {
		return nil, models.ConfigError("assets", models.ErrMissingAssets)
	}
	meta.Assets = *p.Assets
	meta.Requires = deref(p.Requires)
	meta.Obsoletes = deref(p.Obsoletes)
	meta.Conflicts = deref(p.Conflicts)
	meta.Provides = deref(p.Provides)

	for slot, sp := range p.Scripts {
		if sp.Body == nil {
			logrus.Warnf("Ignoring flags or prog of %s: no %s_script given", slot, slot.Key())
			continue
		}
		if meta.Scripts == nil {
			meta.Scripts = make(map[models.ScriptSlot]models.Scriptlet)
		}
		script := models.Scriptlet{Body: *sp.Body}
		if sp.Flags != nil {
			script.Flags = *sp.Flags
		}
		if sp.Prog != nil {
			script.Prog = *sp.Prog
		}
		meta.Scripts[slot] = script
	}

	if len(meta.Assets) == 0 {
		logrus.Warn("Metadata declares an empty assets list")
	}
	logrus.Debugf("Resolved metadata for %s %s-%s", meta.Name, meta.Version, meta.Release)
	return meta, nil
}

func pick(v *string, fallbacks ...string) string {
	if v != nil && *v != "" {
		return *v
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

func deref[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}

// String describes the layer stack for debug output.
func (c *Config) String() string {
	return fmt.Sprintf("%d configuration layers from %s", len(c.Layers), c.Manifest.Path)
}
