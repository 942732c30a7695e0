package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
[package]
name = "hello"
version = "1.2.3"
license = "MIT"
description = "Says hello"
repository = "https://example.com/hello"

[package.metadata.generate-rpm]
release = "1"
assets = [
  { source = "target/release/hello", dest = "/usr/bin/hello", mode = "755" },
]

[package.metadata.generate-rpm.requires]
glibc = ">= 2.28"

[package.metadata.generate-rpm.variants.minimal]
release = "1.min"
require-sh = false

[package.metadata.generate-rpm.variants.el9]
release = "1.el9"

[package.metadata.generate-rpm.variants.el9.requires]
openssl-libs = ">= 3.0"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWorkspace(t *testing.T) models.BuildContext {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), testManifest)
	return models.BuildContext{WorkDir: dir, TargetDir: "target", Profile: "release", Arch: "x86_64"}
}

func loadMetadata(t *testing.T, ctx models.BuildContext, sources ...Source) (*models.Metadata, error) {
	t.Helper()
	cfg, err := Load(ctx, sources)
	if err != nil {
		return nil, err
	}
	return cfg.Metadata(ctx)
}

func TestLoadBaseLayer(t *testing.T) {
	ctx := newWorkspace(t)

	meta, err := loadMetadata(t, ctx)
	require.NoError(t, err)

	assert.Equal(t, "hello", meta.Name)
	assert.Equal(t, "1.2.3", meta.Version)
	assert.Equal(t, "MIT", meta.License)
	assert.Equal(t, "Says hello", meta.Summary)
	assert.Equal(t, "https://example.com/hello", meta.URL)
	assert.Equal(t, "1", meta.Release)
	assert.Equal(t, "x86_64", meta.Arch)
	assert.True(t, meta.RequireSh)
	assert.Equal(t, []models.Dependency{{Name: "glibc", Op: models.OpGreaterEqual, Version: "2.28"}}, meta.Requires)
	require.Len(t, meta.Assets, 1)
	assert.Equal(t, uint32(0o100755), meta.Assets[0].Options.Mode)
}

func TestParseFileSource(t *testing.T) {
	tests := map[string]FileSource{
		"override.toml":            {Path: "override.toml"},
		"override.toml#deploy.rpm": {Path: "override.toml", Branch: "deploy.rpm"},
		"override.toml#deploy#rpm": {Path: "override.toml", Branch: "deploy#rpm"},
		"conf/override.toml#":      {Path: "conf/override.toml"},
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseFileSource(in), in)
	}
}

func TestLayersApplyInOrder(t *testing.T) {
	ctx := newWorkspace(t)
	writeFile(t, filepath.Join(ctx.WorkDir, "override.toml"), `
[deploy.rpm]
release = "2"
vendor = "ACME"
`)

	meta, err := loadMetadata(t, ctx,
		VariantSource{Name: "el9"},
		ParseFileSource("override.toml#deploy.rpm"),
		TextSource{Text: `summary = "inline wins"`},
	)
	require.NoError(t, err)

	assert.Equal(t, "2", meta.Release)
	assert.Equal(t, "ACME", meta.Vendor)
	assert.Equal(t, "inline wins", meta.Summary)
	want := []models.Dependency{{Name: "openssl-libs", Op: models.OpGreaterEqual, Version: "3.0"}}
	if diff := cmp.Diff(want, meta.Requires); diff != "" {
		t.Errorf("requires mismatch (-want +got):\n%s", diff)
	}

	meta, err = loadMetadata(t, ctx,
		TextSource{Text: `release = "0"`},
		VariantSource{Name: "minimal"},
	)
	require.NoError(t, err)
	assert.Equal(t, "1.min", meta.Release)
	assert.False(t, meta.RequireSh)
}

func TestLayerErrors(t *testing.T) {
	ctx := newWorkspace(t)
	writeFile(t, filepath.Join(ctx.WorkDir, "override.toml"), "[a]\nb = 1\n")

	tests := []struct {
		name string
		src  Source
		want error
	}{
		{"quoted branch", FileSource{Path: "override.toml", Branch: `"a"`}, models.ErrUnsupportedPathSyntax},
		{"missing branch", FileSource{Path: "override.toml", Branch: "x.y"}, models.ErrBranchNotFound},
		{"unknown variant", VariantSource{Name: "nope"}, models.ErrBranchNotFound},
		{"dotted variant", VariantSource{Name: "el9.requires"}, models.ErrAmbiguousVariant},
		{"empty variant", VariantSource{Name: ""}, models.ErrAmbiguousVariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMetadata(t, ctx, tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}

	_, err := loadMetadata(t, ctx, FileSource{Path: "missing.toml"})
	require.Error(t, err)
	typ, ok := models.TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrFileOp, typ)
}

func TestMissingAssets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), `
[package]
name = "noassets"
version = "0.1.0"
license = "MIT"
description = "nothing"
`)
	ctx := models.BuildContext{WorkDir: dir}

	_, err := loadMetadata(t, ctx)
	assert.True(t, errors.Is(err, models.ErrMissingAssets))

	meta, err := loadMetadata(t, ctx, TextSource{Text: `assets = [{ source = "a", dest = "/a" }]`})
	require.NoError(t, err)
	assert.Len(t, meta.Assets, 1)
}

func TestMissingMandatoryFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), `
[package]
name = "nolicense"
version = "0.1.0"
description = "nothing"

[package.metadata.generate-rpm]
assets = []
`)
	ctx := models.BuildContext{WorkDir: dir}

	_, err := loadMetadata(t, ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingField))
	assert.Contains(t, err.Error(), "package.license")
}

func TestWorkspaceInheritance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestFile), `
[workspace]
members = ["crates/tool"]

[workspace.package]
version = "3.1.4"
license = "Apache-2.0"
homepage = "https://example.com"
`)
	writeFile(t, filepath.Join(dir, "crates", "tool", ManifestFile), `
[package]
name = "tool"
version.workspace = true
license.workspace = true
homepage.workspace = true
description = "A tool"

[package.metadata.generate-rpm]
assets = [{ source = "target/release/tool", dest = "/usr/bin/tool", mode = "755" }]
`)
	ctx := models.BuildContext{WorkDir: dir, PackageDir: filepath.Join("crates", "tool")}

	meta, err := loadMetadata(t, ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.1.4", meta.Version)
	assert.Equal(t, "Apache-2.0", meta.License)
	assert.Equal(t, "https://example.com", meta.URL)
}

func TestScriptsResolve(t *testing.T) {
	ctx := newWorkspace(t)

	meta, err := loadMetadata(t, ctx, TextSource{Text: `
pre_install_script = "echo pre"
pre_install_script_flags = 0b101
post_uninstall_script_flags = 1
`})
	require.NoError(t, err)

	want := map[models.ScriptSlot]models.Scriptlet{
		models.PreInstall: {Body: "echo pre", Flags: models.ScriptExpand | models.ScriptCritical},
	}
	if diff := cmp.Diff(want, meta.Scripts); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
}
