package buildtarget

import (
	"errors"
	"testing"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CARGO_BUILD_TARGET", "CARGO_BUILD_TARGET_DIR", "CARGO_TARGET_DIR", "SOURCE_DATE_EPOCH"} {
		t.Setenv(k, "")
	}
}

func TestNewContextDefaults(t *testing.T) {
	clearEnv(t)

	ctx, err := NewContext(Options{WorkDir: "/work"}, NewEnv())
	require.NoError(t, err)
	assert.Equal(t, "target", ctx.TargetDir)
	assert.Equal(t, "", ctx.Target)
	assert.Equal(t, "release", ctx.Profile)
	assert.Nil(t, ctx.SourceDate)
}

func TestNewContextEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARGO_TARGET_DIR", "/second")
	t.Setenv("CARGO_BUILD_TARGET_DIR", "/first")
	t.Setenv("CARGO_BUILD_TARGET", "aarch64-unknown-linux-gnu")
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")

	ctx, err := NewContext(Options{WorkDir: "/work"}, NewEnv())
	require.NoError(t, err)
	assert.Equal(t, "/first", ctx.TargetDir)
	assert.Equal(t, "aarch64-unknown-linux-gnu", ctx.Target)
	require.NotNil(t, ctx.SourceDate)
	assert.Equal(t, uint32(1700000000), *ctx.SourceDate)
	assert.Equal(t, "aarch64", ctx.PackageArch())
}

func TestNewContextFallbackTargetDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARGO_TARGET_DIR", "/second")

	ctx, err := NewContext(Options{WorkDir: "/work"}, NewEnv())
	require.NoError(t, err)
	assert.Equal(t, "/second", ctx.TargetDir)
}

func TestNewContextFlagsWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARGO_BUILD_TARGET_DIR", "/env")
	t.Setenv("CARGO_BUILD_TARGET", "x86_64-unknown-linux-gnu")

	ctx, err := NewContext(Options{
		WorkDir:   "/work",
		TargetDir: "/flag",
		Target:    "x86-unknown-linux-gnu",
		Profile:   "dev",
		Package:   "crates/foo",
	}, NewEnv())
	require.NoError(t, err)
	assert.Equal(t, "/flag", ctx.TargetDir)
	assert.Equal(t, "x86-unknown-linux-gnu", ctx.Target)
	assert.Equal(t, "debug", ctx.ProfileDir())
	assert.Equal(t, "crates/foo", ctx.PackageDir)
	assert.Equal(t, "i586", ctx.PackageArch())
}

func TestNewContextInvalidSourceDate(t *testing.T) {
	clearEnv(t)

	_, err := NewContext(Options{WorkDir: "/work", SourceDate: "yesterday"}, NewEnv())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidSourceDate))
}
