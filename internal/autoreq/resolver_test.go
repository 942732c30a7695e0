package autoreq

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ralt/rpmgen/internal/elfdeps"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(deps []models.Dependency) []string {
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		out = append(out, d.String())
	}
	return out
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func TestBuiltin(t *testing.T) {
	dir := t.TempDir()
	app := testutil.WriteELF(t, dir, "app", "libm.so.6", "libc.so.6")
	helper := testutil.WriteELF(t, dir, "helper", "libc.so.6")
	text := writeScript(t, dir, "notes.txt", "plain text")
	broken := filepath.Join(dir, "broken")
	require.NoError(t, os.WriteFile(broken, testutil.ELFWithBrokenDynamic("libz.so.1"), 0o755))

	r := NewResolver(&elfdeps.Inspector{})
	deps, err := r.Resolve(context.Background(), Builtin, []string{app, text, broken, helper})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"libc.so.6", "libm.so.6"}, names(deps)); diff != "" {
		t.Errorf("requirements mismatch (-want +got):\n%s", diff)
	}

	withSh := WithShell(deps, true)
	assert.Equal(t, []string{"libc.so.6", "libm.so.6", "/bin/sh"}, names(withSh))
	assert.Equal(t, []string{"libc.so.6", "libm.so.6"}, names(WithShell(deps, false)))
}

func TestBuiltinScriptInterpreter(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "tool", "#!/usr/bin/python3 -u\nprint('hi')\n")
	other := writeScript(t, dir, "other", "#!/opt/nowhere/lua\n")

	r := NewResolver(&elfdeps.Inspector{})
	r.Exists = func(path string) bool { return path == "/usr/bin/python3" }

	deps, err := r.Resolve(context.Background(), Builtin, []string{script, other})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/python3"}, names(deps))
}

func TestDisabled(t *testing.T) {
	dir := t.TempDir()
	app := testutil.WriteELF(t, dir, "app", "libc.so.6")

	deps, err := NewResolver(&elfdeps.Inspector{}).Resolve(context.Background(), Disabled, []string{app})
	require.NoError(t, err)
	assert.Empty(t, deps)
	assert.Equal(t, []string{"/bin/sh"}, names(WithShell(deps, true)))
}

func TestExternal(t *testing.T) {
	dir := t.TempDir()
	delegate := writeScript(t, dir, "find-requires", `#!/bin/sh
read f
echo "lib-$(basename "$f").so.1"
echo
echo "common >= 1.0"
echo "libc.so.6(GLIBC_2.34)(64bit)"
`)

	r := NewResolver(&elfdeps.Inspector{})
	deps, err := r.Resolve(context.Background(), External(delegate), []string{"/x/alpha", "/x/beta"})
	require.NoError(t, err)

	want := []string{"common >= 1.0", "lib-alpha.so.1", "lib-beta.so.1", "libc.so.6(GLIBC_2.34)(64bit)"}
	if diff := cmp.Diff(want, names(deps)); diff != "" {
		t.Errorf("requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestExternalFailure(t *testing.T) {
	dir := t.TempDir()
	failing := writeScript(t, dir, "fail", "#!/bin/sh\necho boom >&2\nexit 3\n")

	r := NewResolver(&elfdeps.Inspector{})
	_, err := r.Resolve(context.Background(), External(failing), []string{"/x/alpha"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDelegateFailed))
	assert.Contains(t, err.Error(), "boom")
	typ, _ := models.TypeOf(err)
	assert.Equal(t, models.ErrDependency, typ)

	_, err = r.Resolve(context.Background(), External(filepath.Join(dir, "missing")), []string{"/x/alpha"})
	assert.True(t, errors.Is(err, models.ErrDelegateFailed))

	garbage := writeScript(t, dir, "garbage", "#!/bin/sh\nprintf '\\377\\376\\n'\n")
	_, err = r.Resolve(context.Background(), External(garbage), []string{"/x/alpha"})
	assert.True(t, errors.Is(err, models.ErrUnreadableOutput))
}

func TestBinaries(t *testing.T) {
	assets := []models.ResolvedAsset{
		{Source: "/a", Executable: true},
		{Source: "/b"},
		{Source: "/c", Executable: true},
	}
	assert.Equal(t, []string{"/a", "/c"}, Binaries(assets))
}
