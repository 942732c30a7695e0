package assembler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAssemble(t *testing.T) {
	meta := &models.Metadata{
		Name:     "hello",
		Version:  "1.0.0",
		Release:  "2",
		Epoch:    1,
		Arch:     "x86_64",
		License:  "MIT",
		Summary:  "hi",
		Requires: []models.Dependency{{Name: "glibc", Op: models.OpGreaterEqual, Version: "2.28"}, models.Any("libc.so.6")},
		Provides: []models.Dependency{models.Any("greeter")},
		Scripts: map[models.ScriptSlot]models.Scriptlet{
			models.PostInstall: {Body: "echo hi", Prog: []string{"/bin/bash"}},
		},
	}
	assets := []models.ResolvedAsset{
		{Source: "/w/README", Dest: "/usr/share/doc/hello/README", Options: models.FileOptions{Doc: true}},
		{Source: "/w/hello", Dest: "/usr/bin/hello", Options: models.FileOptions{Mode: 0o100755, User: "hello"}, Executable: true},
	}
	reqs := []models.Dependency{models.Any("libc.so.6"), models.Any("libm.so.6"), models.Any("/bin/sh")}

	pkg := Assemble(meta, assets, reqs)

	wantReqs := []models.Dependency{
		{Name: "glibc", Op: models.OpGreaterEqual, Version: "2.28"},
		models.Any("libc.so.6"),
		models.Any("libm.so.6"),
		models.Any("/bin/sh"),
	}
	if diff := cmp.Diff(wantReqs, pkg.Requires); diff != "" {
		t.Errorf("requires mismatch (-want +got):\n%s", diff)
	}

	wantFiles := []models.ResolvedAsset{
		{Source: "/w/hello", Dest: "/usr/bin/hello", Options: models.FileOptions{Mode: 0o100755, User: "hello", Group: "root"}, Executable: true},
		{Source: "/w/README", Dest: "/usr/share/doc/hello/README", Options: models.FileOptions{Doc: true, User: "root", Group: "root"}},
	}
	if diff := cmp.Diff(wantFiles, pkg.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "1:1.0.0-2", pkg.EVR())
	assert.Equal(t, "x86_64", pkg.Arch)
	assert.Equal(t, []models.Dependency{models.Any("greeter")}, pkg.Provides)
	assert.Equal(t, "echo hi", pkg.Scripts[models.PostInstall].Body)

	// the descriptor owns its data
	assets[0].Dest = "/changed"
	meta.Scripts[models.PostInstall].Prog[0] = "/bin/zsh"
	assert.Equal(t, "/usr/share/doc/hello/README", pkg.Files[1].Dest)
	assert.Equal(t, []string{"/bin/bash"}, pkg.Scripts[models.PostInstall].Prog)
}
