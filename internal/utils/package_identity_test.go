package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/rpmgen/internal/models"
)

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	pkg := &models.Package{Name: "hello", Version: "1.0.0", Release: "1", Arch: "x86_64"}
	build := models.BuildContext{WorkDir: dir, TargetDir: "target", Target: "x86_64-unknown-linux-gnu"}

	if err := os.Mkdir(filepath.Join(dir, "dist"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		output string
		want   string
	}{
		{"", filepath.Join(dir, "target", "x86_64-unknown-linux-gnu", "generate-rpm", "hello-1.0.0-1.x86_64.rpm")},
		{"dist", filepath.Join(dir, "dist", "hello-1.0.0-1.x86_64.rpm")},
		{"out/", filepath.Join(dir, "out", "hello-1.0.0-1.x86_64.rpm")},
		{"custom.rpm", filepath.Join(dir, "custom.rpm")},
		{"/abs/custom.rpm", "/abs/custom.rpm"},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.output, pkg, build); got != tt.want {
			t.Errorf("OutputPath(%q) = %s, want %s", tt.output, got, tt.want)
		}
	}
}

func TestPackageIdentity(t *testing.T) {
	pkg := &models.Package{Name: "hello", Version: "1.0.0", Release: "3", Epoch: 2, Arch: "aarch64"}
	if got := PackageIdentity(pkg); got != "hello-2:1.0.0-3.aarch64" {
		t.Errorf("PackageIdentity = %s", got)
	}
	if got := PackageFileName(pkg); got != "hello-1.0.0-3.aarch64.rpm" {
		t.Errorf("PackageFileName = %s", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.rpm")

	if err := WriteFileAtomic(path, []byte("data"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "data" {
		t.Errorf("content = %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the target file, found %d entries", len(entries))
	}
}
