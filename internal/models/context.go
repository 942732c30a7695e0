package models

import (
	"path/filepath"
	"runtime"
	"strings"
)

// BuildContext describes where build artifacts live for this run. It is
// computed once at startup and passed by value afterwards.
type BuildContext struct {
	// WorkDir is the directory relative paths are resolved against.
	WorkDir string
	// TargetDir is the build output root, "target" unless overridden.
	TargetDir string
	// Target is the optional target triple.
	Target string
	// Profile is the build profile name, "release" by default.
	Profile string
	// PackageDir is the workspace member directory, relative to WorkDir.
	// Empty outside workspace mode.
	PackageDir string
	// Arch overrides the package architecture.
	Arch string
	// SourceDate clamps file mtimes and sets the build time when non-nil.
	SourceDate *uint32
}

// ProfileDir returns the directory name the profile builds into.
func (c BuildContext) ProfileDir() string {
	switch c.Profile {
	case "", "release":
		return "release"
	case "dev":
		return "debug"
	default:
		return c.Profile
	}
}

// BuildDir returns <target_dir>[/<triple>].
func (c BuildContext) BuildDir() string {
	dir := c.TargetDir
	if dir == "" {
		dir = "target"
	}
	if c.Target != "" {
		dir = filepath.Join(dir, c.Target)
	}
	return dir
}

// TargetPath joins name under the build dir.
func (c BuildContext) TargetPath(name string) string {
	return filepath.Join(c.BuildDir(), name)
}

// Abs resolves p against WorkDir unless it is already absolute.
func (c BuildContext) Abs(p string) string {
	if filepath.IsAbs(p) || c.WorkDir == "" {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// PackageArch returns the RPM architecture of the produced package.
func (c BuildContext) PackageArch() string {
	if c.Arch != "" {
		return c.Arch
	}
	if c.Target != "" {
		arch, _, _ := strings.Cut(c.Target, "-")
		return rpmArch(arch)
	}
	return hostArch(runtime.GOARCH)
}

func rpmArch(arch string) string {
	switch arch {
	case "x86":
		return "i586"
	case "arm":
		return "armhfp"
	case "powerpc":
		return "ppc"
	case "powerpc64":
		return "ppc64"
	default:
		return arch
	}
}

func hostArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i586"
	case "arm":
		return "armhfp"
	default:
		return goarch
	}
}
