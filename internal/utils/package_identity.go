package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
)

// PackageFileName returns <name>-<version>-<release>.<arch>.rpm
func PackageFileName(pkg *models.Package) string {
	return fmt.Sprintf("%s-%s-%s.%s.rpm", pkg.Name, pkg.Version, pkg.Release, pkg.Arch)
}

// PackageIdentity returns the name-epoch:version-release.arch identity
func PackageIdentity(pkg *models.Package) string {
	return fmt.Sprintf("%s-%s.%s", pkg.Name, pkg.EVR(), pkg.Arch)
}

// OutputPath decides where the package file goes. An empty output selects
// <build dir>/generate-rpm; an output that ends in a separator or is an
// existing directory receives the canonical file name.
func OutputPath(output string, pkg *models.Package, build models.BuildContext) string {
	name := PackageFileName(pkg)
	if output == "" {
		return build.Abs(filepath.Join(build.TargetPath("generate-rpm"), name))
	}

	isDir := strings.HasSuffix(output, "/") || strings.HasSuffix(output, string(filepath.Separator))
	output = build.Abs(output)
	if isDir {
		return filepath.Join(output, name)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name)
	}
	return output
}
