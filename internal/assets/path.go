package assets

import (
	"path/filepath"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
)

// RelPath rewrites the conventional "target/release/" (or
// "target/<profile>/") prefix of source to the actual build directory,
// <target_dir>/[<triple>/]<profile>.
func RelPath(source string, build models.BuildContext) string {
	profileDir := build.ProfileDir()
	for _, prefix := range []string{"target/release/", "target/" + profileDir + "/"} {
		if rest, ok := strings.CutPrefix(source, prefix); ok {
			return filepath.Join(build.TargetPath(profileDir), rest)
		}
	}
	return source
}

// Candidates returns the paths source may refer to, in lookup order: the
// working directory first, then the workspace package directory.
func Candidates(source string, build models.BuildContext, packageDir string) []string {
	rel := RelPath(source, build)
	if filepath.IsAbs(rel) {
		return []string{rel}
	}

	candidates := []string{build.Abs(rel)}
	if packageDir != "" {
		candidates = append(candidates, build.Abs(filepath.Join(packageDir, rel)))
	}
	return candidates
}

// globBase returns the directory a glob pattern's matches are relative to.
func globBase(pattern string) string {
	prefix := pattern[:strings.IndexByte(pattern, '*')]
	if strings.HasSuffix(prefix, string(filepath.Separator)) {
		return filepath.Clean(prefix)
	}
	return filepath.Dir(prefix)
}

// wildcardSegments counts path segments that contain a '*'.
func wildcardSegments(pattern string) int {
	n := 0
	for _, seg := range strings.Split(filepath.ToSlash(pattern), "/") {
		if strings.Contains(seg, "*") {
			n++
		}
	}
	return n
}
