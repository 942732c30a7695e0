// Package assets turns declared assets into concrete source files and
// install paths.
package assets

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Resolve expands every spec into resolved assets. A glob that matches
// nothing contributes nothing; a plain source that exists nowhere is an
// error, and so is an empty result.
func Resolve(ctx context.Context, specs []models.AssetSpec, build models.BuildContext, packageDir string) ([]models.ResolvedAsset, error) {
	var resolved []models.ResolvedAsset

	for i, spec := range specs {
		subject := fmt.Sprintf("assets[%d] %s", i, spec.Source)

		dest, err := models.NormalizeDest(spec.Dest)
		if err != nil {
			return nil, models.ConfigError(subject, err)
		}
		spec.Dest = dest

		if spec.HasWildcard() {
			if wildcardSegments(spec.Source) > 1 {
				return nil, models.AssetError(subject, fmt.Errorf("%w: only one wildcard segment is supported", models.ErrInvalidGlob))
			}
			if !spec.DestIsDir() {
				return nil, models.AssetError(subject, fmt.Errorf("%w: %s", models.ErrDestinationMustBeDirectory, spec.Dest))
			}
		}

		found, err := resolveSpec(ctx, spec, build, packageDir)
		if err != nil {
			return nil, models.AssetError(subject, err)
		}
		if found == nil {
			if spec.HasWildcard() {
				logrus.Warnf("Asset pattern %s matched no files", spec.Source)
				continue
			}
			return nil, models.AssetError(subject, fmt.Errorf("%w: %s", models.ErrSourceNotFound, spec.Source))
		}

		for _, asset := range found {
			logrus.Debugf("Asset %s -> %s", asset.Source, asset.Dest)
		}
		resolved = append(resolved, found...)
	}

	if len(resolved) == 0 {
		return nil, models.AssetError("assets", models.ErrEmptyPackage)
	}

	seen := make(map[string]string, len(resolved))
	for _, asset := range resolved {
		if prev, ok := seen[asset.Dest]; ok {
			return nil, models.AssetError(asset.Dest,
				fmt.Errorf("%w: provided by %s and %s", models.ErrDuplicateDestination, prev, asset.Source))
		}
		seen[asset.Dest] = asset.Source
	}

	logrus.Infof("Resolved %d assets", len(resolved))
	return resolved, nil
}

// resolveSpec tries each candidate root in order and returns the matches of
// the first root that has any. A nil result means nothing was found.
func resolveSpec(ctx context.Context, spec models.AssetSpec, build models.BuildContext, packageDir string) ([]models.ResolvedAsset, error) {
	for _, candidate := range Candidates(spec.Source, build, packageDir) {
		var (
			found []models.ResolvedAsset
			err   error
		)
		if spec.HasWildcard() {
			found, err = expandGlob(spec, candidate)
		} else {
			found, err = expandPath(ctx, spec, candidate)
		}
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found, nil
		}
		logrus.Debugf("No match for %s at %s", spec.Source, candidate)
	}
	return nil, nil
}

func expandGlob(spec models.AssetSpec, pattern string) ([]models.ResolvedAsset, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidGlob, err)
	}

	base := globBase(pattern)
	var found []models.ResolvedAsset
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(base, match)
		if err != nil {
			return nil, err
		}
		found = append(found, newAsset(match, path.Join(spec.Dest, filepath.ToSlash(rel)), spec.Options, info.Mode()))
	}
	return found, nil
}

func expandPath(ctx context.Context, spec models.AssetSpec, source string) ([]models.ResolvedAsset, error) {
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if !info.IsDir() {
		dest := spec.Dest
		if spec.DestIsDir() {
			dest = path.Join(dest, filepath.Base(source))
		}
		return []models.ResolvedAsset{newAsset(source, dest, spec.Options, info.Mode())}, nil
	}

	if !spec.DestIsDir() {
		return nil, fmt.Errorf("%w: %s is a directory, %s is not", models.ErrDestinationMustBeDirectory, spec.Source, spec.Dest)
	}

	files, err := scanner.ListFiles(ctx, source)
	if err != nil {
		return nil, err
	}

	opts := spec.Options
	if opts.Mode&models.ModeTypeMask == models.ModeDir {
		opts.Mode = 0
	}
	found := make([]models.ResolvedAsset, 0, len(files))
	for _, f := range files {
		found = append(found, newAsset(f.Path, path.Join(spec.Dest, f.Rel), opts, f.Mode))
	}
	return found, nil
}

func newAsset(source, dest string, opts models.FileOptions, diskMode fs.FileMode) models.ResolvedAsset {
	return models.ResolvedAsset{
		Source:     source,
		Dest:       dest,
		Options:    opts,
		Executable: isExecutable(source, opts, diskMode),
	}
}

// isExecutable decides whether auto-req should look at the file: the
// declared mode if any, else the on-disk permissions, else a shared
// object file name.
func isExecutable(source string, opts models.FileOptions, diskMode fs.FileMode) bool {
	if opts.Mode != 0 {
		return opts.Mode&0o111 != 0
	}
	if diskMode.Perm()&0o111 != 0 {
		return true
	}
	base := filepath.Base(source)
	return strings.HasSuffix(base, ".so") || strings.Contains(base, ".so.")
}
