package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ScannedFile is a regular file found under a directory
type ScannedFile struct {
	// Path is the full path of the file.
	Path string
	// Rel is Path relative to the scanned directory, slash separated.
	Rel  string
	Mode fs.FileMode
	Size int64
}

// ListFiles recursively lists the regular files under dir in lexical order.
// Symlinks to files are listed with the target's mode and size; symlinked
// directories are not descended into.
func ListFiles(ctx context.Context, dir string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			return nil
		}

		// symlinks are followed like any other asset source
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			logrus.Debugf("Skipping %s (%s)", path, info.Mode().Type())
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		files = append(files, ScannedFile{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Mode: info.Mode(),
			Size: info.Size(),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Debugf("Found %d files in %s", len(files), dir)
	return files, nil
}
