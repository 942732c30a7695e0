package generator

import (
	"context"
	"io"

	"github.com/ralt/rpmgen/internal/models"
)

// Writer serializes an assembled package
type Writer interface {
	// Write streams the package file to w
	Write(ctx context.Context, pkg *models.Package, w io.Writer) error

	// WritePackage writes the package file to path
	WritePackage(ctx context.Context, pkg *models.Package, path string) error
}

// Reader reads back the metadata of a written package file
type Reader func(path string) (*models.PackageInfo, error)
