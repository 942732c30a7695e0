package utils

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/ulikunitz/xz"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewPayloadWriter wraps w in the compressor selected by c. Closing the
// returned writer flushes the compressor but does not close w.
func NewPayloadWriter(w io.Writer, c models.Compression) (io.WriteCloser, error) {
	switch c {
	case models.CompressNone:
		return nopWriteCloser{w}, nil
	case models.CompressGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case models.CompressZstd:
		return zstd.NewWriter(w)
	case models.CompressXz:
		return xz.NewWriter(w)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidCompression, c)
	}
}

// PayloadCompressor returns the RPM payload compressor name and flags of c.
func PayloadCompressor(c models.Compression) (name, flags string) {
	switch c {
	case models.CompressGzip:
		return "gzip", "9"
	case models.CompressZstd:
		return "zstd", "3"
	case models.CompressXz:
		return "xz", "6"
	default:
		return "ufdio", ""
	}
}

// ParsePayloadCompressor maps an RPM payload compressor name back to a
// Compression. Packages without the tag use gzip.
func ParsePayloadCompressor(name string) (models.Compression, error) {
	switch name {
	case "ufdio":
		return models.CompressNone, nil
	case "", "gzip":
		return models.CompressGzip, nil
	case "zstd":
		return models.CompressZstd, nil
	case "xz":
		return models.CompressXz, nil
	}
	return 0, fmt.Errorf("%w: unsupported payload compressor %q", models.ErrInvalidCompression, name)
}

// NewPayloadReader is the inverse of NewPayloadWriter.
func NewPayloadReader(r io.Reader, c models.Compression) (io.Reader, error) {
	switch c {
	case models.CompressNone:
		return r, nil
	case models.CompressGzip:
		return gzip.NewReader(r)
	case models.CompressZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case models.CompressXz:
		return xz.NewReader(r)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidCompression, c)
	}
}
