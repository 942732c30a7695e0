package models

import (
	"fmt"
	"strings"
)

// Compression selects the payload compressor.
type Compression int

const (
	CompressZstd Compression = iota
	CompressGzip
	CompressXz
	CompressNone
)

func (c Compression) String() string {
	switch c {
	case CompressZstd:
		return "zstd"
	case CompressGzip:
		return "gzip"
	case CompressXz:
		return "xz"
	case CompressNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseCompression parses a --payload-compress value.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "zstd":
		return CompressZstd, nil
	case "gzip":
		return CompressGzip, nil
	case "xz":
		return CompressXz, nil
	case "none":
		return CompressNone, nil
	}
	return 0, ConfigError("payload-compress", fmt.Errorf("%w: %q", ErrInvalidCompression, s))
}
