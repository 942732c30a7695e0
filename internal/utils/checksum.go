package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"
)

// Checksum contains the digests of a file
type Checksum struct {
	SHA256 string
	Size   int64
}

// CalculateChecksums reads a file once and returns its digest and size
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, err
	}

	return &Checksum{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   n,
	}, nil
}

// CalculateChecksum calculates a specific checksum for data
func CalculateChecksum(data []byte, hashType string) string {
	return hex.EncodeToString(Digest(data, hashType))
}

// Digest returns the raw digest of data
func Digest(data []byte, hashType string) []byte {
	var h hash.Hash

	switch hashType {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha512":
		h = sha512.New()
	default:
		h = sha256.New()
	}

	h.Write(data)
	return h.Sum(nil)
}
