package scanner

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileType classifies a file by its leading bytes
type FileType int

const (
	TypeUnknown FileType = iota
	TypeELF
	TypeScript
	TypeRpm
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case TypeELF:
		return "elf"
	case TypeScript:
		return "script"
	case TypeRpm:
		return "rpm"
	default:
		return "unknown"
	}
}

// Magic bytes for file detection
var (
	// ELF objects start with 0x7F 'E' 'L' 'F'
	elfMagic = []byte{0x7F, 'E', 'L', 'F'}

	// RPM packages start with 0xED 0xAB 0xEE 0xDB
	rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

	// Interpreted scripts start with "#!"
	shebangMagic = []byte("#!")
)

// DetectFileType determines the file type based on magic bytes
func DetectFileType(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return TypeUnknown, err
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, elfMagic):
		return TypeELF, nil
	case bytes.HasPrefix(header, rpmMagic):
		return TypeRpm, nil
	case bytes.HasPrefix(header, shebangMagic):
		return TypeScript, nil
	}
	return TypeUnknown, nil
}

// Interpreter returns the interpreter path of a "#!" script, without its
// arguments.
func Interpreter(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	rest, ok := strings.CutPrefix(line, "#!")
	if !ok {
		return "", fmt.Errorf("%s has no interpreter line", path)
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", fmt.Errorf("%s has an empty interpreter line", path)
	}
	return fields[0], nil
}
