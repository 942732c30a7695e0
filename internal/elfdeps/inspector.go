// Package elfdeps reads the shared libraries an ELF object declares as
// needed.
package elfdeps

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultSearchRoots are the directories Locate looks in.
var DefaultSearchRoots = []string{"/lib64", "/usr/lib64", "/lib", "/usr/lib"}

// Inspector extracts DT_NEEDED entries from ELF files.
type Inspector struct {
	// SearchRoots are consulted by Locate. Nil disables lookup.
	SearchRoots []string
}

// NewInspector returns an inspector that reports library locations from
// the default search roots in debug output.
func NewInspector() *Inspector {
	return &Inspector{SearchRoots: DefaultSearchRoots}
}

// Inspect returns the sonames path declares as needed, in file order.
func (i *Inspector) Inspect(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.InspectorError(path, err)
	}
	defer f.Close()

	magic := make([]byte, len(elf.ELFMAG))
	if _, err := io.ReadFull(f, magic); err != nil || !bytes.Equal(magic, []byte(elf.ELFMAG)) {
		return nil, models.InspectorError(path, models.ErrNotElf)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, models.InspectorError(path, fmt.Errorf("%w: %v", models.ErrMalformedDynamicSection, err))
	}
	defer ef.Close()

	needed, err := ef.DynString(elf.DT_NEEDED)
	if err != nil {
		return nil, models.InspectorError(path, fmt.Errorf("%w: %v", models.ErrMalformedDynamicSection, err))
	}

	for _, soname := range needed {
		if loc, ok := i.Locate(soname); ok {
			logrus.Debugf("%s needs %s => %s", path, soname, loc)
		} else {
			logrus.Debugf("%s needs %s", path, soname)
		}
	}
	return needed, nil
}

// Locate finds soname under the search roots.
func (i *Inspector) Locate(soname string) (string, bool) {
	for _, root := range i.SearchRoots {
		p := filepath.Join(root, soname)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
