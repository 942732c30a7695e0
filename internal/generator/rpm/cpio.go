package rpm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
)

const (
	cpioMagic      = "070701"
	cpioTrailer    = "TRAILER!!!"
	cpioHeaderSize = 110
)

type cpioEntry struct {
	ino   uint32
	mode  uint32
	mtime uint32
	name  string
	data  []byte
}

// cpioWriter emits a "newc" archive as expected in RPM payloads.
type cpioWriter struct {
	w io.Writer
	n int64
}

func (c *cpioWriter) write(p []byte) error {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return err
}

func (c *cpioWriter) pad() error {
	if rem := c.n % 4; rem != 0 {
		return c.write(make([]byte, 4-rem))
	}
	return nil
}

func (c *cpioWriter) writeEntry(e cpioEntry) error {
	nlink := uint32(1)
	hdr := fmt.Sprintf("%s%08X%08X%08X%08X%08X%08X%08X%08X%08X%08X%08X%08X%08X",
		cpioMagic,
		e.ino, e.mode, 0, 0, nlink, e.mtime, len(e.data),
		0, 0, 0, 0,
		len(e.name)+1, 0,
	)
	if err := c.write([]byte(hdr)); err != nil {
		return err
	}
	if err := c.write(append([]byte(e.name), 0)); err != nil {
		return err
	}
	if err := c.pad(); err != nil {
		return err
	}
	if err := c.write(e.data); err != nil {
		return err
	}
	return c.pad()
}

func (c *cpioWriter) close() error {
	return c.writeEntry(cpioEntry{name: cpioTrailer})
}

type cpioReader struct {
	r io.Reader
	n int64
}

func (c *cpioReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *cpioReader) skip(n int64) error {
	_, err := io.CopyN(io.Discard, c, n)
	return err
}

func (c *cpioReader) align() error {
	if rem := c.n % 4; rem != 0 {
		return c.skip(4 - rem)
	}
	return nil
}

// readCpio lists the members of a "newc" archive up to its trailer.
func readCpio(r io.Reader) ([]models.PayloadEntry, error) {
	c := &cpioReader{r: r}
	hdr := make([]byte, cpioHeaderSize)

	var entries []models.PayloadEntry
	for {
		if _, err := io.ReadFull(c, hdr); err != nil {
			return nil, fmt.Errorf("failed to read cpio header: %w", err)
		}
		if string(hdr[:6]) != cpioMagic {
			return nil, fmt.Errorf("bad cpio magic %q at offset %d", hdr[:6], c.n-cpioHeaderSize)
		}

		// fields follow the magic as 8 hex digits each
		var fields [13]uint32
		for i := range fields {
			v, err := strconv.ParseUint(string(hdr[6+8*i:14+8*i]), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("bad cpio header field %d: %w", i, err)
			}
			fields[i] = uint32(v)
		}
		mode, mtime, size, namesize := fields[1], fields[5], int64(fields[6]), fields[11]

		name := make([]byte, namesize)
		if _, err := io.ReadFull(c, name); err != nil {
			return nil, fmt.Errorf("failed to read cpio entry name: %w", err)
		}
		if err := c.align(); err != nil {
			return nil, err
		}

		entry := strings.TrimRight(string(name), "\x00")
		if entry == cpioTrailer {
			return entries, nil
		}

		if err := c.skip(size); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry, err)
		}
		if err := c.align(); err != nil {
			return nil, err
		}
		entries = append(entries, models.PayloadEntry{Name: entry, Mode: mode, Size: size, MTime: mtime})
	}
}
