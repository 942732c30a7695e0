// Package testutil builds fixtures shared by package tests.
package testutil

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// ELF returns a minimal little-endian x86-64 ELF executable whose dynamic
// section lists needed as DT_NEEDED entries, in order.
func ELF(needed ...string) []byte {
	return buildELF(needed, false)
}

// ELFWithBrokenDynamic returns an ELF whose dynamic section size is not a
// multiple of the entry size.
func ELFWithBrokenDynamic(needed ...string) []byte {
	return buildELF(needed, true)
}

// WriteELF writes ELF(needed...) to dir/name with mode 0755.
func WriteELF(tb testing.TB, dir, name string, needed ...string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, ELF(needed...), 0o755); err != nil {
		tb.Fatalf("write elf: %v", err)
	}
	return path
}

func buildELF(needed []string, broken bool) []byte {
	const (
		ehsize    = 64
		shentsize = 64
		dynsize   = 16
	)

	// .dynstr
	dynstr := []byte{0}
	offsets := make([]uint64, len(needed))
	for i, lib := range needed {
		offsets[i] = uint64(len(dynstr))
		dynstr = append(dynstr, lib...)
		dynstr = append(dynstr, 0)
	}

	// .dynamic
	var dynamic bytes.Buffer
	for _, off := range offsets {
		binary.Write(&dynamic, binary.LittleEndian, elf.Dyn64{Tag: int64(elf.DT_NEEDED), Val: off})
	}
	binary.Write(&dynamic, binary.LittleEndian, elf.Dyn64{Tag: int64(elf.DT_NULL)})
	if broken {
		dynamic.Write([]byte{0, 0, 0})
	}

	// .shstrtab
	shstrtab := []byte("\x00.dynstr\x00.dynamic\x00.shstrtab\x00")
	const (
		nameDynstr   = 1
		nameDynamic  = 9
		nameShstrtab = 18
	)

	dynstrOff := uint64(ehsize)
	dynamicOff := align8(dynstrOff + uint64(len(dynstr)))
	shstrtabOff := dynamicOff + uint64(dynamic.Len())
	shOff := align8(shstrtabOff + uint64(len(shstrtab)))

	var buf bytes.Buffer
	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Ehsize:    ehsize,
		Phentsize: 56,
		Shentsize: shentsize,
		Shnum:     4,
		Shstrndx:  3,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	hdr.Ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)
	binary.Write(&buf, binary.LittleEndian, hdr)

	buf.Write(dynstr)
	pad(&buf, dynamicOff)
	buf.Write(dynamic.Bytes())
	buf.Write(shstrtab)
	pad(&buf, shOff)

	sections := []elf.Section64{
		{},
		{Name: nameDynstr, Type: uint32(elf.SHT_STRTAB), Flags: uint64(elf.SHF_ALLOC), Off: dynstrOff, Size: uint64(len(dynstr)), Addralign: 1},
		{Name: nameDynamic, Type: uint32(elf.SHT_DYNAMIC), Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE), Off: dynamicOff, Size: uint64(dynamic.Len()), Link: 1, Addralign: 8, Entsize: dynsize},
		{Name: nameShstrtab, Type: uint32(elf.SHT_STRTAB), Off: shstrtabOff, Size: uint64(len(shstrtab)), Addralign: 1},
	}
	for _, s := range sections {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func align8(n uint64) uint64 {
	return (n + 7) &^ 7
}

func pad(buf *bytes.Buffer, to uint64) {
	for uint64(buf.Len()) < to {
		buf.WriteByte(0)
	}
}
