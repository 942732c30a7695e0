package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFileType(t *testing.T) {
	dir := t.TempDir()

	files := map[string]struct {
		content []byte
		want    FileType
	}{
		"elf":    {[]byte{0x7F, 'E', 'L', 'F', 2, 1, 1}, TypeELF},
		"rpm":    {[]byte{0xED, 0xAB, 0xEE, 0xDB, 3, 0}, TypeRpm},
		"script": {[]byte("#!/bin/sh\necho hi\n"), TypeScript},
		"text":   {[]byte("hello world"), TypeUnknown},
		"tiny":   {[]byte("#"), TypeUnknown},
		"empty":  {nil, TypeUnknown},
	}

	for name, tt := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, tt.content, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}

		got, err := DetectFileType(path)
		if err != nil {
			t.Fatalf("DetectFileType(%s) failed: %v", name, err)
		}
		if got != tt.want {
			t.Errorf("DetectFileType(%s) = %s, want %s", name, got, tt.want)
		}
	}

	if _, err := DetectFileType(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestInterpreter(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "tool")
	if err := os.WriteFile(path, []byte("#! /usr/bin/env python3 -u\nprint()\n"), 0755); err != nil {
		t.Fatal(err)
	}
	interp, err := Interpreter(path)
	if err != nil {
		t.Fatalf("Interpreter failed: %v", err)
	}
	if interp != "/usr/bin/env" {
		t.Errorf("Interpreter = %q, want /usr/bin/env", interp)
	}

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("no shebang"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Interpreter(plain); err == nil {
		t.Error("Expected error for file without interpreter line")
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"b.txt", "a/z.txt", "a/b/c.txt"} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListFiles(context.Background(), dir)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}

	want := []string{"a/b/c.txt", "a/z.txt", "b.txt"}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %d", len(want), len(files))
	}
	for i, f := range files {
		if f.Rel != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.Rel, want[i])
		}
	}
}

func TestListFilesFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()

	target := filepath.Join(outside, "real.conf")
	if err := os.WriteFile(target, []byte("key=value\n"), 0640); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "linked.conf")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "linked-dir")); err != nil {
		t.Fatal(err)
	}

	files, err := ListFiles(context.Background(), dir)
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %+v", files)
	}
	linked := files[0]
	if linked.Rel != "linked.conf" {
		t.Fatalf("files[0] = %s, want linked.conf", linked.Rel)
	}
	if !linked.Mode.IsRegular() || linked.Mode.Perm() != 0640 || linked.Size != 10 {
		t.Errorf("Expected target's mode and size, got %s %d", linked.Mode, linked.Size)
	}

	if err := os.Symlink(filepath.Join(outside, "missing"), filepath.Join(dir, "dangling")); err != nil {
		t.Fatal(err)
	}
	if _, err := ListFiles(context.Background(), dir); err == nil {
		t.Error("Expected an error for a dangling symlink")
	}
}
