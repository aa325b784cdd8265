package filesystem

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestManager_CachePath(t *testing.T) {
	m := newTestManager(t)

	got := m.CachePath("Packages.gz")
	want := filepath.Join(m.RootDir(), "Packages.gz")
	if got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
}

func TestManager_OpenWriteTruncate(t *testing.T) {
	m := newTestManager(t)
	path := m.CachePath("file")
	if err := os.WriteFile(path, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := m.OpenWrite(path, false)
	if err != nil {
		t.Fatalf("OpenWrite() error = %v", err)
	}

	n, err := m.Copy(f, strings.NewReader("new"))
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if n != 3 {
		t.Errorf("Copy() = %d, want 3", n)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "new" {
		t.Errorf("content = %q, want %q", content, "new")
	}
}

func TestManager_OpenWriteAppend(t *testing.T) {
	m := newTestManager(t)
	path := m.CachePath("file")
	if err := os.WriteFile(path, []byte("0123"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := m.OpenWrite(path, true)
	if err != nil {
		t.Fatalf("OpenWrite() error = %v", err)
	}

	if _, err := m.Copy(f, bytes.NewReader([]byte("456789"))); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "0123456789" {
		t.Errorf("content = %q, want %q", content, "0123456789")
	}
}

func TestManager_OpenWriteAppendCreatesMissingFile(t *testing.T) {
	m := newTestManager(t)
	path := m.CachePath("file")

	f, err := m.OpenWrite(path, true)
	if err != nil {
		t.Fatalf("OpenWrite() error = %v", err)
	}
	if _, err := m.Copy(f, strings.NewReader("abc")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	size, err := m.FileSize(path)
	if err != nil {
		t.Fatalf("FileSize() error = %v", err)
	}
	if size != 3 {
		t.Errorf("FileSize() = %d, want 3", size)
	}
}

func TestManager_FileExistsAndDelete(t *testing.T) {
	m := newTestManager(t)
	path := m.CachePath("file")

	if m.FileExists(path) {
		t.Error("FileExists() = true before creation")
	}

	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !m.FileExists(path) {
		t.Error("FileExists() = false after creation")
	}

	if err := m.DeleteFile(path); err != nil {
		t.Errorf("DeleteFile() error = %v", err)
	}
	if m.FileExists(path) {
		t.Error("FileExists() = true after delete")
	}

	// Deleting a missing file is not an error.
	if err := m.DeleteFile(path); err != nil {
		t.Errorf("DeleteFile() on missing file error = %v", err)
	}
}

func TestManager_EnsureDir(t *testing.T) {
	m := newTestManager(t)
	path := m.CachePath(filepath.Join("feeds", "base", "Packages.gz"))

	if err := m.EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("parent dir missing: %v", err)
	}
	if !info.IsDir() {
		t.Error("parent path is not a directory")
	}
}
