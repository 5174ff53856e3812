package mmfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenSized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hive.bin")
	if err := os.WriteFile(path, []byte("regf"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, size, err := openSized(path)
	if err != nil {
		t.Fatalf("openSized: %v", err)
	}
	defer f.Close()
	if size != 4 {
		t.Fatalf("size: got %d want 4", size)
	}
}

func TestOpenSizedMissingFile(t *testing.T) {
	_, _, err := openSized(filepath.Join(t.TempDir(), "absent.bin"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNoopCleanup(t *testing.T) {
	if err := noopCleanup(); err != nil {
		t.Fatalf("noopCleanup: %v", err)
	}
}
