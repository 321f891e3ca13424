package testenv

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTempFile writes content into a file in a per-test temporary directory and returns its name.
// The directory is deleted during cleanup.
func WriteTempFile(t testing.TB, name string, content []byte) (filename string) {
	filename = filepath.Join(t.TempDir(), name)
	if e := os.WriteFile(filename, content, 0o644); e != nil {
		t.Fatalf("os.WriteFile(%s) %v", filename, e)
	}
	return filename
}
