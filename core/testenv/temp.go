package testenv

import (
	"path/filepath"
	"testing"
)

// TempName creates a temporary filename in a temporary directory.
// The temporary directory and contained files are automatically deleted during cleanup.
func TempName(t testing.TB, name ...string) (filename string) {
	dir := t.TempDir()
	switch len(name) {
	case 0:
		filename = "temp"
	default:
		filename = name[0]
	}
	return filepath.Join(dir, filename)
}
