package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteConfigFile writes a TOML config into dir and returns its path.
func WriteConfigFile(t testing.TB, dir, contents string) string {
	t.Helper()

	path := filepath.Join(dir, "tvmeta.toml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
