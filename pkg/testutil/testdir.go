package testutil

import (
	"os"
	"path/filepath"

	"src.xs.sh/pkg/must"
)

// InTempDir creates a temporary directory, changes into it for the duration
// of the test, and returns its path.
func InTempDir(c TempDirer) string {
	dir := c.TempDir()
	oldWd := must.OK1(os.Getwd())
	must.Chdir(dir)
	c.Cleanup(func() { must.Chdir(oldWd) })
	return dir
}

// ApplyDir creates the given files in the current directory. Keys are file
// names (slash-separated); values are file contents.
func ApplyDir(files map[string]string) {
	for name, content := range files {
		must.WriteFile(filepath.FromSlash(name), content)
	}
}
