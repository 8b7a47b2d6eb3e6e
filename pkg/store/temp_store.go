package store

import (
	"path/filepath"
	"testing"
)

// MustTempStore returns a Store backed by a temporary file, which is closed
// when the test finishes.
func MustTempStore(t testing.TB) DBStore {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create Store instance: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
