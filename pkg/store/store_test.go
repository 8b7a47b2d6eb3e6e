package store_test

import (
	"path/filepath"
	"testing"

	"src.xs.sh/pkg/store"
	"src.xs.sh/pkg/store/storedefs"
	"src.xs.sh/pkg/store/storetest"
)

var storetestEntry = storedefs.Entry{Text: "var x = 1;", Time: 1}

func TestHistory(t *testing.T) {
	storetest.TestHistory(t, store.MustTempStore(t))
}

func TestNewStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	st.Add(storetestEntry)
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	e, err := st.Get(1)
	if err != nil || e.Text != storetestEntry.Text {
		t.Errorf("after reopening, Get(1) -> (%v, %v)", e, err)
	}
	if seq, _ := st.NextSeq(); seq != 2 {
		t.Errorf("after reopening, NextSeq() -> %d, want 2", seq)
	}
}
