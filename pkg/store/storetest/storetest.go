// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	. "src.xs.sh/pkg/store/storedefs"
)

var (
	entries = []Entry{
		{Text: "var x = 1;", Time: 100},
		{Text: "x + 1", Time: 101},
		{Text: "1 / 0", Time: 102, Failed: true},
		{Text: "var y = x;", Time: 103},
	}
	// Sequence numbers start at 1.
	seqEntries = func() []Entry {
		s := make([]Entry, len(entries))
		for i, e := range entries {
			e.Seq = i + 1
			s[i] = e
		}
		return s
	}()
)

// TestHistory tests the history functionality of a Store.
func TestHistory(t *testing.T, store Store) {
	startSeq, err := store.NextSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextSeq() -> %v, %v, want 1, nil", startSeq, err)
	}

	for i, e := range entries {
		wantSeq := startSeq + i
		seq, err := store.Add(e)
		if seq != wantSeq || err != nil {
			t.Errorf("store.Add(%v) -> %v, %v, want %v, nil", e, seq, err, wantSeq)
		}
	}

	endSeq, err := store.NextSeq()
	wantEndSeq := startSeq + len(entries)
	if endSeq != wantEndSeq || err != nil {
		t.Errorf("store.NextSeq() -> %v, %v, want %v, nil", endSeq, err, wantEndSeq)
	}

	got, err := store.Range(0, 100)
	if diff := cmp.Diff(seqEntries, got); diff != "" || err != nil {
		t.Errorf("store.Range(0, 100) -> err %v, diff (-want +got):\n%s", err, diff)
	}
	got, err = store.Range(2, 4)
	if diff := cmp.Diff(seqEntries[1:3], got); diff != "" || err != nil {
		t.Errorf("store.Range(2, 4) -> err %v, diff (-want +got):\n%s", err, diff)
	}

	e, err := store.Get(3)
	if diff := cmp.Diff(seqEntries[2], e); diff != "" || err != nil {
		t.Errorf("store.Get(3) -> err %v, diff (-want +got):\n%s", err, diff)
	}
	if _, err := store.Get(100); err != ErrNoMatchingEntry {
		t.Errorf("store.Get(100) -> %v, want ErrNoMatchingEntry", err)
	}

	matchTests := []struct {
		next     bool
		seq      int
		prefix   string
		wantSeq  int
		wantFail bool
	}{
		{true, 1, "var", 1, false},
		{true, 2, "var", 4, false},
		{true, 5, "var", 0, true},
		{true, 1, "nope", 0, true},
		{false, 5, "var", 4, false},
		{false, 4, "var", 1, false},
		{false, 100, "x", 2, false},
		{false, 1, "var", 0, true},
	}
	for _, test := range matchTests {
		var e Entry
		var err error
		if test.next {
			e, err = store.NextMatch(test.seq, test.prefix)
		} else {
			e, err = store.PrevMatch(test.seq, test.prefix)
		}
		if test.wantFail {
			if err != ErrNoMatchingEntry {
				t.Errorf("match %+v -> %v, want ErrNoMatchingEntry", test, err)
			}
		} else if err != nil || e.Seq != test.wantSeq {
			t.Errorf("match %+v -> (%v, %v), want seq %d", test, e, err, test.wantSeq)
		}
	}

	if err := store.Del(2); err != nil {
		t.Errorf("store.Del(2) -> %v", err)
	}
	got, err = store.Range(0, 100)
	want := []Entry{seqEntries[0], seqEntries[2], seqEntries[3]}
	if diff := cmp.Diff(want, got); diff != "" || err != nil {
		t.Errorf("store.Range after Del -> err %v, diff (-want +got):\n%s", err, diff)
	}
	if seq, _ := store.NextSeq(); seq != wantEndSeq {
		t.Errorf("Del changed NextSeq to %d, want %d", seq, wantEndSeq)
	}
}
