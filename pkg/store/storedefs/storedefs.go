// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoMatchingEntry is the error returned when a query for a history entry
// completes with no result.
var ErrNoMatchingEntry = errors.New("no matching history entry")

// Store is an interface satisfied by the storage service.
type Store interface {
	NextSeq() (int, error)
	Add(e Entry) (int, error)
	Del(seq int) error
	Get(seq int) (Entry, error)
	Range(from, upto int) ([]Entry, error)
	NextMatch(from int, prefix string) (Entry, error)
	PrevMatch(upto int, prefix string) (Entry, error)
}

// Entry is a submission in the REPL history.
type Entry struct {
	// Sequence number, assigned by the store.
	Seq int `cbor:"-"`
	// Source code of the submission.
	Text string `cbor:"1,keyasint"`
	// Time of the submission, in Unix seconds.
	Time int64 `cbor:"2,keyasint,omitempty"`
	// Whether the submission failed to parse or threw.
	Failed bool `cbor:"3,keyasint,omitempty"`
}
