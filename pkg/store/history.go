package store

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	. "src.xs.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize history table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketHistory))
		return err
	}
}

// NextSeq returns the next sequence number of the history.
func (s *dbStore) NextSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		seq = b.Sequence() + 1
		return nil
	})
	return int(seq), err
}

// Add adds a new entry to the history and returns its sequence number. The
// Seq field of e is ignored.
func (s *dbStore) Add(e Entry) (int, error) {
	data, err := cbor.Marshal(e)
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
	return int(seq), err
}

// Del deletes the history entry with the given sequence number.
func (s *dbStore) Del(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		return b.Delete(marshalSeq(uint64(seq)))
	})
}

// Get queries the history entry with the specified sequence number.
func (s *dbStore) Get(seq int) (Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		v := b.Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingEntry
		}
		var err error
		e, err = unmarshalEntry(uint64(seq), v)
		return err
	})
	return e, err
}

// iterate calls f with the entries in the specified range, in order, until f
// returns false.
func (s *dbStore) iterate(from, upto int, f func(Entry) bool) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			e, err := unmarshalEntry(unmarshalSeq(k), v)
			if err != nil {
				return err
			}
			if !f(e) {
				break
			}
		}
		return nil
	})
}

// Range returns all entries within the specified range.
func (s *dbStore) Range(from, upto int) ([]Entry, error) {
	var entries []Entry
	err := s.iterate(from, upto, func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, err
}

// NextMatch finds the first entry after the given sequence number
// (inclusive) with the given prefix.
func (s *dbStore) NextMatch(from int, prefix string) (Entry, error) {
	var e Entry
	found := false
	err := s.iterate(from, math.MaxInt, func(candidate Entry) bool {
		if strings.HasPrefix(candidate.Text, prefix) {
			e, found = candidate, true
			return false
		}
		return true
	})
	if err == nil && !found {
		err = ErrNoMatchingEntry
	}
	return e, err
}

// PrevMatch finds the last entry before the given sequence number
// (exclusive) with the given prefix.
func (s *dbStore) PrevMatch(upto int, prefix string) (Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		c := b.Cursor()

		var v []byte
		k, _ := c.Seek(marshalSeq(uint64(upto)))
		if k == nil { // upto > LAST
			k, v = c.Last()
			if k == nil {
				return ErrNoMatchingEntry
			}
		} else {
			k, v = c.Prev() // upto exists, find the previous one
		}

		for ; k != nil; k, v = c.Prev() {
			candidate, err := unmarshalEntry(unmarshalSeq(k), v)
			if err != nil {
				return err
			}
			if strings.HasPrefix(candidate.Text, prefix) {
				e = candidate
				return nil
			}
		}
		return ErrNoMatchingEntry
	})
	return e, err
}

func unmarshalEntry(seq uint64, data []byte) (Entry, error) {
	var e Entry
	err := cbor.Unmarshal(data, &e)
	e.Seq = int(seq)
	return e, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
