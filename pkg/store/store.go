// Package store keeps the REPL history in a bbolt database.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.xs.sh/pkg/logutil"
	. "src.xs.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const bucketHistory = "history"

// Functions run when opening a database, keyed by what they do.
var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend for the REPL.
type DBStore interface {
	Store
	Close() error
}

type dbStore struct {
	db *bolt.DB
}

func dbWithDefaultOptions(dbname string) (*bolt.DB, error) {
	// Another REPL holding the database makes Open fail after the timeout
	// instead of blocking forever.
	return bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := dbWithDefaultOptions(dbname)
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	return st, err
}

// Close closes the database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
