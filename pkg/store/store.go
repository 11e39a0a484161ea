// Package store abstracts the persistent storage used by the tacl shell: the
// command history kept across sessions. It is backed by a bolt database.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.tacl.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[store] ")

// initDB keeps the database initialization actions, each under a short
// description used in error messages.
var initDB = map[string]func(*bolt.Tx) error{}

// Store is the interface satisfied by the storage backend.
type Store interface {
	NextCmdSeq() (int, error)
	AddCmd(text string) (int, error)
	DelCmd(seq int) error
	Cmd(seq int) (string, error)
	CmdsWithSeq(from, upto int) ([]Cmd, error)
	NextCmd(from int, prefix string) (Cmd, error)
	PrevCmd(upto int, prefix string) (Cmd, error)
	Close() error
}

// Cmd is an entry in the command history.
type Cmd struct {
	Text string
	Seq  int
}

type dbStore struct {
	db *bolt.DB
}

// NewStore opens the database at the given path, creating it and its buckets
// as needed. Opening blocks for at most a second waiting for a file lock held
// by another process.
func NewStore(dbPath string) (Store, error) {
	db, err := bolt.Open(dbPath, 0o644, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Println("opened database at", dbPath)
	return &dbStore{db}, nil
}

func (s *dbStore) Close() error {
	return s.db.Close()
}
