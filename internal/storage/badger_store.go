// Package storage indexes commit messages so that `find` doesn't need to
// re-read and re-parse every commit object on every invocation.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// CommitIndex maps commit messages to the set of commit hashes that carry
// them, persisted in a single Badger database under .store/metadb.
type CommitIndex struct {
	db *badger.DB
}

// Open opens (creating if necessary) the commit-message index at dir.
func Open(dir string) (*CommitIndex, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening commit index: %w", err)
	}
	return &CommitIndex{db: db}, nil
}

// Close releases the underlying database handle.
func (c *CommitIndex) Close() error {
	return c.db.Close()
}

func messageKey(message string) []byte {
	return []byte("msg:" + message)
}

// Add records that hash carries message, transactionally merging it into
// the existing set for that message.
func (c *CommitIndex) Add(message, hash string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		hashes, err := readHashes(txn, message)
		if err != nil {
			return err
		}

		for _, existing := range hashes {
			if existing == hash {
				return nil
			}
		}
		hashes = append(hashes, hash)

		data, err := json.Marshal(hashes)
		if err != nil {
			return fmt.Errorf("marshaling commit index entry: %w", err)
		}
		return txn.Set(messageKey(message), data)
	})
}

// Find returns every commit hash ever recorded under message, in the order
// they were added.
func (c *CommitIndex) Find(message string) ([]string, error) {
	var hashes []string
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		hashes, err = readHashes(txn, message)
		return err
	})
	return hashes, err
}

func readHashes(txn *badger.Txn, message string) ([]string, error) {
	item, err := txn.Get(messageKey(message))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var hashes []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &hashes)
	})
	return hashes, err
}
