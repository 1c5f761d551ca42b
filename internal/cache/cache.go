// Package cache persists per-file results between batch runs so unchanged
// files are not re-processed. Entries are keyed by a content fingerprint
// covering the file bytes and the output-affecting configuration; the
// pipeline itself knows nothing about this store.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"docgen/internal/types"
)

var bucketFiles = []byte("files")

// Store is a bbolt-backed result cache.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFiles)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint derives the cache key for a file's content under the given
// configuration digest.
func Fingerprint(content []byte, configDigest string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(configDigest))
	return hex.EncodeToString(h.Sum(nil))
}

// Entry is the cached outcome for one file.
type Entry struct {
	Output  []byte                  `json:"output"`
	Results []types.DocstringResult `json:"results"`
	Skipped []string                `json:"skipped,omitempty"`
	Changed bool                    `json:"changed"`
}

// Get returns the entry for fingerprint fp, with ok=false on a miss.
func (s *Store) Get(fp string) (*Entry, bool, error) {
	var entry *Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketFiles).Get([]byte(fp))
		if data == nil {
			return nil
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("decode cache entry: %w", err)
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return entry, entry != nil, nil
}

// Put stores the entry under fingerprint fp.
func (s *Store) Put(fp string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(fp), data)
	})
}
