package persistence

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"

	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/identifier"
)

// store.go implements the single-file ACID key-value store (§4.E): one
// bucket, `matches`, mapping torrent id to a gob-encoded Entry. The
// gob-encode-then-transaction pattern is carried over from
// doingodswork-deflix-stremio's badger-backed gobSet/gobGet, substituting
// bbolt's db.Update/db.View for badger's transaction API because §4.E/§6
// require a literal single file on disk.

var matchesBucket = []byte("matches")

// Entry is one persisted identification, keyed by torrent id.
type Entry struct {
	Item           debrid.TorrentInventoryItem
	Identification identifier.Identification
}

type Store struct {
	db  *bbolt.DB
	log zerolog.Logger
}

// Open creates or opens the single-file store at path, migrating away any
// legacy directory-shaped store first (§4.E: "the previous layout is
// replaced ... the old directory is removed").
func Open(path string) (*Store, error) {
	log := logger.New("persistence")

	if err := migrateLegacyLayout(path, log); err != nil {
		return nil, fmt.Errorf("migrating legacy store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(matchesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating matches bucket: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func migrateLegacyLayout(path string, log zerolog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		log.Warn().Str("path", path).Msg("removing legacy directory-shaped store, identification history starts fresh")
		return os.RemoveAll(path)
	}
	return nil
}

// ReadAll loads every persisted entry in one read transaction.
func (s *Store) ReadAll() (map[string]Entry, error) {
	out := make(map[string]Entry)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(matchesBucket)
		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := gobDecode(v, &entry); err != nil {
				s.log.Warn().Str("id", string(k)).Err(err).Msg("dropping corrupt persistence entry")
				return nil
			}
			out[string(k)] = entry
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading persisted identifications: %w", err)
	}
	return out, nil
}

// Insert commits one identification in its own write transaction.
func (s *Store) Insert(id string, entry Entry) error {
	data, err := gobEncode(entry)
	if err != nil {
		return fmt.Errorf("encoding entry %s: %w", id, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(matchesBucket)
		return b.Put([]byte(id), data)
	})
}

// Delete removes a persisted entry, e.g. once its torrent is gone from
// inventory.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(matchesBucket).Delete([]byte(id))
	})
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func gobEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
