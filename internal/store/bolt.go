package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	booksBucket    = []byte("books")
	chaptersBucket = []byte("chapters")
)

// BoltStore is a Store backed by a bbolt database file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{booksBucket, chaptersBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveBook implements Store.
func (s *BoltStore) SaveBook(b *Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode book %s: %w", b.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).Put([]byte(b.ID), data)
	})
}

// SaveChapter implements Store. Concurrent calls are coalesced into batches.
func (s *BoltStore) SaveChapter(c *Chapter) error {
	if c.BookID == "" {
		return fmt.Errorf("chapter %d has no book id", c.Index)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode chapter %d: %w", c.Index, err)
	}
	return s.db.Batch(func(tx *bolt.Tx) error {
		return tx.Bucket(chaptersBucket).Put(chapterKey(c.BookID, c.Index), data)
	})
}

// Book implements Store.
func (s *BoltStore) Book(id string) (*Book, error) {
	var b Book
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(booksBucket).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("book %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(v, &b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Chapter implements Store.
func (s *BoltStore) Chapter(bookID string, index int) (*Chapter, error) {
	var c Chapter
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chaptersBucket).Get(chapterKey(bookID, index))
		if v == nil {
			return fmt.Errorf("book %s chapter %d: %w", bookID, index, ErrNotFound)
		}
		return json.Unmarshal(v, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Chapters implements Store.
func (s *BoltStore) Chapters(bookID string) ([]*Chapter, error) {
	var out []*Chapter
	prefix := []byte(bookID + "/")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(chaptersBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var ch Chapter
			if err := json.Unmarshal(v, &ch); err != nil {
				return fmt.Errorf("corrupt chapter record %s: %w", k, err)
			}
			out = append(out, &ch)
		}
		return nil
	})
	return out, err
}

// ListBooks implements Store. Books are ordered by title, then ID.
func (s *BoltStore) ListBooks() ([]*Book, error) {
	var out []*Book
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).ForEach(func(k, v []byte) error {
			var b Book
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("corrupt book record %s: %w", k, err)
			}
			out = append(out, &b)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// chapterKey orders chapters of one book by index under a cursor scan.
func chapterKey(bookID string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", bookID, index))
}

var _ Store = (*BoltStore)(nil)
