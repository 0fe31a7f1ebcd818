package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// ErrLocked is returned when another process holds the store open.
var ErrLocked = errors.New("local store is in use by another avash")

// Badger is the on-disk DB. Every call runs in its own transaction.
type Badger struct {
	db *badger.DB
}

// NewBadger opens the store in dir, creating it if needed.
func NewBadger(dir string) (*Badger, error) {
	// Badger logs to stderr, which would land in the middle of the prompt.
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	switch {
	case err == nil:
		return &Badger{db: db}, nil
	case dirLocked(err):
		return nil, fmt.Errorf("%s: %w", dir, ErrLocked)
	default:
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
}

// dirLocked matches badger's flock failure, which has no sentinel.
func dirLocked(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

func (b *Badger) view(op string, fn func(*badger.Txn) error) error {
	if err := b.db.View(fn); err != nil {
		return fmt.Errorf("badger %s: %w", op, err)
	}
	return nil
}

func (b *Badger) update(op string, fn func(*badger.Txn) error) error {
	if err := b.db.Update(fn); err != nil {
		return fmt.Errorf("badger %s: %w", op, err)
	}
	return nil
}

func (b *Badger) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.view("get", func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *Badger) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *Badger) Put(key, value []byte) error {
	return b.update("put", func(txn *badger.Txn) error { return txn.Set(key, value) })
}

func (b *Badger) Delete(key []byte) error {
	return b.update("delete", func(txn *badger.Txn) error { return txn.Delete(key) })
}

// ForEach walks keys under prefix in order. Keys and values are copied out
// of the transaction before fn sees them.
func (b *Badger) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return b.view("scan", func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 16, Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Badger) Close() error {
	return b.db.Close()
}
