// Package history keeps REPL input lines across sessions.
package history

import (
	"encoding/binary"
	"fmt"
	"sync"

	klog "github.com/Klingon-tech/avash/internal/log"
	"github.com/Klingon-tech/avash/internal/storage"
)

// DefaultLimit is the number of lines kept when no limit is configured.
const DefaultLimit = 500

// History is a bounded, persisted list of input lines. It satisfies the
// line editor's history interface: At(0) is the most recent entry.
type History struct {
	db    storage.DB
	limit int

	mu       sync.Mutex
	lines    []string // oldest first
	firstSeq uint64
}

func seqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, seq)
}

// Open loads the lines stored in db.
func Open(db storage.DB, limit int) (*History, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	h := &History{db: db, limit: limit}

	first := true
	err := db.ForEach(nil, func(key, value []byte) error {
		if len(key) != 8 {
			return nil
		}
		if first {
			h.firstSeq = binary.BigEndian.Uint64(key)
			first = false
		}
		h.lines = append(h.lines, string(value))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	if err := h.trim(); err != nil {
		return nil, err
	}
	return h, nil
}

// Append stores entry. Blank lines and repeats of the last line are skipped.
func (h *History) Append(entry string) error {
	if entry == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.lines); n > 0 && h.lines[n-1] == entry {
		return nil
	}
	seq := h.firstSeq + uint64(len(h.lines))
	if err := h.db.Put(seqKey(seq), []byte(entry)); err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	h.lines = append(h.lines, entry)
	return h.trim()
}

// trim drops the oldest lines over the limit. Caller holds mu or owns h.
func (h *History) trim() error {
	for len(h.lines) > h.limit {
		if err := h.db.Delete(seqKey(h.firstSeq)); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		h.lines = h.lines[1:]
		h.firstSeq++
	}
	return nil
}

// Add records entry, logging storage failures.
func (h *History) Add(entry string) {
	if err := h.Append(entry); err != nil {
		klog.Shell.Warn().Err(err).Msg("History not saved")
	}
}

// Len returns the number of lines.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lines)
}

// At returns the idx-th most recent line. It panics if idx is out of range.
func (h *History) At(idx int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lines[len(h.lines)-1-idx]
}

// Recent returns up to n of the latest lines, oldest first.
func (h *History) Recent(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > len(h.lines) {
		n = len(h.lines)
	}
	return append([]string(nil), h.lines[len(h.lines)-n:]...)
}
