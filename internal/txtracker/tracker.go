// Package txtracker follows submitted transactions until the node accepts
// them or they expire.
package txtracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	klog "github.com/Klingon-tech/avash/internal/log"
)

// Transaction states reported by the node that the tracker acts on.
// Any other status is terminal.
const (
	Processing = "Processing"
	Accepted   = "Accepted"
)

// Defaults.
const (
	DefaultCapacity = 10
	DefaultExpiry   = 60 * time.Second
)

// StatusSource looks up a transaction's current status.
type StatusSource interface {
	TxStatus(ctx context.Context, txID string) (string, error)
}

// PendingTx is one tracked transaction. State is empty until the first
// successful poll.
type PendingTx struct {
	ID          string
	SubmittedAt time.Time
	ExpireAt    time.Time
	State       string
}

// Expired reports whether now is past the expiry.
func (p PendingTx) Expired(now time.Time) bool {
	return now.After(p.ExpireAt)
}

// Options configures a Tracker. Zero values take the defaults.
type Options struct {
	Capacity int
	Expiry   time.Duration
	// Now overrides the clock.
	Now func() time.Time
}

// Tracker holds a bounded list of pending transactions, oldest first.
type Tracker struct {
	src      StatusSource
	capacity int
	expiry   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	txs      []*PendingTx
	callback func(txID string)
}

// New creates an empty tracker polling src.
func New(src StatusSource, opts Options) *Tracker {
	t := &Tracker{
		src:      src,
		capacity: opts.Capacity,
		expiry:   opts.Expiry,
		now:      opts.Now,
	}
	if t.capacity <= 0 {
		t.capacity = DefaultCapacity
	}
	if t.expiry <= 0 {
		t.expiry = DefaultExpiry
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// SetCallback registers the acceptance callback. A later call replaces an
// earlier one.
func (t *Tracker) SetCallback(fn func(txID string)) {
	t.mu.Lock()
	t.callback = fn
	t.mu.Unlock()
}

// Add starts tracking txID, evicting the oldest entry when full.
func (t *Tracker) Add(txID string) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.txs = append(t.txs, &PendingTx{
		ID:          txID,
		SubmittedAt: now,
		ExpireAt:    now.Add(t.expiry),
	})
	for len(t.txs) > t.capacity {
		klog.Tracker.Debug().Str("tx", t.txs[0].ID).Msg("Evicting oldest pending transaction")
		t.txs[0] = nil
		t.txs = t.txs[1:]
	}

	klog.Tracker.Debug().Str("tx", txID).Int("tracked", len(t.txs)).Msg("Tracking transaction")
}

// List returns copies of all tracked entries, most recent first.
func (t *Tracker) List() []PendingTx {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PendingTx, len(t.txs))
	for i, tx := range t.txs {
		out[len(t.txs)-1-i] = *tx
	}
	return out
}

// Len returns the number of tracked entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.txs)
}

func pollable(tx *PendingTx, now time.Time) bool {
	if tx.Expired(now) {
		return false
	}
	return tx.State == "" || tx.State == Processing
}

// HandleUpdate polls every live entry in insertion order. A failed lookup
// is logged and does not stop the others; the joined errors are returned.
func (t *Tracker) HandleUpdate(ctx context.Context) error {
	now := t.now()

	t.mu.Lock()
	due := make([]*PendingTx, 0, len(t.txs))
	for _, tx := range t.txs {
		if pollable(tx, now) {
			due = append(due, tx)
		}
	}
	t.mu.Unlock()

	var errs []error
	for _, tx := range due {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, err := t.src.TxStatus(ctx, tx.ID)
		if err != nil {
			klog.Tracker.Warn().Err(err).Str("tx", tx.ID).Msg("Status check failed")
			errs = append(errs, fmt.Errorf("tx %s: %w", tx.ID, err))
			continue
		}

		t.mu.Lock()
		prev := tx.State
		tx.State = status
		cb := t.callback
		t.mu.Unlock()

		if status != prev {
			klog.Tracker.Info().Str("tx", tx.ID).Str("state", status).Msg("Transaction state changed")
		}
		if status == Accepted && cb != nil {
			cb(tx.ID)
		}
	}
	return errors.Join(errs...)
}
