package tx

import (
	"context"
	"errors"
	"sync"
)

// ErrConflict reports a write to a row that another unit of work changed and
// has not committed yet.
var ErrConflict = errors.New("tx: row has uncommitted changes from another unit of work")

// Table is a keyed row store for the in-memory adapters. Rows written inside a
// Memory unit of work are private to it until it commits and are dropped when
// it rolls back, so every other reader only sees committed rows. The zero
// value is ready to use.
type Table[K comparable, V any] struct {
	mu   sync.RWMutex
	rows map[K]*row[V]
}

type row[V any] struct {
	value     V
	committed bool

	// draft is the uncommitted version owned by owner.
	owner   *journal
	draft   V
	deleted bool
}

func (r *row[V]) visible(j *journal) (V, bool) {
	if r.owner != nil && r.owner == j {
		if r.deleted {
			var zero V
			return zero, false
		}
		return r.draft, true
	}
	return r.value, r.committed
}

// Get returns the version of key visible to ctx.
func (t *Table[K, V]) Get(ctx context.Context, key K) (V, bool) {
	j := journalFrom(ctx)
	t.mu.RLock()
	defer t.mu.RUnlock()
	if r, ok := t.rows[key]; ok {
		return r.visible(j)
	}
	var zero V
	return zero, false
}

// Select returns every visible value accepted by match, in no particular
// order. A nil match accepts everything.
func (t *Table[K, V]) Select(ctx context.Context, match func(V) bool) []V {
	j := journalFrom(ctx)
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]V, 0, len(t.rows))
	for _, r := range t.rows {
		if v, ok := r.visible(j); ok && (match == nil || match(v)) {
			out = append(out, v)
		}
	}
	return out
}

// Put stores value under key.
func (t *Table[K, V]) Put(ctx context.Context, key K, value V) error {
	_, err := t.write(ctx, key, value, writeAlways)
	return err
}

// Insert stores value under key unless a version is already visible to ctx.
// It reports whether the value was stored.
func (t *Table[K, V]) Insert(ctx context.Context, key K, value V) (bool, error) {
	existed, err := t.write(ctx, key, value, writeIfAbsent)
	return err == nil && !existed, err
}

// Delete removes key and reports whether it was visible to ctx.
func (t *Table[K, V]) Delete(ctx context.Context, key K) (bool, error) {
	var zero V
	return t.write(ctx, key, zero, writeDelete)
}

type writeMode int

const (
	writeAlways writeMode = iota
	writeIfAbsent
	writeDelete
)

// write applies one change and reports whether key was visible to ctx before it.
func (t *Table[K, V]) write(ctx context.Context, key K, value V, mode writeMode) (bool, error) {
	remove := mode == writeDelete
	j := journalFrom(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rows[key]
	if ok && r.owner != nil && r.owner != j {
		return false, ErrConflict
	}
	existed := false
	if ok {
		_, existed = r.visible(j)
	}
	if (remove && !existed) || (mode == writeIfAbsent && existed) {
		return existed, nil
	}
	if !ok {
		if t.rows == nil {
			t.rows = map[K]*row[V]{}
		}
		r = &row[V]{}
		t.rows[key] = r
	}

	if j == nil {
		if remove {
			delete(t.rows, key)
		} else {
			r.value, r.committed = value, true
		}
		return existed, nil
	}
	if r.owner == nil {
		r.owner = j
		j.track(func() { t.settle(key, r, true) }, func() { t.settle(key, r, false) })
	}
	r.draft, r.deleted = value, remove
	return existed, nil
}

// settle publishes or discards the draft of r.
func (t *Table[K, V]) settle(key K, r *row[V], commit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero V
	if commit {
		if r.deleted {
			r.value, r.committed = zero, false
		} else {
			r.value, r.committed = r.draft, true
		}
	}
	r.owner, r.draft, r.deleted = nil, zero, false
	if !r.committed && t.rows[key] == r {
		delete(t.rows, key)
	}
}
