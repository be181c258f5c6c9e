package tx

import (
	"context"
	"sync"
)

var _ Transactor = (*Memory)(nil)

type journalKey struct{}

type journal struct {
	mu       sync.Mutex
	undo     []func()
	commits  []func()
	releases []func()
	held     map[string]struct{}
}

// Memory coordinates the in-memory adapters. Adapters keep their rows in a
// Table, or record undo steps with OnRollback, and take row-style locks with
// Hold. All of it is scoped to the outermost WithinTx call.
type Memory struct{}

// NewMemory returns a Transactor for the in-memory adapters.
func NewMemory() *Memory {
	return &Memory{}
}

// WithinTx runs fn with a journal attached to ctx. Undo steps replay in reverse
// order when fn fails or panics. Table writes are published when fn succeeds.
// Held locks are released last.
func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}
	j := &journal{held: map[string]struct{}{}}
	defer j.release()
	defer func() {
		if r := recover(); r != nil {
			j.rollback()
			panic(r)
		}
	}()
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	j.commit()
	return nil
}

// InTx reports whether ctx belongs to a memory unit of work.
func InTx(ctx context.Context) bool {
	return journalFrom(ctx) != nil
}

// OnRollback registers undo to run if the surrounding unit of work fails.
// Outside a unit of work it does nothing.
func OnRollback(ctx context.Context, undo func()) {
	j := journalFrom(ctx)
	if j == nil || undo == nil {
		return
	}
	j.mu.Lock()
	j.undo = append(j.undo, undo)
	j.mu.Unlock()
}

// Hold acquires l under key for the remainder of the unit of work. Holding the
// same key twice is a no-op. It returns false, without locking, when ctx is not
// inside a unit of work.
func Hold(ctx context.Context, key string, l sync.Locker) bool {
	j := journalFrom(ctx)
	if j == nil {
		return false
	}
	j.mu.Lock()
	_, held := j.held[key]
	j.mu.Unlock()
	if held {
		return true
	}
	l.Lock()
	j.mu.Lock()
	j.held[key] = struct{}{}
	j.releases = append(j.releases, l.Unlock)
	j.mu.Unlock()
	return true
}

func journalFrom(ctx context.Context) *journal {
	if ctx == nil {
		return nil
	}
	j, _ := ctx.Value(journalKey{}).(*journal)
	return j
}

// track registers the publish and discard steps of one staged write.
func (j *journal) track(commit, undo func()) {
	j.mu.Lock()
	j.commits = append(j.commits, commit)
	j.undo = append(j.undo, undo)
	j.mu.Unlock()
}

func (j *journal) commit() {
	j.mu.Lock()
	steps := j.commits
	j.commits, j.undo = nil, nil
	j.mu.Unlock()
	for _, step := range steps {
		step()
	}
}

func (j *journal) rollback() {
	j.mu.Lock()
	steps := j.undo
	j.undo, j.commits = nil, nil
	j.mu.Unlock()
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

func (j *journal) release() {
	j.mu.Lock()
	releases := j.releases
	j.releases = nil
	j.held = map[string]struct{}{}
	j.mu.Unlock()
	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// KeyedLocks hands out one mutex per key, created on first use.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// For returns the mutex guarding key.
func (k *KeyedLocks) For(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = map[string]*sync.Mutex{}
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}
