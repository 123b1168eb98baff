// Package keylock serializes work per key without a global lock.
package keylock

import (
	"slices"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker keeps an entry only while some caller holds or waits on its key.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock acquires the mutex of every key in the given order and returns a function releasing them in reverse.
// Callers must agree on key order to avoid deadlocks. Repeated keys are locked once.
func (l *Locker) Lock(keys ...string) (unlock func()) {
	keys = uniq(keys)

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		l.acquire(key).mu.Lock()
		held = append(held, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, key := range slices.Backward(held) {
				l.release(key)
			}
		})
	}
}

func (l *Locker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.locks[key]
	e.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func uniq(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if !slices.Contains(out, key) {
			out = append(out, key)
		}
	}
	return out
}
