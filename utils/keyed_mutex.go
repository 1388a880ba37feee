package utils

import "sync"

// KeyedMutex serializes work per key. The coaching endpoints lock on the
// user id so a second request cannot slip past the monthly budget check
// while the first is mid-flight.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex returns an empty KeyedMutex ready for use.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint]*entry)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *KeyedMutex) Lock(key uint) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. Entries with no waiters are dropped so
// the map does not grow with the user table.
func (k *KeyedMutex) Unlock(key uint) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
