package memory

import "sync"

// keyedMutex hands out one mutex per key. Locks are never reclaimed; the
// key space is bounded by live sessions and users.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

func (km *keyedMutex) get(key string) *sync.Mutex {
	km.mu.Lock()
	defer km.mu.Unlock()
	m, ok := km.locks[key]
	if !ok {
		m = &sync.Mutex{}
		km.locks[key] = m
	}
	return m
}
