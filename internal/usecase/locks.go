package usecase

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks - one mutex per session id, dropped once nobody waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*lockEntry)}
}

func (that *sessionLocks) lock(id string) (unlock func()) {
	that.mu.Lock()
	entry, ok := that.locks[id]
	if !ok {
		entry = &lockEntry{}
		that.locks[id] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}

func (that *sessionLocks) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
