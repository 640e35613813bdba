package usecase

import "sync"

// deviceLocks serializes read-modify-write updates of one device's keys.
// Entries are dropped once no caller holds or waits on them.
type deviceLocks struct {
	mu    sync.Mutex
	locks map[string]*deviceLock
}

type deviceLock struct {
	sync.Mutex
	refs int
}

// lock blocks until deviceID is free and returns its unlock function.
func (l *deviceLocks) lock(deviceID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*deviceLock)
	}
	dl, ok := l.locks[deviceID]
	if !ok {
		dl = &deviceLock{}
		l.locks[deviceID] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.Lock()
	return func() {
		dl.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, deviceID)
		}
		l.mu.Unlock()
	}
}
