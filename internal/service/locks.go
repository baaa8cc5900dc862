package service

import "sync"

// ApplicationLocks serializes mutating operations per application. Two
// concurrent requests against the same application must not interleave;
// requests against different applications never contend.
type ApplicationLocks struct {
	mu sync.Map // applicationID -> *sync.Mutex
}

// NewApplicationLocks creates an empty lock registry.
func NewApplicationLocks() *ApplicationLocks {
	return &ApplicationLocks{}
}

// Lock acquires the mutex for an application and returns the release func.
func (l *ApplicationLocks) Lock(applicationID string) func() {
	v, _ := l.mu.LoadOrStore(applicationID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
