package sessions

import (
	"fmt"
	"sync"
)

// keyedMutex serializes session creation per (student, difficulty) pair so
// the pending-session check and the insert cannot interleave for the same
// pair. Entries are never evicted, which is acceptable at the scale of one
// institution's student body.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func pairKey(studentID, difficultyID uint) string {
	return fmt.Sprintf("%d:%d", studentID, difficultyID)
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
