package grades

import (
	"fmt"
	"sync"
)

// keyedMutex serializes work per (student, difficulty) pair. A single global
// lock would couple unrelated students; independent pairs must not contend.
// Entries are never evicted, which is acceptable at the scale of one
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
