// Package xlock serializes work per aggregate key inside one process.
package xlock

import (
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync"
)

type Locker struct {
	mutexes *xsync.MapOf[string, *sync.Mutex]
}

func New() *Locker {
	return &Locker{mutexes: xsync.NewMapOf[*sync.Mutex]()}
}

// Lock acquires the mutex of every key in sorted order and returns a function
// releasing all of them. Duplicate keys are locked once.
func (l *Locker) Lock(keys ...string) func() {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	locked := make([]*sync.Mutex, 0, len(sorted))
	for _, k := range sorted {
		m, _ := l.mutexes.LoadOrStore(k, &sync.Mutex{})
		m.Lock()
		locked = append(locked, m)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
