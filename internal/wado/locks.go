package wado

import "sync"

// studyLocks hands out one mutex per study so index read-modify-write
// cycles serialize within a study while distinct studies proceed in
// parallel. Locks are never released from the map; the study population of
// one process lifetime is small.
type studyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newStudyLocks() *studyLocks {
	return &studyLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *studyLocks) get(study string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[study]
	if !ok {
		m = &sync.Mutex{}
		l.locks[study] = m
	}
	return m
}
