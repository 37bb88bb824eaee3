package service

import "sync"

// GameLocks hands out one mutex per game so admission checks and the
// mutations that follow them run as a unit: two move (or start) requests
// for the same game cannot interleave between the read and the write.
type GameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGameLocks creates an empty lock registry
func NewGameLocks() *GameLocks {
	return &GameLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a game and returns its unlock function
func (l *GameLocks) Lock(gameID string) func() {
	l.mu.Lock()
	m, ok := l.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[gameID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops a game's mutex once the game reaches a terminal state
func (l *GameLocks) Forget(gameID string) {
	l.mu.Lock()
	delete(l.locks, gameID)
	l.mu.Unlock()
}
