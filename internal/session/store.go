// Package session keeps wizard state between HTTP requests.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// ErrNotFound is returned when a session is missing or expired.
var ErrNotFound = errors.New("session: not found")

// Store persists controller snapshots by session ID.
type Store interface {
	Load(ctx context.Context, id string) (wizard.State, error)
	Save(ctx context.Context, id string, state wizard.State) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// Locker serializes work per session ID. Locks for distinct IDs never
// contend.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker returns an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyLock)}
}

// Lock blocks until id is free and returns the matching unlock func.
func (l *Locker) Lock(id string) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &keyLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// Len reports how many IDs are currently locked or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
