package service

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userLocks hands out one mutex per user, dropped once nobody holds or waits for it.
type userLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[primitive.ObjectID]*userLock)}
}

// Lock blocks until the user's lock is held and returns the release func.
func (l *userLocks) Lock(userID primitive.ObjectID) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
