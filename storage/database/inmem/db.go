// Package inmemdb implements the domain repositories on plain maps, for
// development and tests. A single lock covers all tables so that the
// referential checks see a consistent view.
package inmemdb

import (
	"sync"
	"time"

	"github.com/mtembezi/maktaba/core/department"
	"github.com/mtembezi/maktaba/core/note"
	"github.com/mtembezi/maktaba/core/user"
)

type DB struct {
	mutex sync.RWMutex
	users map[string]*user.User
	depts map[string]*department.Department
	notes map[string]*note.Note
}

func Open() (*DB, error) {
	db := &DB{
		users: make(map[string]*user.User),
		depts: make(map[string]*department.Department),
		notes: make(map[string]*note.Note),
	}
	return db, nil
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.depts = make(map[string]*department.Department)
	db.notes = make(map[string]*note.Note)
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// matchesRange reports whether t falls in the inclusive [from, to] range;
// zero bounds are open.
func matchesRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
