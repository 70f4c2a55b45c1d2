// Package dummydb is an in-memory record store used in DEV/TEST environments.
// It implements the same repository contracts as the Firestore store,
// including live feeds.
package dummydb

import (
	"sync"

	"github.com/edulink/backend/core/announcement"
	"github.com/edulink/backend/core/student"
	"github.com/edulink/backend/core/user"
)

type DB struct {
	mu sync.RWMutex

	users         map[string]user.User
	students      map[string]student.Student
	announcements map[string]announcement.Announcement

	userSubs    map[chan []user.User]struct{}
	studentSubs map[chan []student.Student]struct{}
	annSubs     map[chan []announcement.Announcement]struct{}
}

func Open() (*DB, error) {
	return &DB{
		users:         make(map[string]user.User),
		students:      make(map[string]student.Student),
		announcements: make(map[string]announcement.Announcement),
		userSubs:      make(map[chan []user.User]struct{}),
		studentSubs:   make(map[chan []student.Student]struct{}),
		annSubs:       make(map[chan []announcement.Announcement]struct{}),
	}, nil
}

// PutStudent inserts or replaces a student record, standing in for the
// external system that owns the roster lifecycle.
func (db *DB) PutStudent(s student.Student) {
	db.mu.Lock()
	db.students[s.ID] = s
	db.mu.Unlock()
	db.notifyStudents()
}

// PutAnnouncement inserts or replaces an announcement record.
func (db *DB) PutAnnouncement(a announcement.Announcement) {
	db.mu.Lock()
	db.announcements[a.ID] = a
	db.mu.Unlock()
	db.notifyAnnouncements()
}

func (db *DB) queryUsers() []user.User {
	users := make([]user.User, 0, len(db.users))
	for _, u := range db.users {
		users = append(users, u)
	}
	return users
}

func (db *DB) queryStudents() []student.Student {
	students := make([]student.Student, 0, len(db.students))
	for _, s := range db.students {
		students = append(students, s)
	}
	return students
}

func (db *DB) queryAnnouncements() []announcement.Announcement {
	anns := make([]announcement.Announcement, 0, len(db.announcements))
	for _, a := range db.announcements {
		anns = append(anns, a)
	}
	return anns
}

// The notify helpers hold the write lock so only one send per channel is in
// flight at a time; a slow subscriber loses the oldest snapshot in its
// buffer, never the latest one.

func (db *DB) notifyUsers() {
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := db.queryUsers()
	for ch := range db.userSubs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (db *DB) notifyStudents() {
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := db.queryStudents()
	for ch := range db.studentSubs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (db *DB) notifyAnnouncements() {
	db.mu.Lock()
	defer db.mu.Unlock()
	snapshot := db.queryAnnouncements()
	for ch := range db.annSubs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
