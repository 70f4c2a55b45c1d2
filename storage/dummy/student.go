package dummydb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edulink/backend/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryStudents(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) SignStudentReport(ctx context.Context, id, signedBy string, signedAt time.Time) error {
	repo.db.mu.Lock()
	s, ok := repo.db.students[id]
	if !ok {
		repo.db.mu.Unlock()
		return student.ErrNotFound
	}
	// partial update; any previous signature is overwritten
	s.SignedBy = null.StringFrom(signedBy)
	s.SignedAt = null.TimeFrom(signedAt)
	repo.db.students[id] = s
	repo.db.mu.Unlock()

	repo.db.notifyStudents()
	return nil
}

func (repo *studentRepository) WatchStudents(ctx context.Context) (*student.Feed, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ch := make(chan []student.Student, 16)
	repo.db.studentSubs[ch] = struct{}{}
	ch <- repo.db.queryStudents() // initial snapshot

	return student.NewFeed(ch, func() {
		repo.db.mu.Lock()
		defer repo.db.mu.Unlock()
		if _, ok := repo.db.studentSubs[ch]; ok {
			delete(repo.db.studentSubs, ch)
			close(ch)
		}
	}), nil
}
