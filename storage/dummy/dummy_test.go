package dummydb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/edulink/backend/core/student"
	"github.com/edulink/backend/core/user"
)

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return db
}

func recvStudents(t *testing.T, feed *student.Feed) []student.Student {
	t.Helper()
	select {
	case students, ok := <-feed.C:
		if !ok {
			t.Fatal("feed closed unexpectedly")
		}
		return students
	case <-time.After(time.Second):
		t.Fatal("no feed event")
	}
	return nil
}

func Test_studentRepository_SignStudentReport(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewStudentRepository(db)

	db.PutStudent(student.Student{ID: "a", Name: "Ann", Attendance: null.Float64From(70)})

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.SignStudentReport(ctx, "a", "u1", t1); err != nil {
		t.Fatalf("SignStudentReport() failed: %v", err)
	}

	s, err := repo.GetStudentByID(ctx, "a")
	if err != nil {
		t.Fatalf("GetStudentByID() failed: %v", err)
	}
	if s.SignedBy.String != "u1" || !s.SignedAt.Time.Equal(t1) {
		t.Errorf("signature = %v/%v, want u1/%v", s.SignedBy, s.SignedAt, t1)
	}
	// other fields untouched
	if s.Attendance.Float64 != 70 {
		t.Errorf("Attendance = %v, want 70", s.Attendance)
	}

	// last write wins
	t2 := t1.Add(time.Hour)
	if err := repo.SignStudentReport(ctx, "a", "u2", t2); err != nil {
		t.Fatalf("SignStudentReport() failed: %v", err)
	}
	s, _ = repo.GetStudentByID(ctx, "a")
	if s.SignedBy.String != "u2" || !s.SignedAt.Time.Equal(t2) {
		t.Errorf("signature = %v/%v, want u2/%v", s.SignedBy, s.SignedAt, t2)
	}

	if err := repo.SignStudentReport(ctx, "nope", "u1", t1); err != student.ErrNotFound {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func Test_studentRepository_WatchStudents(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewStudentRepository(db)

	db.PutStudent(student.Student{ID: "a", Name: "Ann"})

	feed, err := repo.WatchStudents(ctx)
	if err != nil {
		t.Fatalf("WatchStudents() failed: %v", err)
	}

	// initial snapshot arrives without any write
	if got := recvStudents(t, feed); len(got) != 1 {
		t.Fatalf("initial snapshot has %d students, want 1", len(got))
	}

	// writes re-emit the whole roster
	db.PutStudent(student.Student{ID: "b", Name: "Bo"})
	if got := recvStudents(t, feed); len(got) != 2 {
		t.Fatalf("snapshot has %d students, want 2", len(got))
	}

	// Stop is idempotent and final
	feed.Stop()
	feed.Stop()
	db.PutStudent(student.Student{ID: "c", Name: "Cy"})
	select {
	case _, ok := <-feed.C:
		if ok {
			t.Fatal("event delivered after Stop")
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("feed channel not closed after Stop")
	}
}

func Test_studentRepository_WatchStudents_floodedFeedStillSeesLatestRoster(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewStudentRepository(db)

	feed, err := repo.WatchStudents(ctx)
	if err != nil {
		t.Fatalf("WatchStudents() failed: %v", err)
	}
	defer feed.Stop()

	// overflow the feed buffer without draining it
	for i := 0; i < 40; i++ {
		db.PutStudent(student.Student{ID: fmt.Sprintf("s%d", i)})
	}

	var last []student.Student
	for drained := false; !drained; {
		select {
		case snapshot := <-feed.C:
			last = snapshot
		default:
			drained = true
		}
	}
	if len(last) != 40 {
		t.Errorf("last delivered snapshot has %d students, want 40", len(last))
	}
}

func Test_userRepository_DeleteProfile(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := NewUserRepository(db)

	usr := user.User{UID: "u1", Name: "Awe", Email: "awe@test.cd", Role: user.RoleParent}
	if err := repo.CreateProfile(ctx, usr); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	if err := repo.DeleteProfile(ctx, "u1"); err != nil {
		t.Fatalf("DeleteProfile() failed: %v", err)
	}
	if _, err := repo.GetProfile(ctx, "u1"); err != user.ErrNotFound {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	// deleting an already-missing record is not an error
	if err := repo.DeleteProfile(ctx, "u1"); err != nil {
		t.Errorf("DeleteProfile() on missing record failed: %v", err)
	}
}
