package student

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("student not found")

// Student is a single student record. Attendance and Grade are percentages
// (0-100); a missing value means unknown, not zero. SignedBy and SignedAt are
// either both set or both absent. Records are created and updated externally;
// this application only ever sets the signing fields.
type Student struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Attendance null.Float64 `json:"attendance"`
	Grade      null.Float64 `json:"grade"`
	SignedBy   null.String  `json:"signed_by,omitempty"`
	SignedAt   null.Time    `json:"signed_at,omitempty"`
}

// IsSigned reports whether the report has been reviewed.
func (s *Student) IsSigned() bool { return s.SignedBy.Valid }

type (
	// Repository is the record-store view of the roster, rooted at students
	// and students/{id}.
	Repository interface {
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// SignStudentReport partially updates the record at students/{id},
		// setting only signedBy and signedAt. There is no read-modify-write
		// conflict detection; concurrent signers race and the last write wins.
		SignStudentReport(ctx context.Context, id, signedBy string, signedAt time.Time) error
		// WatchStudents subscribes to the live roster; the returned feed must
		// be Stop'ed by its owner.
		WatchStudents(ctx context.Context) (*Feed, error)
	}

	// Feed is a cancellable live subscription to the roster.
	Feed struct {
		C    <-chan []Student
		stop func()
		once sync.Once
	}
)

func NewFeed(c <-chan []Student, stop func()) *Feed {
	return &Feed{C: c, stop: stop}
}

// Stop releases the subscription; safe to call more than once.
func (f *Feed) Stop() {
	f.once.Do(f.stop)
}
