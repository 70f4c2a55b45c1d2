package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/edulink/backend/core/student"
)

// studentDoc is the stored shape of a student record; the document ID is the
// record ID. Pointer fields are absent when the value is unknown/unset.
type studentDoc struct {
	Name       string     `firestore:"name"`
	Attendance *float64   `firestore:"attendance"`
	Grade      *float64   `firestore:"grade"`
	SignedBy   *string    `firestore:"signedBy"`
	SignedAt   *time.Time `firestore:"signedAt"`
}

type studentRepository struct {
	client *firestore.Client
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(client *firestore.Client) student.Repository {
	return &studentRepository{client: client}
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var students []student.Student

	docs := repo.client.Collection(studentsCollection).Documents(ctx)
	defer docs.Stop()
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "iterating student records")
		}
		s, err := snapToStudent(snap)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	snap, err := repo.client.Collection(studentsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "reading student record")
	}
	return snapToStudent(snap)
}

func (repo *studentRepository) SignStudentReport(ctx context.Context, id, signedBy string, signedAt time.Time) error {
	// single-record partial update; no conflict detection, last write wins
	_, err := repo.client.Collection(studentsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "signedBy", Value: signedBy},
		{Path: "signedAt", Value: signedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return student.ErrNotFound
		}
		return errors.Wrap(err, "updating student record")
	}
	return nil
}

func (repo *studentRepository) WatchStudents(ctx context.Context) (*student.Feed, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := repo.client.Collection(studentsCollection).Snapshots(ctx)

	ch := make(chan []student.Student, 16)
	go func() {
		defer close(ch)
		for {
			qsnap, err := iter.Next()
			if err != nil {
				return // canceled or stream error; owner re-subscribes
			}
			students := make([]student.Student, 0, qsnap.Size)
			for {
				snap, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return
				}
				s, err := snapToStudent(snap)
				if err != nil {
					continue // skip malformed records
				}
				students = append(students, s)
			}
			select {
			case ch <- students:
			default:
				// slow consumer: evict the oldest snapshot, keep the latest
				select {
				case <-ch:
				default:
				}
				ch <- students
			}
		}
	}()

	return student.NewFeed(ch, func() {
		cancel()
		iter.Stop()
	}), nil
}

func snapToStudent(snap *firestore.DocumentSnapshot) (student.Student, error) {
	var doc studentDoc
	if err := snap.DataTo(&doc); err != nil {
		return student.Student{}, errors.Wrap(err, "decoding student record")
	}
	return student.Student{
		ID:         snap.Ref.ID,
		Name:       doc.Name,
		Attendance: null.Float64FromPtr(doc.Attendance),
		Grade:      null.Float64FromPtr(doc.Grade),
		SignedBy:   null.StringFromPtr(doc.SignedBy),
		SignedAt:   null.TimeFromPtr(doc.SignedAt),
	}, nil
}
