package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edulink/backend/core/user"
)

var nowFunc = time.Now // mockable

type (
	// Service exposes the roster, the derived classifications and the
	// report-signing workflow.
	Service interface {
		QueryAll(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		// Sign marks the student's report as reviewed by signer. A nil signer
		// makes it a no-op, not an error. Re-signing an already-signed report
		// overwrites both fields; the last write wins.
		Sign(ctx context.Context, id string, signer *user.User) error
		// Summary computes the dashboard counts from the current roster.
		Summary(ctx context.Context) (Summary, error)
		// Alerts returns the students needing well-being attention.
		Alerts(ctx context.Context) ([]Student, error)
		Watch(ctx context.Context) (*Feed, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Sign(ctx context.Context, id string, signer *user.User) error {
	if signer == nil {
		return nil
	}
	if err := svc.repo.SignStudentReport(ctx, id, signer.UID, nowFunc().UTC()); err != nil {
		return errors.Wrap(err, "signing report")
	}
	return nil
}

func (svc *service) Summary(ctx context.Context) (Summary, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying students")
	}
	return Summarize(students), nil
}

func (svc *service) Alerts(ctx context.Context) ([]Student, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return NeedsAttention(students), nil
}

func (svc *service) Watch(ctx context.Context) (*Feed, error) {
	return svc.repo.WatchStudents(ctx)
}
