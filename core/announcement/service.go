package announcement

import "context"

type (
	Service interface {
		QueryAll(ctx context.Context) ([]Announcement, error)
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

func (svc *service) QueryAll(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAllAnnouncements(ctx)
}

func (svc *service) Watch(ctx context.Context) (*Feed, error) {
	return svc.repo.WatchAnnouncements(ctx)
}
