package dummydb

import (
	"context"

	"github.com/edulink/backend/core/announcement"
)

type announcementRepository struct {
	db *DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) QueryAllAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryAnnouncements(), nil
}

func (repo *announcementRepository) WatchAnnouncements(ctx context.Context) (*announcement.Feed, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ch := make(chan []announcement.Announcement, 16)
	repo.db.annSubs[ch] = struct{}{}
	ch <- repo.db.queryAnnouncements() // initial snapshot

	return announcement.NewFeed(ch, func() {
		repo.db.mu.Lock()
		defer repo.db.mu.Unlock()
		if _, ok := repo.db.annSubs[ch]; ok {
			delete(repo.db.annSubs, ch)
			close(ch)
		}
	}), nil
}
