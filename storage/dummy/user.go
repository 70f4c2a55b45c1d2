package dummydb

import (
	"context"

	"github.com/edulink/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateProfile(ctx context.Context, usr user.User) error {
	repo.db.mu.Lock()
	repo.db.users[usr.UID] = usr
	repo.db.mu.Unlock()

	repo.db.notifyUsers()
	return nil
}

func (repo *userRepository) GetProfile(ctx context.Context, uid string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[uid]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryAllProfiles(ctx context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryUsers(), nil
}

func (repo *userRepository) WatchProfiles(ctx context.Context) (*user.Feed, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ch := make(chan []user.User, 16)
	repo.db.userSubs[ch] = struct{}{}
	ch <- repo.db.queryUsers() // initial snapshot

	return user.NewFeed(ch, func() {
		repo.db.mu.Lock()
		defer repo.db.mu.Unlock()
		if _, ok := repo.db.userSubs[ch]; ok {
			delete(repo.db.userSubs, ch)
			close(ch)
		}
	}), nil
}

func (repo *userRepository) DeleteProfile(ctx context.Context, uid string) error {
	repo.db.mu.Lock()
	delete(repo.db.users, uid)
	repo.db.mu.Unlock()

	repo.db.notifyUsers()
	return nil
}
