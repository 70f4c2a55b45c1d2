package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/edulink/backend/core/user"
)

// userDoc is the stored shape of a profile record; the document ID is the UID.
type userDoc struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Role      string    `firestore:"role"`
	CreatedAt time.Time `firestore:"createdAt"`
}

type userRepository struct {
	client *firestore.Client
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(client *firestore.Client) user.Repository {
	return &userRepository{client: client}
}

func (repo *userRepository) CreateProfile(ctx context.Context, usr user.User) error {
	doc := userDoc{
		Name:      usr.Name,
		Email:     usr.Email,
		Role:      usr.Role,
		CreatedAt: usr.CreatedAt,
	}
	if _, err := repo.client.Collection(usersCollection).Doc(usr.UID).Set(ctx, doc); err != nil {
		return errors.Wrap(err, "writing profile record")
	}
	return nil
}

func (repo *userRepository) GetProfile(ctx context.Context, uid string) (user.User, error) {
	snap, err := repo.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "reading profile record")
	}
	return snapToUser(snap)
}

func (repo *userRepository) QueryAllProfiles(ctx context.Context) ([]user.User, error) {
	var users []user.User

	docs := repo.client.Collection(usersCollection).Documents(ctx)
	defer docs.Stop()
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "iterating profile records")
		}
		usr, err := snapToUser(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) WatchProfiles(ctx context.Context) (*user.Feed, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := repo.client.Collection(usersCollection).Snapshots(ctx)

	ch := make(chan []user.User, 16)
	go func() {
		defer close(ch)
		for {
			qsnap, err := iter.Next()
			if err != nil {
				return // canceled or stream error; owner re-subscribes
			}
			users := make([]user.User, 0, qsnap.Size)
			for {
				snap, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return
				}
				usr, err := snapToUser(snap)
				if err != nil {
					continue // skip malformed records
				}
				users = append(users, usr)
			}
			select {
			case ch <- users:
			default:
				// slow consumer: evict the oldest snapshot, keep the latest
				select {
				case <-ch:
				default:
				}
				ch <- users
			}
		}
	}()

	return user.NewFeed(ch, func() {
		cancel()
		iter.Stop()
	}), nil
}

func (repo *userRepository) DeleteProfile(ctx context.Context, uid string) error {
	// profile record only; the identity credential survives
	if _, err := repo.client.Collection(usersCollection).Doc(uid).Delete(ctx); err != nil {
		return errors.Wrap(err, "removing profile record")
	}
	return nil
}

func snapToUser(snap *firestore.DocumentSnapshot) (user.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return user.User{}, errors.Wrap(err, "decoding profile record")
	}
	return user.User{
		UID:       snap.Ref.ID,
		Name:      doc.Name,
		Email:     doc.Email,
		Role:      doc.Role,
		CreatedAt: doc.CreatedAt,
	}, nil
}
