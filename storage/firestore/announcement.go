package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/edulink/backend/core/announcement"
)

type announcementDoc struct {
	Title string `firestore:"title"`
	Body  string `firestore:"body"`
	Date  string `firestore:"date"`
}

type announcementRepository struct {
	client *firestore.Client
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(client *firestore.Client) announcement.Repository {
	return &announcementRepository{client: client}
}

func (repo *announcementRepository) QueryAllAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	var anns []announcement.Announcement

	docs := repo.client.Collection(announcementsCollection).Documents(ctx)
	defer docs.Stop()
	for {
		snap, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "iterating announcement records")
		}
		anns = append(anns, snapToAnnouncement(snap))
	}
	return anns, nil
}

func (repo *announcementRepository) WatchAnnouncements(ctx context.Context) (*announcement.Feed, error) {
	ctx, cancel := context.WithCancel(ctx)
	iter := repo.client.Collection(announcementsCollection).Snapshots(ctx)

	ch := make(chan []announcement.Announcement, 16)
	go func() {
		defer close(ch)
		for {
			qsnap, err := iter.Next()
			if err != nil {
				return // canceled or stream error; owner re-subscribes
			}
			anns := make([]announcement.Announcement, 0, qsnap.Size)
			for {
				snap, err := qsnap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return
				}
				anns = append(anns, snapToAnnouncement(snap))
			}
			select {
			case ch <- anns:
			default:
				// slow consumer: evict the oldest snapshot, keep the latest
				select {
				case <-ch:
				default:
				}
				ch <- anns
			}
		}
	}()

	return announcement.NewFeed(ch, func() {
		cancel()
		iter.Stop()
	}), nil
}

func snapToAnnouncement(snap *firestore.DocumentSnapshot) announcement.Announcement {
	var doc announcementDoc
	if err := snap.DataTo(&doc); err != nil {
		return announcement.Announcement{ID: snap.Ref.ID}
	}
	return announcement.Announcement{
		ID:    snap.Ref.ID,
		Title: doc.Title,
		Body:  doc.Body,
		Date:  doc.Date,
	}
}
