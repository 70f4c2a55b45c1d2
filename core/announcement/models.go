package announcement

import (
	"context"
	"sync"
)

// Announcement is read-only from this application's perspective;
// its lifecycle is fully external.
type Announcement struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Date  string `json:"date"`
}

type (
	// Repository is the record-store view of announcements.
	Repository interface {
		QueryAllAnnouncements(ctx context.Context) ([]Announcement, error)
		// WatchAnnouncements subscribes to the live announcement feed; the
		// returned feed must be Stop'ed by its owner.
		WatchAnnouncements(ctx context.Context) (*Feed, error)
	}

	// Feed is a cancellable live subscription to announcements.
	Feed struct {
		C    <-chan []Announcement
		stop func()
		once sync.Once
	}
)

func NewFeed(c <-chan []Announcement, stop func()) *Feed {
	return &Feed{C: c, stop: stop}
}

// Stop releases the subscription; safe to call more than once.
func (f *Feed) Stop() {
	f.once.Do(f.stop)
}
