// Package firestoredb implements the repositories against the hosted Cloud
// Firestore store. Collections map 1:1 onto the persisted-state layout:
// users/{uid}, students/{id}, announcements/{id}.
package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/edulink/backend/core"
)

const (
	usersCollection         = "users"
	studentsCollection      = "students"
	announcementsCollection = "announcements"
)

// NewApp initializes the Firebase app shared by the store and the identity service.
func NewApp(ctx context.Context, conf *core.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if conf.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Firebase.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	return app, nil
}

// Open connects to the hosted Firestore instance.
func Open(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening firestore client")
	}
	return client, nil
}
