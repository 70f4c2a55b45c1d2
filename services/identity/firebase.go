package identitysvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"

	"github.com/edulink/backend/core"
)

// signInEndpoint is the Identity Toolkit email/password sign-in API; the
// admin SDK deliberately has no password sign-in.
const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type firebaseService struct {
	client     *fbauth.Client
	hub        *core.AuthStateHub
	webAPIKey  string
	httpClient *http.Client
}

var _ core.IdentityService = (*firebaseService)(nil)

// NewFirebaseService wraps Firebase Auth as the hosted identity service.
func NewFirebaseService(ctx context.Context, app *firebase.App, conf *core.Config) (core.IdentityService, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initializing auth client")
	}
	return &firebaseService{
		client:     client,
		hub:        core.NewAuthStateHub(),
		webAPIKey:  conf.Firebase.WebAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// CreateIdentity registers a new identity. Admin creation performs no
// sign-in, so the acting session's auth state is untouched.
func (svc *firebaseService) CreateIdentity(ctx context.Context, email, password string) (core.Identity, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	rec, err := svc.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return core.Identity{}, core.ErrIdentityExists
		}
		return core.Identity{}, errors.Wrap(err, "creating identity")
	}
	return core.Identity{UID: rec.UID, Email: rec.Email}, nil
}

func (svc *firebaseService) Authenticate(ctx context.Context, email, password string) (core.Identity, string, error) {
	reqBody, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "encoding sign-in request")
	}

	url := fmt.Sprintf("%s?key=%s", signInEndpoint, svc.webAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "building sign-in request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return core.Identity{}, "", errors.Wrap(err, "calling identity service")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// wrong-password and no-such-account are indistinguishable on purpose
		return core.Identity{}, "", core.ErrAuthenticationFailed
	}

	var res struct {
		IDToken string `json:"idToken"`
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return core.Identity{}, "", errors.Wrap(err, "decoding sign-in response")
	}

	ident := core.Identity{UID: res.LocalID, Email: res.Email}
	svc.hub.Broadcast(core.AuthState{Identity: &ident})
	return ident, res.IDToken, nil
}

func (svc *firebaseService) VerifyToken(ctx context.Context, token string) (core.Identity, error) {
	tok, err := svc.client.VerifyIDToken(ctx, token)
	if err != nil {
		return core.Identity{}, core.ErrInvalidToken
	}
	email, _ := tok.Claims["email"].(string)
	return core.Identity{UID: tok.UID, Email: email}, nil
}

func (svc *firebaseService) GetIdentityByEmail(ctx context.Context, email string) (core.Identity, error) {
	rec, err := svc.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return core.Identity{}, core.ErrIdentityNotFound
		}
		return core.Identity{}, errors.Wrap(err, "looking up identity")
	}
	return core.Identity{UID: rec.UID, Email: rec.Email}, nil
}

func (svc *firebaseService) UpdatePassword(ctx context.Context, uid, password string) error {
	params := (&fbauth.UserToUpdate{}).Password(password)
	if _, err := svc.client.UpdateUser(ctx, uid, params); err != nil {
		return errors.Wrap(err, "updating credential")
	}
	return nil
}

func (svc *firebaseService) SignOut(ctx context.Context, uid string) error {
	if err := svc.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return errors.Wrap(err, "revoking refresh tokens")
	}
	svc.hub.Broadcast(core.AuthState{})
	return nil
}

func (svc *firebaseService) AuthStateChanges() *core.AuthSubscription {
	return svc.hub.Subscribe()
}
