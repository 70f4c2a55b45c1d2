package core

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAuthenticationFailed covers both wrong-password and no-such-account;
	// callers must not be able to tell them apart.
	ErrAuthenticationFailed = errors.New("failed to sign in; check your credentials")
	ErrIdentityExists       = errors.New("an account with this email already exists")
	ErrIdentityNotFound     = errors.New("no account with this email exists")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// Identity is the opaque handle returned by the hosted identity service.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// AuthState is a single authentication-state change event.
// Identity is nil when unauthenticated.
type AuthState struct {
	Identity *Identity
}

// IdentityService is the hosted login-credential service. Profile data lives
// in the record store, not here.
type IdentityService interface {
	// CreateIdentity registers a new identity with the given credential.
	// It performs no sign-in and must not emit auth-state events, so
	// provisioning never disturbs the acting user's session.
	CreateIdentity(ctx context.Context, email, password string) (Identity, error)
	// Authenticate verifies an email/credential pair and returns the identity
	// along with a bearer token for subsequent requests.
	Authenticate(ctx context.Context, email, password string) (Identity, string, error)
	VerifyToken(ctx context.Context, token string) (Identity, error)
	// GetIdentityByEmail resolves an identity directly, whether or not a
	// profile record exists for it.
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
	UpdatePassword(ctx context.Context, uid, password string) error
	SignOut(ctx context.Context, uid string) error
	// AuthStateChanges subscribes to authentication-state events. The current
	// state is delivered immediately; the subscription must be Stop'ed by its owner.
	AuthStateChanges() *AuthSubscription
}

// AuthSubscription delivers auth-state events on C until Stop is called.
type AuthSubscription struct {
	C    <-chan AuthState
	stop func()
	once sync.Once
}

func NewAuthSubscription(c <-chan AuthState, stop func()) *AuthSubscription {
	return &AuthSubscription{C: c, stop: stop}
}

// Stop detaches from the event source. It is safe to call more than once;
// no events are delivered after it returns.
func (s *AuthSubscription) Stop() {
	s.once.Do(s.stop)
}

// AuthStateHub broadcasts auth-state events to subscribers. Identity service
// implementations embed it; state changes are process-local (the hosted
// service has no server-side session stream).
type AuthStateHub struct {
	mu      sync.Mutex
	subs    map[chan AuthState]struct{}
	current AuthState
}

func NewAuthStateHub() *AuthStateHub {
	return &AuthStateHub{subs: make(map[chan AuthState]struct{})}
}

// Broadcast records st as the current state and fans it out. A slow
// subscriber misses intermediate states rather than block the caller, but
// never the latest one: on a full buffer the oldest event is evicted.
func (h *AuthStateHub) Broadcast(st AuthState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = st
	for ch := range h.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

// Subscribe registers a new subscriber; the current state is delivered immediately.
func (h *AuthStateHub) Subscribe() *AuthSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan AuthState, 16)
	h.subs[ch] = struct{}{}
	ch <- h.current

	return NewAuthSubscription(ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	})
}
