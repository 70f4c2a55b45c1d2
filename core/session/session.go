package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/user"
)

// Session tracks the currently authenticated user. It is an explicitly
// constructed object with a subscribe/unsubscribe lifecycle; nothing here is
// global. Dependents must not serve protected content until Ready.
type Session struct {
	idSvc  core.IdentityService
	usrSvc user.Service
	logger core.Logger

	mu      sync.RWMutex
	current *user.User
	loading bool
	stopped bool

	sub       *core.AuthSubscription
	ready     chan struct{}
	readyOnce sync.Once
	startOnce sync.Once
	stopOnce  sync.Once
}

func New(idSvc core.IdentityService, usrSvc user.Service, logger core.Logger) *Session {
	return &Session{
		idSvc:   idSvc,
		usrSvc:  usrSvc,
		logger:  logger,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Start subscribes to authentication-state changes and resolves each event
// into the current user. Safe to call once per Session.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.sub = s.idSvc.AuthStateChanges()
		go func() {
			for st := range s.sub.C {
				s.resolve(ctx, st)
			}
		}()
	})
}

// Stop detaches from the auth-state source exactly once; no state updates
// happen after it returns. An event being resolved when Stop is called is
// discarded, not applied.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.sub != nil {
			s.sub.Stop()
		}
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
	})
}

// Current returns the signed-in user, if any.
func (s *Session) Current() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return user.User{}, false
	}
	return *s.current, true
}

// Loading is true until the first auth-state resolution; it transitions to
// false exactly once per Session.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed once the first auth-state resolution completes.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) resolve(ctx context.Context, st core.AuthState) {
	if st.Identity == nil {
		s.set(nil)
	} else {
		usr, err := s.usrSvc.GetByID(ctx, st.Identity.UID)
		if err != nil {
			// identity without a profile record is a degraded session,
			// not a failure
			if errors.Cause(err) == user.ErrNotFound {
				s.logger.Warn(fmt.Sprintf("no profile record for authenticated identity %s", st.Identity.UID))
			} else {
				s.logger.Error("fetching profile at session start", err)
			}
			usr = user.User{UID: st.Identity.UID, Email: st.Identity.Email}
		}
		s.set(&usr)
	}

	s.readyOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stopped {
			return
		}
		s.loading = false
		close(s.ready)
	})
}

func (s *Session) set(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.current = u
}
