package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/edulink/backend/core"
)

// Roles
const (
	RoleParent  = "parent"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var (
	AllRoles = []string{RoleParent, RoleTeacher, RoleStudent, RoleAdmin}

	// SelfRegisterRoles are the roles open to self-registration;
	// admin accounts are provisioned by an admin only.
	SelfRegisterRoles = []string{RoleParent, RoleTeacher, RoleStudent}

	// errors
	ErrNotFound = errors.New("user profile not found")
)

// User is an identity+profile pair. Role is empty on degraded sessions where
// the identity authenticated but no profile record exists.
type User struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsParent() bool  { return u.Role == RoleParent }

// IsDegraded reports whether the profile record was missing at session start.
func (u *User) IsDegraded() bool { return u.Role == "" }

// NewUser contains information needed to provision a new account;
// the credential is generated, not supplied.
type NewUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// RegisterUser contains information needed for self-registration with a
// caller-chosen password.
type RegisterUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,selfrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ru *RegisterUser) Validate(validate *validator.Validate) error {
	ru.Name = core.CleanString(ru.Name)
	ru.Email = core.CleanString(ru.Email, true /* lower */)
	return validate.Struct(ru)
}

type (
	// Repository is the record-store view of user profiles, rooted at users/{uid}.
	Repository interface {
		CreateProfile(ctx context.Context, usr User) error
		GetProfile(ctx context.Context, uid string) (User, error)
		QueryAllProfiles(ctx context.Context) ([]User, error)
		// WatchProfiles subscribes to the live user directory; the returned
		// feed must be Stop'ed by its owner.
		WatchProfiles(ctx context.Context) (*Feed, error)
		// DeleteProfile removes the profile record only; the underlying
		// identity credential is untouched.
		DeleteProfile(ctx context.Context, uid string) error
	}

	// Feed is a cancellable live subscription to the user directory.
	Feed struct {
		C    <-chan []User
		stop func()
		once sync.Once
	}
)

func NewFeed(c <-chan []User, stop func()) *Feed {
	return &Feed{C: c, stop: stop}
}

// Stop releases the subscription; safe to call more than once.
func (f *Feed) Stop() {
	f.once.Do(f.stop)
}
