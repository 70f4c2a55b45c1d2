package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/edulink/backend/core"
)

type (
	// Service manages account provisioning and the user directory.
	Service interface {
		// Provision creates an identity with a generated credential, then the
		// associated profile record. The credential is returned for one-time
		// display and is neither persisted nor retransmitted.
		Provision(ctx context.Context, nu NewUser) (User, string, error)
		// Register creates an identity+profile pair with a caller-chosen password.
		Register(ctx context.Context, ru RegisterUser) (User, error)
		GetByID(ctx context.Context, uid string) (User, error)
		Query(ctx context.Context) ([]User, error)
		Watch(ctx context.Context) (*Feed, error)
		// Delete removes the profile record only; the identity credential
		// survives (known asymmetric-delete gap).
		Delete(ctx context.Context, uid string) error
	}

	service struct {
		repo    Repository
		idSvc   core.IdentityService
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, idSvc core.IdentityService, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		idSvc:   idSvc,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) Provision(ctx context.Context, nu NewUser) (User, string, error) {
	pwd, err := GeneratePassword(svc.conf.ProvisionedPasswordLength)
	if err != nil {
		return User{}, "", errors.Wrap(err, "generating credential")
	}

	usr, err := svc.create(ctx, nu.Name, nu.Email, nu.Role, pwd)
	if err != nil {
		return User{}, "", err
	}
	return usr, pwd, nil
}

func (svc *service) Register(ctx context.Context, ru RegisterUser) (User, error) {
	return svc.create(ctx, ru.Name, ru.Email, ru.Role, ru.Password)
}

// create runs the identity-then-profile sequence. Identity creation failure
// means no profile is written; a profile-write failure after identity
// creation is surfaced as-is (the inverse of the delete asymmetry).
func (svc *service) create(ctx context.Context, name, email, role, pwd string) (User, error) {
	ident, err := svc.idSvc.CreateIdentity(ctx, email, pwd)
	if err != nil {
		if errors.Cause(err) == core.ErrIdentityExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "creating identity")
	}

	usr := User{
		UID:       ident.UID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.repo.CreateProfile(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "writing profile")
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, uid string) (User, error) {
	return svc.repo.GetProfile(ctx, uid)
}

func (svc *service) Query(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllProfiles(ctx)
}

func (svc *service) Watch(ctx context.Context) (*Feed, error) {
	return svc.repo.WatchProfiles(ctx)
}

func (svc *service) Delete(ctx context.Context, uid string) error {
	return svc.repo.DeleteProfile(ctx, uid)
}

// sendWelcomeMail greets the new account holder. The generated credential is
// displayed once to the administrator and never emailed.
func (svc *service) sendWelcomeMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{usr.Name},
	})
}
