package identitysvc

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulink/backend/core"
)

type (
	dummyIdentity struct {
		uid          string
		email        string
		passwordHash []byte
	}

	// dummyService is an in-memory identity service for DEV/TEST environments.
	dummyService struct {
		mu         sync.RWMutex
		byEmail    map[string]*dummyIdentity
		hub        *core.AuthStateHub
		secretKey  []byte
		expiration time.Duration
		appName    string
	}
)

var _ core.IdentityService = (*dummyService)(nil)

// claims are the authorization claims carried by dummy-issued tokens.
type claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

func NewDummyService(conf *core.Config) core.IdentityService {
	return &dummyService{
		byEmail:    make(map[string]*dummyIdentity),
		hub:        core.NewAuthStateHub(),
		secretKey:  conf.SecretKey,
		expiration: conf.Server.TokenExpirationDelta,
		appName:    conf.AppName,
	}
}

func (svc *dummyService) CreateIdentity(ctx context.Context, email, password string) (core.Identity, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.byEmail[email]; ok {
		return core.Identity{}, core.ErrIdentityExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.Identity{}, err
	}
	ident := &dummyIdentity{
		uid:          uuid.New().String(),
		email:        email,
		passwordHash: hash,
	}
	svc.byEmail[email] = ident
	return core.Identity{UID: ident.uid, Email: ident.email}, nil
}

func (svc *dummyService) Authenticate(ctx context.Context, email, password string) (core.Identity, string, error) {
	svc.mu.RLock()
	ident, ok := svc.byEmail[email]
	svc.mu.RUnlock()

	if !ok {
		return core.Identity{}, "", core.ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(ident.passwordHash, []byte(password)); err != nil {
		return core.Identity{}, "", core.ErrAuthenticationFailed
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    svc.appName,
			Subject:   ident.uid,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(svc.expiration).Unix(),
		},
		Email: ident.email,
	})
	ss, err := token.SignedString(svc.secretKey)
	if err != nil {
		return core.Identity{}, "", err
	}

	id := core.Identity{UID: ident.uid, Email: ident.email}
	svc.hub.Broadcast(core.AuthState{Identity: &id})
	return id, ss, nil
}

func (svc *dummyService) VerifyToken(ctx context.Context, token string) (core.Identity, error) {
	var clms claims
	tok, err := jwt.ParseWithClaims(token, &clms, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.ErrInvalidToken
		}
		return svc.secretKey, nil
	})
	if err != nil || !tok.Valid {
		return core.Identity{}, core.ErrInvalidToken
	}
	return core.Identity{UID: clms.Subject, Email: clms.Email}, nil
}

func (svc *dummyService) GetIdentityByEmail(ctx context.Context, email string) (core.Identity, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if ident, ok := svc.byEmail[email]; ok {
		return core.Identity{UID: ident.uid, Email: ident.email}, nil
	}
	return core.Identity{}, core.ErrIdentityNotFound
}

func (svc *dummyService) UpdatePassword(ctx context.Context, uid, password string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for _, ident := range svc.byEmail {
		if ident.uid == uid {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			ident.passwordHash = hash
			return nil
		}
	}
	return core.ErrAuthenticationFailed
}

func (svc *dummyService) SignOut(ctx context.Context, uid string) error {
	svc.hub.Broadcast(core.AuthState{})
	return nil
}

func (svc *dummyService) AuthStateChanges() *core.AuthSubscription {
	return svc.hub.Subscribe()
}
