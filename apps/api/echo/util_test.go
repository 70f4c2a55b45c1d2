package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/announcement"
	"github.com/edulink/backend/core/student"
	"github.com/edulink/backend/core/user"
	emailsvc "github.com/edulink/backend/services/email"
	identitysvc "github.com/edulink/backend/services/identity"
	dummydb "github.com/edulink/backend/storage/dummy"
)

type testEnv struct {
	server Server
	db     *dummydb.DB
	idSvc  core.IdentityService
	usrSvc user.Service
}

type testLogger struct{}

var _ core.Logger = (*testLogger)(nil)

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		AppName:                   "EduLink",
		Env:                       "TEST",
		TestMode:                  true,
		SecretKey:                 []byte("test-secret-key"),
		ProvisionedPasswordLength: user.DefaultPasswordLength,
		Server:                    core.ServerConfig{TokenExpirationDelta: time.Hour},
	}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	idSvc := identitysvc.NewDummyService(conf)
	usrSvc := user.NewService(dummydb.NewUserRepository(db), idSvc, emailsvc.NewConsoleServiceMock(conf), conf)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          testLogger{},
		IdentitySvc:     idSvc,
		UserSvc:         usrSvc,
		StudentSvc:      student.NewService(dummydb.NewStudentRepository(db)),
		AnnouncementSvc: announcement.NewService(dummydb.NewAnnouncementRepository(db)),
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
	})

	return &testEnv{server: server, db: db, idSvc: idSvc, usrSvc: usrSvc}
}

// createUser provisions an account and signs it in, returning the user and a
// bearer token.
func (env *testEnv) createUser(t *testing.T, name, email, role string) (user.User, string) {
	t.Helper()
	usr, pwd, err := env.usrSvc.Provision(context.Background(), user.NewUser{Name: name, Email: email, Role: role})
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	_, token, err := env.idSvc.Authenticate(context.Background(), email, pwd)
	if err != nil {
		t.Fatalf("createUser() sign-in failed: %v", err)
	}
	return usr, token
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("request() failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func tctx() context.Context { return context.Background() }

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func assertCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
