package main

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/user"
	emailsvc "github.com/edulink/backend/services/email"
	identitysvc "github.com/edulink/backend/services/identity"
	dummydb "github.com/edulink/backend/storage/dummy"
)

func setup(t *testing.T) (*commandLine, core.IdentityService, user.Service) {
	t.Helper()

	conf := &core.Config{
		AppName:                   "EduLink",
		TestMode:                  true,
		SecretKey:                 []byte("test-secret-key"),
		ProvisionedPasswordLength: user.DefaultPasswordLength,
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

	return &commandLine{usrSvc: usrSvc, idSvc: idSvc, validate: validate}, idSvc, usrSvc
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // prompted password, if any
	wantErr error
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _, usrSvc := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing role", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "ok", args: []string{"adduser", "-name", "Awe Some", "-email", "awe@test.cd", "-role", "teacher"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	users, err := usrSvc.Query(context.Background())
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if users[0].Role != user.RoleTeacher || users[0].Email != "awe@test.cd" {
		t.Errorf("unexpected user: %+v", users[0])
	}

	// bad role is a validation error, not help
	if err := cli.run([]string{"admin", "adduser", "-name", "Awe", "-email", "b@test.cd", "-role", "boss"}); err == nil || err == errHelp {
		t.Errorf("cli.run() error = %v, want validation error", err)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, idSvc, usrSvc := setup(t)

	if _, _, err := usrSvc.Provision(context.Background(), user.NewUser{Name: "Awe", Email: "awe@test.cd", Role: user.RoleParent}); err != nil {
		t.Fatalf("Provision() failed: %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "ghost@test.cd"}, pwd: "NewPwd#1", wantErr: user.ErrNotFound},
		{name: "ok", args: []string{"resetpassword", "-email", "awe@test.cd"}, pwd: "NewPwd#1"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// the new password authenticates
	if _, _, err := idSvc.Authenticate(context.Background(), "awe@test.cd", "NewPwd#1"); err != nil {
		t.Errorf("Authenticate() with new password failed: %v", err)
	}
}

func Test_commandLine_resetPassword_orphanedCredential(t *testing.T) {
	ctx := context.Background()
	cli, idSvc, usrSvc := setup(t)

	usr, _, err := usrSvc.Provision(ctx, user.NewUser{Name: "Awe", Email: "awe@test.cd", Role: user.RoleParent})
	if err != nil {
		t.Fatalf("Provision() failed: %v", err)
	}
	// admin delete removes the profile record only; the credential remains
	if err := usrSvc.Delete(ctx, usr.UID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("NewPwd#1"), nil }
	if err := cli.run([]string{"admin", "resetpassword", "-email", "awe@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	if _, _, err := idSvc.Authenticate(ctx, "awe@test.cd", "NewPwd#1"); err != nil {
		t.Errorf("Authenticate() with new password failed: %v", err)
	}
}
