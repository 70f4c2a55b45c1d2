package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edulink/backend/core"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func registerUser(pwd string) RegisterUser {
	return RegisterUser{
		Name:            "Awe Some",
		Email:           "awe@test.cd",
		Role:            RoleParent,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
}

func Test_passwordPolicy(t *testing.T) {
	validate := newValidator(t)

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "aB1#", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "aB1# aB1#", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678", wantTag: pwdNotAllNumTag},
		{name: "no special char", pwd: "aB1aB1aB1", wantTag: pwdComplexityTag},
		{name: "no digit", pwd: "aBc#aBc#", wantTag: pwdComplexityTag},
		{name: "similar to email", pwd: "awe@test.cd1A#", wantTag: pwdAttrSimTag},
		{name: "ok", pwd: "LePassword#1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ru := registerUser(tt.pwd)
			err := ru.Validate(validate)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("Validate() failed: %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("error = %v (%T), want ValidationErrors", err, err)
			}
			for _, vErr := range vErrs {
				if vErr.Tag() == tt.wantTag {
					return
				}
			}
			t.Errorf("tags = %v, want %s", vErrs, tt.wantTag)
		})
	}
}

func Test_roleValidation(t *testing.T) {
	validate := newValidator(t)

	nu := NewUser{Name: "Awe", Email: "awe@test.cd", Role: "boss"}
	if err := nu.Validate(validate); err == nil {
		t.Error("Validate() accepted an unknown role")
	}
	nu.Role = RoleAdmin
	if err := nu.Validate(validate); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}

	// admin cannot self-register
	ru := registerUser("LePassword#1")
	ru.Role = RoleAdmin
	if err := ru.Validate(validate); err == nil {
		t.Error("Validate() accepted admin self-registration")
	}
}

func Test_commonPasswordRejected(t *testing.T) {
	validate := newValidator(t)

	commonPasswords = []string{"lepassword#1"}
	defer func() { commonPasswords = nil }()

	ru := registerUser("LePassword#1")
	err := ru.Validate(validate)
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("error = %v (%T), want ValidationErrors", err, err)
	}
	if vErrs[0].Tag() != pwdNoCommonTag {
		t.Errorf("tag = %s, want %s", vErrs[0].Tag(), pwdNoCommonTag)
	}
}
