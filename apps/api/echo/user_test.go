package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edulink/backend/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	_, pwd, err := env.usrSvc.Provision(tctx(), user.NewUser{Name: "Le Parent", Email: "parent@test.cd", Role: user.RoleParent})
	if err != nil {
		t.Fatalf("Provision() failed: %v", err)
	}

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{"ok", map[string]string{"email": "parent@test.cd", "password": pwd}, http.StatusOK},
		{"wrong password", map[string]string{"email": "parent@test.cd", "password": "nope"}, http.StatusBadRequest},
		{"unknown account", map[string]string{"email": "ghost@test.cd", "password": "nope"}, http.StatusBadRequest},
		{"missing fields", map[string]string{"email": "parent@test.cd"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodPost, "/v1/users/login", "", tt.body)
			assertCode(t, rec, tt.wantCode)

			if tt.wantCode == http.StatusOK {
				var res LoginResponse
				decodeJSON(t, rec, &res)
				assert.NotEmpty(t, res.Token)
				assert.Equal(t, "parent@test.cd", res.User.Email)
			}
		})
	}

	// wrong-password and unknown-account replies are identical
	rec1 := env.request(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "parent@test.cd", "password": "nope"})
	rec2 := env.request(t, http.MethodPost, "/v1/users/login", "", map[string]string{"email": "ghost@test.cd", "password": "nope"})
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
}

func Test_userApi_loginDegradedWithoutProfile(t *testing.T) {
	env := setup(t)

	// identity exists but no profile record was ever written
	if _, err := env.idSvc.CreateIdentity(tctx(), "ghost@test.cd", "LePassword#1"); err != nil {
		t.Fatalf("CreateIdentity() failed: %v", err)
	}

	rec := env.request(t, http.MethodPost, "/v1/users/login", "", map[string]string{
		"email": "ghost@test.cd", "password": "LePassword#1",
	})
	assertCode(t, rec, http.StatusOK)

	var res LoginResponse
	decodeJSON(t, rec, &res)
	if !res.User.IsDegraded() {
		t.Errorf("user = %+v, want degraded (empty role)", res.User)
	}
	assert.Equal(t, "ghost@test.cd", res.User.Email)
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	body := map[string]string{
		"name":             "Awe Some",
		"email":            "awe@test.cd",
		"role":             user.RoleParent,
		"password":         "LePassword#1",
		"password_confirm": "LePassword#1",
	}
	rec := env.request(t, http.MethodPost, "/v1/users/register", "", body)
	assertCode(t, rec, http.StatusCreated)

	// duplicate email is a field error
	rec = env.request(t, http.MethodPost, "/v1/users/register", "", body)
	assertCode(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "email")

	// admin accounts cannot self-register
	body["email"] = "boss@test.cd"
	body["role"] = user.RoleAdmin
	rec = env.request(t, http.MethodPost, "/v1/users/register", "", body)
	assertCode(t, rec, http.StatusBadRequest)
}

func Test_userApi_provision(t *testing.T) {
	env := setup(t)
	_, adminToken := env.createUser(t, "Boss", "boss@test.cd", user.RoleAdmin)
	_, parentToken := env.createUser(t, "Parent", "parent@test.cd", user.RoleParent)

	body := map[string]string{"name": "New Teacher", "email": "teach@test.cd", "role": user.RoleTeacher}

	// non-admin is rejected
	rec := env.request(t, http.MethodPost, "/v1/users", parentToken, body)
	assertCode(t, rec, http.StatusForbidden)

	// unauthenticated is rejected
	rec = env.request(t, http.MethodPost, "/v1/users", "", body)
	assertCode(t, rec, http.StatusUnauthorized)

	rec = env.request(t, http.MethodPost, "/v1/users", adminToken, body)
	assertCode(t, rec, http.StatusCreated)

	var res ProvisionResponse
	decodeJSON(t, rec, &res)
	if len(res.Password) != user.DefaultPasswordLength {
		t.Errorf("credential len = %d, want %d", len(res.Password), user.DefaultPasswordLength)
	}
	assert.Equal(t, user.RoleTeacher, res.User.Role)

	// the generated credential signs in
	rec = env.request(t, http.MethodPost, "/v1/users/login", "", map[string]string{
		"email": "teach@test.cd", "password": res.Password,
	})
	assertCode(t, rec, http.StatusOK)
}

func Test_userApi_queryAndDelete(t *testing.T) {
	env := setup(t)
	admin, adminToken := env.createUser(t, "Boss", "boss@test.cd", user.RoleAdmin)
	other, _ := env.createUser(t, "Parent", "parent@test.cd", user.RoleParent)

	rec := env.request(t, http.MethodGet, "/v1/users", adminToken, nil)
	assertCode(t, rec, http.StatusOK)
	var users []user.User
	decodeJSON(t, rec, &users)
	assert.Len(t, users, 2)

	// self-delete is forbidden
	rec = env.request(t, http.MethodDelete, "/v1/users/"+admin.UID, adminToken, nil)
	assertCode(t, rec, http.StatusForbidden)

	rec = env.request(t, http.MethodDelete, "/v1/users/"+other.UID, adminToken, nil)
	assertCode(t, rec, http.StatusNoContent)

	// the profile is gone but the identity credential survives: the account
	// still authenticates, now degraded
	rec = env.request(t, http.MethodGet, "/v1/users", adminToken, nil)
	decodeJSON(t, rec, &users)
	assert.Len(t, users, 1)
}

func Test_userApi_logoutAndMe(t *testing.T) {
	env := setup(t)
	usr, token := env.createUser(t, "Awe", "awe@test.cd", user.RoleTeacher)

	rec := env.request(t, http.MethodGet, "/v1/users/me", token, nil)
	assertCode(t, rec, http.StatusOK)
	var me user.User
	decodeJSON(t, rec, &me)
	assert.Equal(t, usr.UID, me.UID)

	rec = env.request(t, http.MethodPost, "/v1/users/logout", token, nil)
	assertCode(t, rec, http.StatusNoContent)

	// garbage token is rejected
	rec = env.request(t, http.MethodGet, "/v1/users/me", "garbage", nil)
	assertCode(t, rec, http.StatusUnauthorized)
}
