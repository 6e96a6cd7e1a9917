package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Skryldev/jobly/models"
)

type userBody struct {
	User models.UserDetail `json:"user"`
}

func TestCreateUser(t *testing.T) {
	ts := newTestServer(t)
	newUser := map[string]any{
		"username":  "u-new",
		"firstName": "First-new",
		"lastName":  "Last-newL",
		"password":  "password-new",
		"email":     "new@email.com",
		"isAdmin":   true,
	}

	expectError(t, ts.do(t, http.MethodPost, "/users", newUser, ts.userToken), http.StatusUnauthorized)

	rec := ts.do(t, http.MethodPost, "/users", newUser, ts.adminToken)
	expectStatus(t, rec, http.StatusCreated)
	var got struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, rec, &got)
	if got.User.Username != "u-new" || !got.User.IsAdmin || got.Token == "" {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	claims, err := ts.tokens.Verify(got.Token)
	if err != nil || claims.Username != "u-new" || !claims.IsAdmin {
		t.Fatalf("token claims = %+v, %v", claims, err)
	}

	expectError(t, ts.do(t, http.MethodPost, "/users", newUser, ts.adminToken), http.StatusConflict)
}

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)

	expectError(t, ts.do(t, http.MethodGet, "/users", nil, ts.userToken), http.StatusUnauthorized)

	rec := ts.do(t, http.MethodGet, "/users", nil, ts.adminToken)
	expectStatus(t, rec, http.StatusOK)
	var got struct {
		Users []models.User `json:"users"`
	}
	decode(t, rec, &got)
	if len(got.Users) != 3 || got.Users[0].Username != "u1" {
		t.Fatalf("users = %+v", got.Users)
	}
}

func TestGetUser_AdminOrSelf(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"self", "/users/u2", ts.userToken, http.StatusOK},
		{"admin", "/users/u2", ts.adminToken, http.StatusOK},
		{"other user", "/users/u3", ts.userToken, http.StatusUnauthorized},
		{"anon", "/users/u2", "", http.StatusUnauthorized},
		{"missing", "/users/nope", ts.adminToken, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, tc.path, nil, tc.token)
			expectStatus(t, rec, tc.want)
		})
	}

	rec := ts.do(t, http.MethodGet, "/users/u2", nil, ts.userToken)
	var got userBody
	decode(t, rec, &got)
	if got.User.Username != "u2" || got.User.Email != "user2@user.com" || got.User.Jobs == nil {
		t.Fatalf("user = %+v", got.User)
	}
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPatch, "/users/u2", map[string]any{"firstName": "New"}, ts.userToken)
	expectStatus(t, rec, http.StatusOK)
	var got struct {
		User models.User `json:"user"`
	}
	decode(t, rec, &got)
	if got.User.FirstName != "New" || got.User.LastName != "U2L" {
		t.Fatalf("user = %+v", got.User)
	}

	// Only admins may grant admin.
	expectError(t, ts.do(t, http.MethodPatch, "/users/u2", map[string]any{"isAdmin": true}, ts.userToken), http.StatusUnauthorized)
	rec = ts.do(t, http.MethodPatch, "/users/u2", map[string]any{"isAdmin": true}, ts.adminToken)
	expectStatus(t, rec, http.StatusOK)

	expectError(t, ts.do(t, http.MethodPatch, "/users/u2", map[string]any{"username": "x"}, ts.adminToken), http.StatusBadRequest)
	expectError(t, ts.do(t, http.MethodPatch, "/users/u3", map[string]any{"firstName": "x"}, ts.userToken), http.StatusUnauthorized)
}

func TestUpdateUser_PasswordThenLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPatch, "/users/u2", map[string]any{"password": "brand-new"}, ts.userToken)
	expectStatus(t, rec, http.StatusOK)

	expectStatus(t, ts.do(t, http.MethodPost, "/auth/token", map[string]any{"username": "u2", "password": "brand-new"}, ""), http.StatusOK)
	expectError(t, ts.do(t, http.MethodPost, "/auth/token", map[string]any{"username": "u2", "password": "password2"}, ""), http.StatusUnauthorized)
}

func TestRemoveUser(t *testing.T) {
	ts := newTestServer(t)

	expectError(t, ts.do(t, http.MethodDelete, "/users/u3", nil, ts.userToken), http.StatusUnauthorized)

	rec := ts.do(t, http.MethodDelete, "/users/u2", nil, ts.userToken)
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); body != `{"deleted":"u2"}` {
		t.Fatalf("body = %s", body)
	}
	expectError(t, ts.do(t, http.MethodDelete, "/users/u2", nil, ts.adminToken), http.StatusNotFound)
}

func TestApplyToJob(t *testing.T) {
	ts := newTestServer(t)
	id := ts.fx.JobIDs[1]
	path := fmt.Sprintf("/users/u2/jobs/%d", id)

	expectError(t, ts.do(t, http.MethodPost, fmt.Sprintf("/users/u3/jobs/%d", id), nil, ts.userToken), http.StatusUnauthorized)

	rec := ts.do(t, http.MethodPost, path, nil, ts.userToken)
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); body != fmt.Sprintf(`{"applied":%d}`, id) {
		t.Fatalf("body = %s", body)
	}

	rec = ts.do(t, http.MethodGet, "/users/u2", nil, ts.userToken)
	var got userBody
	decode(t, rec, &got)
	if len(got.User.Jobs) != 1 || got.User.Jobs[0] != id {
		t.Fatalf("jobs = %v", got.User.Jobs)
	}

	expectError(t, ts.do(t, http.MethodPost, path, nil, ts.userToken), http.StatusConflict)
	expectError(t, ts.do(t, http.MethodPost, "/users/u2/jobs/0", nil, ts.userToken), http.StatusNotFound)
	expectError(t, ts.do(t, http.MethodPost, "/users/u2/jobs/abc", nil, ts.userToken), http.StatusNotFound)
	expectError(t, ts.do(t, http.MethodPost, fmt.Sprintf("/users/nope/jobs/%d", id), nil, ts.adminToken), http.StatusNotFound)
}
