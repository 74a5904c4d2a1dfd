package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/takanag/nenga/core/user"
	testutil "github.com/takanag/nenga/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.jp", "passwd", nil, true)
	testutil.CreateUser(t, usrRepo, "Gone", "gone", "gone@test.jp", "passwd", nil, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", body: marchallObj(t, map[string]string{"username": "lol", "password": "passwd"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, map[string]string{"username": usr.Username, "password": "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, map[string]string{"username": "gone", "password": "passwd"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"username": usr.Username, "password": "passwd"})
		req, rec := newRequest(http.MethodPost, "/api/users/login", body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token")
		}
		if !hasSessionCookie(rec) {
			t.Error("expected a session cookie")
		}
	})

	t.Run("case-insensitive username", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"username": "AWE", "password": "passwd"})
		req, rec := newRequest(http.MethodPost, "/api/users/login", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_userApi_signup(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, map[string]string{
		"name":             "Takashi",
		"username":         "takashi",
		"email":            "takashi@test.jp",
		"password":         "G00d-Passw0rd!",
		"password_confirm": "G00d-Passw0rd!",
	})
	req, rec := newRequest(http.MethodPost, "/api/users/signup", body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var usr user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if !usr.IsOwner() {
		t.Errorf("roles = %v; want owner", usr.Roles)
	}
	if usr.IsAdmin() {
		t.Error("self-registration must not grant admin")
	}
	if !hasSessionCookie(rec) {
		t.Error("expected a session cookie")
	}

	t.Run("duplicate username rejected", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/users/signup", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	now := time.Now()
	owner := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.jp", "", nil, true, now)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.jp", "", user.AdminRoles, true, now.Add(time.Hour))

	tests := []httpTest{
		{name: "Auth required", path: "/api/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/api/users", token: getToken(t, owner), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/api/users", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, owner, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.jp", "", nil, true)

	req, rec := newAuthRequest(http.MethodGet, "/api/users/me", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}, rec)
}

func Test_userApi_logout(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/users/logout")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	// logout clears the cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.MaxAge >= 0 {
			t.Error("expected the session cookie to be expired")
		}
	}
}

func hasSessionCookie(rec interface{ Result() *http.Response }) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return true
		}
	}
	return false
}
