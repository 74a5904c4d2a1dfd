package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/takanag/nenga/core/greeting"
	testutil "github.com/takanag/nenga/tests"
)

func Test_adminPages_sessionGate(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.jp", "", nil, true)
	token := getToken(t, usr)

	t.Run("root redirects to admin", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin" {
			t.Errorf("got %v -> %q; want 302 -> /admin", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("no session redirects to login", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/admin")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin/login" {
			t.Errorf("got %v -> %q; want 302 -> /admin/login", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("garbage session redirects to login", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/admin")
		req.AddCookie(&http.Cookie{Name: "session", Value: "lol"})
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin/login" {
			t.Errorf("got %v -> %q; want 302 -> /admin/login", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("valid session renders the dashboard", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/admin")
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), usr.Username) {
			t.Error("dashboard does not greet the signed-in user")
		}
	})

	t.Run("login page is public", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/admin/login")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("login page bounces signed-in visitors", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/admin/login")
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin" {
			t.Errorf("got %v -> %q; want 302 -> /admin", rec.Code, rec.Header().Get("Location"))
		}
	})
}

// brokenGreetingRepo fails every page lookup with a storage error.
type brokenGreetingRepo struct {
	greeting.Repository
}

func (brokenGreetingRepo) GetYearByUsernameAndYear(ctx context.Context, username string, year int) (greeting.Year, error) {
	return greeting.Year{}, errors.New("storage offline")
}

func Test_publicGreetingPage_failsClosed(t *testing.T) {
	app := setupWithGreetingRepo(t, func(repo greeting.Repository) greeting.Repository {
		return brokenGreetingRepo{Repository: repo}
	})

	// a storage failure reads exactly like a missing page
	req, rec := newRequest(http.MethodGet, "/greeting/taka/2026")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
	}
}
