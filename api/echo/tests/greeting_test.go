package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/takanag/nenga/core/greeting"
	"github.com/takanag/nenga/core/user"
	testutil "github.com/takanag/nenga/tests"
)

func Test_greetingApi_yearCrud(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "taka", "taka@test.jp", "", nil, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "hana", "hana@test.jp", "", nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.jp", "", user.AdminRoles, true)

	ownerToken := getToken(t, owner)
	otherToken := getToken(t, other)
	adminToken := getToken(t, admin)

	var y greeting.Year

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"year": 2027, "title_text": "謹賀新年"})
		req, rec := newAuthRequest(http.MethodPost, "/api/years", ownerToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &y); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if y.Username != owner.Username || y.OwnerID != owner.ID {
			t.Errorf("year not attributed to creator: %+v", y)
		}
		if !y.FooterVisible {
			t.Error("footer should be visible by default")
		}
	})

	t.Run("duplicate year rejected", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"year": 2027, "title_text": "again"})
		req, rec := newAuthRequest(http.MethodPost, "/api/years", ownerToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("owners only see their own years", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/years", otherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}, rec)
	})

	t.Run("admin sees all years", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/years", adminToken)
		app.ServeHTTP(rec, req)

		var years []greeting.Year
		if err := json.Unmarshal(rec.Body.Bytes(), &years); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(years) != 1 || years[0].ID != y.ID {
			t.Errorf("years = %+v; want just %s", years, y.ID)
		}
	})

	t.Run("foreign year reads as missing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/years/"+y.ID, otherToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"greeting_text": "あけましておめでとうございます"})
		req, rec := newAuthRequest(http.MethodPut, "/api/years/"+y.ID, ownerToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var updated greeting.Year
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if updated.GreetingText != "あけましておめでとうございます" {
			t.Errorf("greeting_text = %q; update did not stick", updated.GreetingText)
		}
		if updated.TitleText != y.TitleText {
			t.Error("unrelated field was clobbered")
		}
	})

	t.Run("delete refused while cards remain", func(t *testing.T) {
		testutil.CreateCard(t, greetRepo, y, "New Year", "January", 0)

		req, rec := newAuthRequest(http.MethodDelete, "/api/years/"+y.ID, ownerToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}

func Test_greetingApi_cards(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "taka", "taka@test.jp", "", nil, true)
	token := getToken(t, owner)
	y := testutil.CreateYear(t, greetRepo, owner, 2027, "謹賀新年")

	createCard := func(t *testing.T, title string) greeting.Card {
		t.Helper()
		body := marchallObj(t, map[string]interface{}{"title": title, "month": "January"})
		req, rec := newAuthRequest(http.MethodPost, "/api/years/"+y.ID+"/cards", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var c greeting.Card
		if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		return c
	}

	a := createCard(t, "A")
	b := createCard(t, "B")
	c := createCard(t, "C")

	if a.DisplayOrder != 0 || b.DisplayOrder != 1 || c.DisplayOrder != 2 {
		t.Fatalf("new cards must append: got %d, %d, %d", a.DisplayOrder, b.DisplayOrder, c.DisplayOrder)
	}

	sequence := func(t *testing.T, body []byte) []string {
		t.Helper()
		var cards []greeting.Card
		if err := json.Unmarshal(body, &cards); err != nil {
			t.Fatalf("unmarshalling cards: %v", err)
		}
		titles := make([]string, 0, len(cards))
		for _, c := range cards {
			titles = append(titles, c.Title)
		}
		return titles
	}

	t.Run("move last to front", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"to_index": 0})
		req, rec := newAuthRequest(http.MethodPost, "/api/cards/"+c.ID+"/move", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		got := sequence(t, rec.Body.Bytes())
		want := []string{"C", "A", "B"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("sequence = %v; want %v", got, want)
		}
	})

	t.Run("move down by one", func(t *testing.T) {
		// C,A,B -> A,C,B
		body := marchallObj(t, map[string]interface{}{"delta": 1})
		req, rec := newAuthRequest(http.MethodPost, "/api/cards/"+c.ID+"/move", token, body)
		app.ServeHTTP(rec, req)

		got := sequence(t, rec.Body.Bytes())
		want := []string{"A", "C", "B"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("sequence = %v; want %v", got, want)
		}
	})

	t.Run("neither to_index nor delta", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/cards/"+c.ID+"/move", token, []byte("{}"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("delete closes the gap", func(t *testing.T) {
		// A,C,B -> delete C -> A,B with orders 0,1
		req, rec := newAuthRequest(http.MethodDelete, "/api/cards/"+c.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodGet, "/api/years/"+y.ID+"/cards", token)
		app.ServeHTTP(rec, req)
		var cards []greeting.Card
		if err := json.Unmarshal(rec.Body.Bytes(), &cards); err != nil {
			t.Fatalf("unmarshalling cards: %v", err)
		}
		if len(cards) != 2 {
			t.Fatalf("len(cards) = %d; want 2", len(cards))
		}
		for i, c := range cards {
			if c.DisplayOrder != i {
				t.Errorf("cards[%d].DisplayOrder = %d; want %d", i, c.DisplayOrder, i)
			}
		}
	})
}

func Test_publicGreetingPage(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "taka", "taka@test.jp", "", nil, true)
	y := testutil.CreateYear(t, greetRepo, owner, 2027, "謹賀新年")
	testutil.CreateCard(t, greetRepo, y, "お正月", "January", 0)

	t.Run("base page renders", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/greeting/taka/2027")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "謹賀新年") {
			t.Error("page does not contain the year title")
		}
		if !strings.Contains(rec.Body.String(), "お正月") {
			t.Error("page does not contain the card title")
		}
	})

	t.Run("username is case-insensitive", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/greeting/TAKA/2027")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("english variant 404s while disabled", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/greeting/taka/2027/english")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("unknown page 404s", func(t *testing.T) {
		for _, path := range []string{"/greeting/nobody/2027", "/greeting/taka/1999", "/greeting/taka/abc"} {
			req, rec := newRequest(http.MethodGet, path)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusNotFound {
				t.Errorf("GET %s code = %v; want %v", path, rec.Code, http.StatusNotFound)
			}
		}
	})
}
