package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSessionMiddleware(t *testing.T) {
	var seen string
	handler := Session(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
	}))

	t.Run("header wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set(sessionHeader, "from-header")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if seen != "from-header" {
			t.Fatalf("expected header session, got %q", seen)
		}
		if rec.Header().Get("Set-Cookie") != "" {
			t.Fatalf("existing session must not mint a cookie")
		}
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if seen != "from-cookie" {
			t.Fatalf("expected cookie session, got %q", seen)
		}
		if rec.Header().Get(sessionHeader) != "from-cookie" {
			t.Fatalf("expected session echoed in header")
		}
	})

	t.Run("minted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set(sessionHeader, "bad:id*with{chars}")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if seen == "" || seen == "bad:id*with{chars}" {
			t.Fatalf("expected a fresh session id, got %q", seen)
		}
		cookie := rec.Header().Get("Set-Cookie")
		if !strings.Contains(cookie, SessionCookie+"="+seen) || !strings.Contains(cookie, "HttpOnly") {
			t.Fatalf("expected session cookie, got %q", cookie)
		}
	})
}

func TestValidSessionID(t *testing.T) {
	cases := map[string]string{
		"  abc-123_X ":           "abc-123_X",
		"":                       "",
		"a b":                    "",
		strings.Repeat("a", 129): "",
	}
	for in, want := range cases {
		if got := validSessionID(in); got != want {
			t.Fatalf("validSessionID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "req-42" || rec.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected request id propagated, got %q / %q", seen, rec.Header().Get(requestIDHeader))
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
