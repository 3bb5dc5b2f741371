// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/service"
	"github.com/olegiv/newsboard/internal/session"
)

type fakeResolver struct {
	users  map[string]model.User
	marked []string
}

func (f *fakeResolver) ResolveRememberToken(_ context.Context, token string) (*model.User, error) {
	u, ok := f.users[token]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeResolver) MarkLoggedIn(_ context.Context, u *model.User) error {
	f.marked = append(f.marked, u.ID)
	u.IsLoggedIn = true
	return nil
}

func newTestSessions() *session.Manager {
	return session.NewManager(session.New(nil, 0, true), 0, true)
}

// captureUser records the identity seen by the final handler.
func captureUser(got **model.SessionUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetUser(r)
	})
}

func TestGetUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil {
		t.Error("GetUser() without context user should be nil")
	}
	if GetUserID(req) != "" {
		t.Error("GetUserID() without context user should be empty")
	}

	su := model.SessionUser{ID: "u1", Email: "ada@example.com", IsLoggedIn: true}
	req = req.WithContext(WithUser(req.Context(), su))
	got := GetUser(req)
	if got == nil || got.ID != "u1" {
		t.Fatalf("GetUser() = %+v", got)
	}
	if GetUserID(req) != "u1" {
		t.Errorf("GetUserID() = %q", GetUserID(req))
	}
}

func TestRequireLogin(t *testing.T) {
	handler := RequireLogin(service.MsgAuthRequired)(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/news-posting-page", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
	if body := w.Body.String(); body != service.MsgAuthRequired+"\n" {
		t.Errorf("body = %q", body)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/news-posting-page", nil)
	req = req.WithContext(WithUser(req.Context(), model.SessionUser{ID: "u1", IsLoggedIn: true}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("signed-in status = %d, want 200", w.Code)
	}
}

func TestLoadIdentityAnonymous(t *testing.T) {
	sessions := newTestSessions()
	var got *model.SessionUser
	handler := sessions.Sessions().LoadAndSave(LoadIdentity(sessions, &fakeResolver{})(captureUser(&got)))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != nil {
		t.Errorf("anonymous request got user %+v", got)
	}
}

func TestLoadIdentityFromRememberCookie(t *testing.T) {
	sessions := newTestSessions()
	resolver := &fakeResolver{users: map[string]model.User{
		"tok": {ID: "u1", Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"},
	}}

	var got *model.SessionUser
	handler := sessions.Sessions().LoadAndSave(LoadIdentity(sessions, resolver)(captureUser(&got)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.RememberCookieName, Value: "tok"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got == nil || got.ID != "u1" || !got.IsLoggedIn {
		t.Fatalf("restored user = %+v", got)
	}
	if len(resolver.marked) != 1 {
		t.Errorf("MarkLoggedIn calls = %d, want 1", len(resolver.marked))
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessions.Sessions().Cookie.Name {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no session cookie issued after silent re-login")
	}

	// The next request is authenticated by the session alone.
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.ID != "u1" {
		t.Errorf("session did not persist: %+v", got)
	}
}

func TestLoadIdentityUnknownTokenClearsCookie(t *testing.T) {
	sessions := newTestSessions()
	var got *model.SessionUser
	handler := sessions.Sessions().LoadAndSave(LoadIdentity(sessions, &fakeResolver{})(captureUser(&got)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.RememberCookieName, Value: "stale"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got != nil {
		t.Errorf("stale token authenticated %+v", got)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == session.RememberCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("stale remember cookie not cleared")
	}
}

func TestRequestPath(t *testing.T) {
	var path string
	handler := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = GetRequestPath(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/news-page/7", nil))
	if path != "/news-page/7" {
		t.Errorf("GetRequestPath = %q", path)
	}
	if GetRequestPath(context.Background()) != "" {
		t.Error("GetRequestPath on empty context should be empty")
	}
}
