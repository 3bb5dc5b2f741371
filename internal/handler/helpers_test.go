// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsboard/internal/auth"
	"github.com/olegiv/newsboard/internal/middleware"
	"github.com/olegiv/newsboard/internal/render"
	"github.com/olegiv/newsboard/internal/service"
	"github.com/olegiv/newsboard/internal/session"
	"github.com/olegiv/newsboard/internal/store"
	"github.com/olegiv/newsboard/internal/testutil"
	"github.com/olegiv/newsboard/internal/version"
	"github.com/olegiv/newsboard/web"
)

// testApp is a running site backed by a temp JSON store.
type testApp struct {
	t      *testing.T
	store  *store.JSONStore
	users  *service.UserService
	news   *service.NewsService
	server *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	st := testutil.TestJSONStore(t)
	logger := testutil.TestLoggerSilent()
	users := service.NewUserService(st, auth.NewHasher(4), logger)
	news := service.NewNewsService(st, logger)

	sm := session.New(nil, 0, true)
	sessions := session.NewManager(sm, 0, true)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(lp.Close)

	authH := NewAuthHandler(users, sessions, renderer, lp)
	newsH := NewNewsHandler(news, users, renderer, DefaultHomeLimit)
	cookieH := NewCookieHandler(true)
	healthH := NewHealthHandler(st, version.Info{Version: "v0.0.0-test"})

	r := chi.NewRouter()
	r.Get(RouteHealth, healthH.Health)
	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)
		r.Use(middleware.LoadIdentity(sessions, users))

		r.Get(RouteRoot, newsH.Home)
		r.Get(RouteNewsPage, newsH.NewsPage)
		r.Get(RouteAPINewsPage, newsH.NewsPage)
		r.Get(RouteLogin, authH.LoginForm)
		r.Get(RouteRegister, authH.RegisterForm)
		r.Get(RouteNewsPosting, newsH.PostingForm)

		r.Post(RouteAPIRegister, authH.Register)
		r.Post(RouteAPILogin, authH.Login)
		r.Post(RouteAPILogout, authH.Logout)
		r.With(middleware.RequireLogin(service.MsgAuthRequired)).Post(RouteAPINewsPosting, newsH.Publish)
	})
	r.HandleFunc(RouteSetCookie, cookieH.Set)
	r.HandleFunc(RouteGetCookie, cookieH.Get)
	r.HandleFunc(RouteClearCookie, cookieH.Clear)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testApp{t: t, store: st, users: users, news: news, server: srv}
}

// client returns a browser-like client with its own cookie jar that does
// not follow redirects.
func (a *testApp) client() *http.Client {
	a.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		a.t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   string
}

func (a *testApp) do(c *http.Client, method, path string, form url.Values) response {
	a.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	if err != nil {
		a.t.Fatalf("NewRequest: %v", err)
	}
	if form != nil {
		req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	}

	resp, err := c.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		a.t.Fatalf("reading body: %v", err)
	}
	return response{status: resp.StatusCode, header: resp.Header, body: string(data)}
}

func (a *testApp) get(c *http.Client, path string) response {
	a.t.Helper()
	return a.do(c, http.MethodGet, path, nil)
}

func (a *testApp) post(c *http.Client, path string, form url.Values) response {
	a.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return a.do(c, http.MethodPost, path, form)
}

// cookie returns the named cookie held by c for the test server.
func (a *testApp) cookie(c *http.Client, name string) *http.Cookie {
	u, _ := url.Parse(a.server.URL)
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func registerForm(name, surname, email, password, confirm string) url.Values {
	return url.Values{
		formName:            {name},
		formSurname:         {surname},
		formEmail:           {email},
		formPassword:        {password},
		formConfirmPassword: {confirm},
	}
}

func loginForm(email, password string, remember bool) url.Values {
	v := url.Values{formEmail: {email}, formPassword: {password}}
	if remember {
		v.Set(formRemember, "on")
	}
	return v
}
