// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/newsboard/internal/model"
)

// Session keys holding the signed-in identity.
const (
	KeyUserID     = "user_id"
	KeyName       = "user_name"
	KeySurname    = "user_surname"
	KeyEmail      = "user_email"
	KeyIsLoggedIn = "is_logged_in"
)

// RememberCookieName is the cookie carrying the remember-me token.
const RememberCookieName = "rememberMe"

// DefaultRememberTTL is the remember-me cookie lifetime.
const DefaultRememberTTL = 24 * time.Hour

// Manager binds identities to scs sessions and handles the remember-me cookie.
type Manager struct {
	sessions    *scs.SessionManager
	rememberTTL time.Duration
	secure      bool
}

// NewManager creates a Manager. A non-positive rememberTTL uses DefaultRememberTTL.
func NewManager(sessions *scs.SessionManager, rememberTTL time.Duration, isDev bool) *Manager {
	if rememberTTL <= 0 {
		rememberTTL = DefaultRememberTTL
	}
	return &Manager{sessions: sessions, rememberTTL: rememberTTL, secure: !isDev}
}

// Sessions returns the underlying scs manager.
func (m *Manager) Sessions() *scs.SessionManager {
	return m.sessions
}

// RememberTTL returns the remember-me cookie lifetime.
func (m *Manager) RememberTTL() time.Duration {
	return m.rememberTTL
}

// Establish renews the session token and stores u as the signed-in identity.
func (m *Manager) Establish(ctx context.Context, u *model.User) error {
	if err := m.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	su := model.NewSessionUser(u)
	m.sessions.Put(ctx, KeyUserID, su.ID)
	m.sessions.Put(ctx, KeyName, su.Name)
	m.sessions.Put(ctx, KeySurname, su.Surname)
	m.sessions.Put(ctx, KeyEmail, su.Email)
	m.sessions.Put(ctx, KeyIsLoggedIn, su.IsLoggedIn)
	return nil
}

// Current returns the signed-in identity, if any.
func (m *Manager) Current(ctx context.Context) (model.SessionUser, bool) {
	id := m.sessions.GetString(ctx, KeyUserID)
	if id == "" || !m.sessions.GetBool(ctx, KeyIsLoggedIn) {
		return model.SessionUser{}, false
	}
	return model.SessionUser{
		ID:         id,
		Name:       m.sessions.GetString(ctx, KeyName),
		Surname:    m.sessions.GetString(ctx, KeySurname),
		Email:      m.sessions.GetString(ctx, KeyEmail),
		IsLoggedIn: true,
	}, true
}

// Destroy removes the session from the store and expires its cookie.
func (m *Manager) Destroy(ctx context.Context) error {
	if err := m.sessions.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// SetRememberCookie writes the remember-me cookie.
func (m *Manager) SetRememberCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.rememberTTL.Seconds()),
		Expires:  time.Now().Add(m.rememberTTL),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRememberCookie expires the remember-me cookie.
func (m *Manager) ClearRememberCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RememberToken returns the remember-me token sent with r, or "".
func RememberToken(r *http.Request) string {
	c, err := r.Cookie(RememberCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
