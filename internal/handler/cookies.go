// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"
)

const (
	// DemoCookieName is the cookie used by the cookie demo endpoints.
	DemoCookieName = "demoCookie"

	demoCookieDefault = "Hello from newsboard"
	demoCookieMaxLen  = 256
	demoCookieTTL     = 24 * time.Hour
)

// CookieHandler demonstrates setting, reading and clearing a plain cookie.
type CookieHandler struct {
	secure bool
}

// NewCookieHandler creates a CookieHandler. Cookies are Secure outside development.
func NewCookieHandler(isDev bool) *CookieHandler {
	return &CookieHandler{secure: !isDev}
}

// Set stores the "value" query or form parameter, or a default greeting.
func (h *CookieHandler) Set(w http.ResponseWriter, r *http.Request) {
	value := r.FormValue("value")
	if value == "" {
		value = demoCookieDefault
	}
	if len(value) > demoCookieMaxLen {
		writeText(w, http.StatusBadRequest, "Cookie value is too long.")
		return
	}

	c := &http.Cookie{
		Name:     DemoCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(demoCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	// http.SetCookie drops invalid cookies without telling the caller.
	if err := c.Valid(); err != nil {
		writeText(w, http.StatusBadRequest, "Cookie value is invalid.")
		return
	}
	http.SetCookie(w, c)
	writeText(w, http.StatusOK, "Cookie has been set.")
}

// Get echoes the demo cookie.
func (h *CookieHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(DemoCookieName)
	if err != nil {
		writeText(w, http.StatusNotFound, "No cookie found.")
		return
	}
	writeText(w, http.StatusOK, "Cookie value: "+c.Value)
}

// Clear expires the demo cookie.
func (h *CookieHandler) Clear(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     DemoCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeText(w, http.StatusOK, "Cookie has been cleared.")
}
