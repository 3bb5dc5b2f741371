// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for identity resolution,
// access control, and request hardening.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/service"
	"github.com/olegiv/newsboard/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// RememberResolver looks up remember-me tokens.
type RememberResolver interface {
	ResolveRememberToken(ctx context.Context, token string) (*model.User, error)
	MarkLoggedIn(ctx context.Context, u *model.User) error
}

// LoadIdentity puts the signed-in user into the request context.
// Requests without a session but with a valid remember-me cookie get a fresh
// session for that user; unknown tokens have their cookie cleared.
// It must run inside the session manager's LoadAndSave.
func LoadIdentity(sessions *session.Manager, users RememberResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if su, ok := sessions.Current(ctx); ok {
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeyUser, su)))
				return
			}

			token := session.RememberToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.ResolveRememberToken(ctx, token)
			if err != nil {
				if errors.Is(err, service.ErrUserNotFound) {
					sessions.ClearRememberCookie(w)
				} else {
					slog.Warn("resolving remember token failed", "error", err, "path", r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}

			if !user.IsLoggedIn {
				if err := users.MarkLoggedIn(ctx, user); err != nil {
					slog.Warn("marking remembered user logged in failed", "user_id", user.ID, "error", err)
				}
			}
			if err := sessions.Establish(ctx, user); err != nil {
				slog.Error("re-establishing session from remember token failed", "user_id", user.ID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			slog.Debug("session restored from remember token", "user_id", user.ID)
			su := model.NewSessionUser(user)
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ContextKeyUser, su)))
		})
	}
}

// RequireLogin answers 401 with a plain-text message when no user is signed in.
func RequireLogin(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUser(r) == nil {
				http.Error(w, message, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser retrieves the signed-in user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.SessionUser {
	user, ok := r.Context().Value(ContextKeyUser).(model.SessionUser)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the signed-in user's id, or "".
func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

// WithUser returns a copy of ctx carrying su. Used by tests and by handlers
// that sign a user in mid-request.
func WithUser(ctx context.Context, su model.SessionUser) context.Context {
	return context.WithValue(ctx, ContextKeyUser, su)
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
