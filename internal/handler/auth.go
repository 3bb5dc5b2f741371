// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/olegiv/newsboard/internal/middleware"
	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/render"
	"github.com/olegiv/newsboard/internal/service"
	"github.com/olegiv/newsboard/internal/session"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users           *service.UserService
	sessions        *session.Manager
	renderer        *render.Renderer
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable lockout.
func NewAuthHandler(users *service.UserService, sessions *session.Manager, renderer *render.Renderer, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		users:           users,
		sessions:        sessions,
		renderer:        renderer,
		loginProtection: lp,
	}
}

// LoginForm renders the login page. Signed-in users go home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "login", "Log in")
}

// RegisterForm renders the registration page. Signed-in users go home.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "register", "Register")
}

func (h *AuthHandler) renderForm(w http.ResponseWriter, r *http.Request, page, title string) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, page, render.TemplateData{Title: title}); err != nil {
		logAndInternalError(w, r, "failed to render form", "page", page, "error", err)
	}
}

// Register handles POST /api/register. A new account is signed in at once
// and receives a remember-me cookie.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, service.MsgFillInEachPart)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterRequest{
		Name:            r.PostFormValue(formName),
		Surname:         r.PostFormValue(formSurname),
		Email:           r.PostFormValue(formEmail),
		Password:        r.PostFormValue(formPassword),
		ConfirmPassword: r.PostFormValue(formConfirmPassword),
	})
	if err != nil {
		writeServiceError(w, r, err, "registration failed")
		return
	}

	if err := h.users.MarkLoggedIn(r.Context(), user); err != nil {
		logAndInternalError(w, r, "failed to mark user logged in", "user_id", user.ID, "error", err)
		return
	}
	if err := h.signIn(w, r, user, true); err != nil {
		logAndInternalError(w, r, "failed to establish session", "user_id", user.ID, "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteRoot, fmt.Sprintf(flashRegistered, user.Name))
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, service.MsgFillInEachPart)
		return
	}

	req := service.LoginRequest{
		Email:    r.PostFormValue(formEmail),
		Password: r.PostFormValue(formPassword),
		Remember: isChecked(r.PostFormValue(formRemember)),
	}
	req.Normalize()

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.Locked(req.Email); locked {
			slog.WarnContext(r.Context(), "login attempt on locked account", "email", req.Email)
			middleware.WriteLocked(w, remaining)
			return
		}
	}

	user, err := h.users.Authenticate(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			slog.Debug("login failed", "email", req.Email, "error", err)
			if h.loginProtection != nil {
				if locked, lockout := h.loginProtection.Fail(req.Email); locked {
					middleware.WriteLocked(w, lockout)
					return
				}
			}
		}
		writeServiceError(w, r, err, "login failed", "email", req.Email)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Succeed(req.Email)
	}

	if err := h.signIn(w, r, user, req.Remember); err != nil {
		logAndInternalError(w, r, "failed to establish session", "user_id", user.ID, "error", err)
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "remember", req.Remember)
	flashSuccess(w, r, h.renderer, RouteRoot, fmt.Sprintf(flashLoggedIn, user.Name))
}

// Logout handles POST /api/logout. Anonymous callers are simply redirected.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	if err := h.users.Logout(r.Context(), userID); err != nil {
		logAndInternalError(w, r, "failed to log out user", "user_id", userID, "error", err)
		return
	}
	h.sessions.ClearRememberCookie(w)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.InfoContext(r.Context(), "user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, RouteRoot, flashLoggedOut, render.FlashInfo)
}

// signIn renews the session for user and, when remember is set, issues a
// fresh remember-me token and cookie.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user *model.User, remember bool) error {
	if err := h.sessions.Establish(r.Context(), user); err != nil {
		return err
	}
	if !remember {
		return nil
	}
	token, err := h.users.IssueRememberToken(r.Context(), user.ID)
	if err != nil {
		return err
	}
	h.sessions.SetRememberCookie(w, token)
	return nil
}

// isChecked reports whether a checkbox value means "on".
func isChecked(v string) bool {
	switch v {
	case "on", "true", "1":
		return true
	}
	return false
}
