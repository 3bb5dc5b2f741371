// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/newsboard/internal/render"
	"github.com/olegiv/newsboard/internal/service"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// writeText writes message as a plain-text response with the given status.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set(HeaderContentType, contentTypeText)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(HeaderContentType, contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logAndHTTPError logs an error and writes a plain-text error response.
func logAndHTTPError(w http.ResponseWriter, r *http.Request, message string, statusCode int, logMsg string, args ...any) {
	slog.ErrorContext(r.Context(), logMsg, args...)
	writeText(w, statusCode, message)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	logAndHTTPError(w, r, service.MsgInternalServerError, http.StatusInternalServerError, logMsg, args...)
}

// errorResponse maps a service error onto the status and message shown to
// the client. ok is false for unexpected errors.
func errorResponse(err error) (status int, message string, ok bool) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message, true
	case errors.Is(err, service.ErrEmailRegistered):
		return http.StatusConflict, service.MsgEmailRegistered, true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, service.MsgUserNotFound, true
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusUnauthorized, service.MsgWrongPassword, true
	case errors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized, service.MsgAuthRequired, true
	case errors.Is(err, service.ErrNewsNotFound):
		return http.StatusNotFound, service.MsgNewsNotFound, true
	}
	return http.StatusInternalServerError, service.MsgInternalServerError, false
}

// writeServiceError answers with the mapped status, logging unexpected errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMsg string, args ...any) {
	status, message, ok := errorResponse(err)
	if !ok {
		logAndInternalError(w, r, logMsg, append(args, "error", err)...)
		return
	}
	writeText(w, status, message)
}
