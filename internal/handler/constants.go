// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the home page.
	RouteRoot = "/"
	// RouteLogin is the login form.
	RouteLogin = "/login"
	// RouteRegister is the registration form.
	RouteRegister = "/register"
	// RouteNewsPosting is the publish form.
	RouteNewsPosting = "/news-posting-page"
	// RouteNewsPage shows a single item.
	RouteNewsPage = "/news-page/{newsID}"
	// RouteHealth is the health check.
	RouteHealth = "/health"

	// RouteAPIRegister accepts the registration form.
	RouteAPIRegister = "/api/register"
	// RouteAPILogin accepts the login form.
	RouteAPILogin = "/api/login"
	// RouteAPILogout ends the session.
	RouteAPILogout = "/api/logout"
	// RouteAPINewsPosting accepts the publish form.
	RouteAPINewsPosting = "/api/news-posting-page"
	// RouteAPINewsPage shows a single item.
	RouteAPINewsPage = "/api/news-page/{newsID}"

	// RouteSetCookie, RouteGetCookie and RouteClearCookie demonstrate plain cookies.
	RouteSetCookie   = "/set-cookie"
	RouteGetCookie   = "/get-cookie"
	RouteClearCookie = "/clear-cookie"

	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"
)

const (
	// paramNewsID is the chi URL parameter carrying the news id.
	paramNewsID = "newsID"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

// Form field names shared with the templates.
const (
	formName            = "name"
	formSurname         = "surname"
	formEmail           = "email"
	formPassword        = "password"
	formConfirmPassword = "confirmPassword"
	formRemember        = "remember"
	formTitle           = "title"
	formContent         = "content"
	formURL             = "url"
)

// Flash messages shown after successful form posts.
const (
	flashRegistered = "Welcome, %s! Your account has been created."
	flashLoggedIn   = "Welcome back, %s!"
	flashLoggedOut  = "You have been logged out."
	flashPublished  = "Your news has been published."
)
