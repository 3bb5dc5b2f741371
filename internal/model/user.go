// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records shared by the stores, services
// and handlers: users, news items and the per-request session identity.
package model

// User is a registered account. JSON tags match the on-disk user database.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	Email         string `json:"email"`
	PasswordHash  string `json:"password"`
	IsLoggedIn    bool   `json:"isLoggedIn"`
	RememberToken string `json:"rememberToken,omitempty"`
}

// FullName returns "Name Surname".
func (u *User) FullName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}

// SessionUser is the identity kept in the server-side session.
type SessionUser struct {
	ID         string
	Name       string
	Surname    string
	Email      string
	IsLoggedIn bool
}

// NewSessionUser projects a stored user onto the session record.
func NewSessionUser(u *User) SessionUser {
	return SessionUser{
		ID:         u.ID,
		Name:       u.Name,
		Surname:    u.Surname,
		Email:      u.Email,
		IsLoggedIn: true,
	}
}
