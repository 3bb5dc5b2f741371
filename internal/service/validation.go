// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// User-facing messages returned as plain text by the handlers.
const (
	MsgFillInEachPart      = "Please fill in each part."
	MsgPasswordMismatch    = "Passwords didn't match."
	MsgEmailRegistered     = "This email is already registered."
	MsgUserNotFound        = "No user found with this email."
	MsgWrongPassword       = "Wrong password."
	MsgAuthRequired        = "You must be logged in to post news."
	MsgNewsNotFound        = "Cannot find any news."
	MsgRepeatedWhitespace  = "Fields must not contain repeated whitespace."
	MsgInternalServerError = "Internal Server Error"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrAuthRequired     = errors.New("authentication required")
	ErrNewsNotFound     = errors.New("news not found")
	ErrBlankField       = errors.New("blank field")
	ErrRepeatedSpace    = errors.New("repeated whitespace")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var repeatedWhitespace = regexp.MustCompile(`\s{2,}`)

// HasRepeatedWhitespace reports whether s contains two or more consecutive whitespace characters.
func HasRepeatedWhitespace(s string) bool {
	return repeatedWhitespace.MatchString(s)
}

// field is a named form value awaiting validation.
type field struct {
	name  string
	value string
}

// requireFilled rejects the first field that is empty after trimming.
func requireFilled(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Message: MsgFillInEachPart, Err: ErrBlankField}
		}
	}
	return nil
}

// rejectRepeatedWhitespace rejects the first field containing a whitespace run.
func rejectRepeatedWhitespace(fields ...field) error {
	for _, f := range fields {
		if HasRepeatedWhitespace(f.value) {
			return &ValidationError{Field: f.name, Message: MsgRepeatedWhitespace, Err: ErrRepeatedSpace}
		}
	}
	return nil
}
