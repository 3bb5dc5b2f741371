// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RememberTokenBytes is the amount of randomness in a remember-me token.
const RememberTokenBytes = 32

// GenerateRememberToken returns a random hex-encoded token.
func GenerateRememberToken() (string, error) {
	buf := make([]byte, RememberTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating remember token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
