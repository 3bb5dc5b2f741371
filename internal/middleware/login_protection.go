// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MsgLoginRateLimited is returned when an IP sends login posts too quickly.
const MsgLoginRateLimited = "Too many login attempts. Please wait a moment and try again."

// maxLockout caps the doubling lockout.
const maxLockout = 24 * time.Hour

// limiterCacheMax bounds the per-IP limiter map between cleanups.
const limiterCacheMax = 10000

// LoginProtection throttles login posts per IP and locks an email address
// after repeated failed logins. Lockouts double each time, up to a day.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*accountFailures

	maxFailures int
	baseLockout time.Duration
	window      time.Duration
	now         func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// accountFailures is the failure history of one email address.
type accountFailures struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login posts per second per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the account.
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each further one doubles it.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection starts a LoginProtection. Zero config fields take the
// defaults. Call Close to stop its cleanup goroutine.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:  newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:    make(map[string]*accountFailures),
		maxFailures: cfg.MaxFailedAttempts,
		baseLockout: cfg.LockoutDuration,
		window:      cfg.AttemptWindow,
		now:         time.Now,
		done:        make(chan struct{}),
	}
	go lp.cleanup()
	return lp
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (lp *LoginProtection) Close() {
	lp.closeOnce.Do(func() { close(lp.done) })
}

// accountKey matches the email normalisation done by the login form decoder,
// so " ada@example.com" and "ada@example.com" share one failure history.
func accountKey(email string) string {
	return strings.TrimSpace(email)
}

// Locked reports whether email is locked and for how much longer.
func (lp *LoginProtection) Locked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	acc, ok := lp.accounts[accountKey(email)]
	if !ok {
		return false, 0
	}
	if remaining := acc.lockedUntil.Sub(lp.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// Fail records a failed login for email. When this failure locks the
// account it returns true and the lockout length.
func (lp *LoginProtection) Fail(email string) (bool, time.Duration) {
	key := accountKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	acc, ok := lp.accounts[key]
	if !ok {
		acc = &accountFailures{windowStart: now}
		lp.accounts[key] = acc
	}
	if now.Sub(acc.windowStart) > lp.window {
		acc.failures = 0
		acc.windowStart = now
	}
	acc.failures++

	if acc.failures < lp.maxFailures {
		slog.Debug("failed login recorded", "email", key, "failures", acc.failures)
		return false, 0
	}

	d := lockoutFor(lp.baseLockout, acc.lockouts)
	acc.lockedUntil = now.Add(d)
	acc.lockouts++
	acc.failures = 0

	slog.Warn("account locked after failed logins", "email", key, "lockouts", acc.lockouts, "duration", d)
	return true, d
}

// Succeed forgets the failure history of email.
func (lp *LoginProtection) Succeed(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// lockoutFor doubles base once per earlier lockout, capped at maxLockout.
func lockoutFor(base time.Duration, earlier int) time.Duration {
	d := base
	for range earlier {
		d *= 2
		if d >= maxLockout {
			return maxLockout
		}
	}
	return d
}

// LockedMessage is the 429 body for a locked account.
func LockedMessage(remaining time.Duration) string {
	return fmt.Sprintf("Too many failed login attempts. Try again in %s.", humanDuration(remaining))
}

// WriteLocked answers 429 with LockedMessage and a Retry-After header.
func WriteLocked(w http.ResponseWriter, remaining time.Duration) {
	writeTooMany(w, remaining, LockedMessage(remaining))
}

func writeTooMany(w http.ResponseWriter, retryAfter time.Duration, message string) {
	if secs := int(retryAfter.Round(time.Second).Seconds()); secs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(message))
}

// humanDuration rounds d down to whole seconds, minutes or hours.
func humanDuration(d time.Duration) string {
	unit := func(n int, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	case d < time.Hour:
		return unit(int(d.Minutes()), "minute")
	default:
		return unit(int(d.Hours()), "hour")
	}
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.done:
			return
		}
	}
}

// cleanupStaleEntries drops unlocked accounts whose window has passed.
func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(limiterCacheMax) {
		slog.Info("cleared login rate limiters due to size")
	}

	now := lp.now()
	lp.mu.Lock()
	for key, acc := range lp.accounts {
		if now.After(acc.lockedUntil) && now.Sub(acc.windowStart) > lp.window {
			delete(lp.accounts, key)
		}
	}
	lp.mu.Unlock()
}

// Middleware throttles POST requests per client IP. Other methods pass.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			res := lp.ipLimiters.get(ip).Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
				writeTooMany(w, delay, MsgLoginRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
