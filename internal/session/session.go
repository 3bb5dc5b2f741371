// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager and the
// long-lived remember-me cookie.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
)

// DefaultLifetime is the absolute session lifetime.
const DefaultLifetime = time.Hour

// Session store kinds, reported by SelectStore.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// StoreOptions lists the backends available to SelectStore.
type StoreOptions struct {
	Redis       *redis.Client
	RedisPrefix string
	DB          *sql.DB
}

// SelectStore picks Redis when a client is configured, then SQLite, then memory.
func SelectStore(opts StoreOptions) (scs.Store, string) {
	switch {
	case opts.Redis != nil:
		if opts.RedisPrefix != "" {
			return goredisstore.NewWithPrefix(opts.Redis, opts.RedisPrefix), StoreRedis
		}
		return goredisstore.New(opts.Redis), StoreRedis
	case opts.DB != nil:
		return sqlite3store.New(opts.DB), StoreSQLite
	default:
		return memstore.New(), StoreMemory
	}
}

// New creates a session manager backed by store.
// A nil store falls back to an in-memory store; a non-positive lifetime to DefaultLifetime.
func New(store scs.Store, lifetime time.Duration, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if store == nil {
		store = memstore.New()
	}
	sm.Store = store

	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	sm.Lifetime = lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}
