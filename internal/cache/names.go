// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultNameTTL bounds how long a display name is kept.
const DefaultNameTTL = time.Hour

const nameKeyPrefix = "name:"

// NameCache maps user ids to display names on top of a Cache.
// Backend errors are logged and treated as misses.
type NameCache struct {
	c   Cache
	ttl time.Duration
}

// NewNameCache wraps c. A non-positive ttl uses DefaultNameTTL.
func NewNameCache(c Cache, ttl time.Duration) *NameCache {
	if ttl <= 0 {
		ttl = DefaultNameTTL
	}
	return &NameCache{c: c, ttl: ttl}
}

// Lookup returns the cached names for ids and the ids that missed.
func (n *NameCache) Lookup(ctx context.Context, ids ...string) (map[string]string, []string) {
	found := make(map[string]string, len(ids))
	seen := make(map[string]bool, len(ids))
	var missing []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		val, err := n.c.Get(ctx, nameKeyPrefix+id)
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				slog.WarnContext(ctx, "name cache lookup failed", "user_id", id, "error", err)
			}
			missing = append(missing, id)
			continue
		}
		found[id] = string(val)
	}
	return found, missing
}

// Store caches each name in names.
func (n *NameCache) Store(ctx context.Context, names map[string]string) {
	for id, name := range names {
		if err := n.c.Set(ctx, nameKeyPrefix+id, []byte(name), n.ttl); err != nil {
			slog.WarnContext(ctx, "name cache store failed", "user_id", id, "error", err)
		}
	}
}
