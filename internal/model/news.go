// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// NewsItem is a published news entry. Items are immutable once stored.
type NewsItem struct {
	NewsID    int64     `json:"newsID"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Counter is the persisted source of news identifiers.
type Counter struct {
	LastID int64 `json:"lastId"`
}

// RecentFirst returns the last limit items of items in reverse order,
// so the most recently inserted item comes first. The input is not modified.
func RecentFirst(items []NewsItem, limit int) []NewsItem {
	if limit <= 0 || len(items) == 0 {
		return []NewsItem{}
	}
	start := len(items) - limit
	if start < 0 {
		start = 0
	}

	out := make([]NewsItem, 0, len(items)-start)
	for i := len(items) - 1; i >= start; i-- {
		out = append(out, items[i])
	}
	return out
}

// MaxNewsID returns the highest NewsID in items, or 0 when empty.
func MaxNewsID(items []NewsItem) int64 {
	var maxID int64
	for _, it := range items {
		if it.NewsID > maxID {
			maxID = it.NewsID
		}
	}
	return maxID
}
