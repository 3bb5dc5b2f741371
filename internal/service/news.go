// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/store"
)

// PublishRequest is a decoded news posting form.
type PublishRequest struct {
	Title   string
	Content string
	URL     string
}

// Normalize trims every field.
func (r *PublishRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.URL = strings.TrimSpace(r.URL)
}

// Validate requires every field; title and url must not contain whitespace runs.
// Content is free text and may.
func (r *PublishRequest) Validate() error {
	if err := requireFilled(field{"title", r.Title}, field{"content", r.Content}, field{"url", r.URL}); err != nil {
		return err
	}
	return rejectRepeatedWhitespace(field{"title", r.Title}, field{"url", r.URL})
}

// NewsService publishes and reads news items.
type NewsService struct {
	news   store.NewsStore
	logger *slog.Logger
	now    func() time.Time
}

// NewNewsService creates a NewsService.
func NewNewsService(news store.NewsStore, logger *slog.Logger) *NewsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsService{news: news, logger: logger, now: time.Now}
}

// Publish stores a new item authored by authorID.
// An empty authorID means the caller is not authenticated.
func (s *NewsService) Publish(ctx context.Context, req PublishRequest, authorID string) (*model.NewsItem, error) {
	if authorID == "" {
		return nil, ErrAuthRequired
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.news.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating news id: %w", err)
	}

	item := model.NewsItem{
		NewsID:    id,
		Title:     req.Title,
		Content:   req.Content,
		URL:       req.URL,
		Author:    authorID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.news.AppendNews(ctx, item); err != nil {
		return nil, fmt.Errorf("appending news: %w", err)
	}

	s.logger.Info("news published", "news_id", id, "author", authorID)
	return &item, nil
}

// Get returns the item with id, or ErrNewsNotFound.
func (s *NewsService) Get(ctx context.Context, id int64) (*model.NewsItem, error) {
	item, err := s.news.GetNews(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNewsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting news: %w", err)
	}
	return &item, nil
}

// Recent returns up to limit items, most recent first.
func (s *NewsService) Recent(ctx context.Context, limit int) ([]model.NewsItem, error) {
	items, err := s.news.ListNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing news: %w", err)
	}
	return model.RecentFirst(items, limit), nil
}
