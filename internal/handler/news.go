// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsboard/internal/middleware"
	"github.com/olegiv/newsboard/internal/model"
	"github.com/olegiv/newsboard/internal/render"
	"github.com/olegiv/newsboard/internal/service"
)

// DefaultHomeLimit is how many items the home page lists.
const DefaultHomeLimit = 5

const unknownAuthor = "Unknown author"

// NewsView pairs an item with its author's display name.
type NewsView struct {
	Item       model.NewsItem
	AuthorName string
}

// HomeData is the home page payload.
type HomeData struct {
	Items []NewsView
}

// NewsHandler serves the news pages and the publish endpoint.
type NewsHandler struct {
	news      *service.NewsService
	users     *service.UserService
	renderer  *render.Renderer
	homeLimit int
}

// NewNewsHandler creates a NewsHandler. A non-positive homeLimit uses DefaultHomeLimit.
func NewNewsHandler(news *service.NewsService, users *service.UserService, renderer *render.Renderer, homeLimit int) *NewsHandler {
	if homeLimit <= 0 {
		homeLimit = DefaultHomeLimit
	}
	return &NewsHandler{
		news:      news,
		users:     users,
		renderer:  renderer,
		homeLimit: homeLimit,
	}
}

// Home renders the most recent items, newest first.
func (h *NewsHandler) Home(w http.ResponseWriter, r *http.Request) {
	items, err := h.news.Recent(r.Context(), h.homeLimit)
	if err != nil {
		logAndInternalError(w, r, "failed to list news", "error", err)
		return
	}

	views, err := h.withAuthors(r, items...)
	if err != nil {
		logAndInternalError(w, r, "failed to resolve authors", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "main", render.TemplateData{Data: HomeData{Items: views}}); err != nil {
		logAndInternalError(w, r, "failed to render home", "error", err)
	}
}

// NewsPage renders a single item or answers 404.
func (h *NewsHandler) NewsPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, paramNewsID), 10, 64)
	if err != nil || id <= 0 {
		writeText(w, http.StatusNotFound, service.MsgNewsNotFound)
		return
	}

	item, err := h.news.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to get news", "news_id", id)
		return
	}

	views, err := h.withAuthors(r, *item)
	if err != nil {
		logAndInternalError(w, r, "failed to resolve author", "news_id", id, "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "news", render.TemplateData{Title: item.Title, Data: views[0]}); err != nil {
		logAndInternalError(w, r, "failed to render news", "news_id", id, "error", err)
	}
}

// PostingForm renders the publish form.
func (h *NewsHandler) PostingForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "news_posting", render.TemplateData{Title: "Post news"}); err != nil {
		logAndInternalError(w, r, "failed to render posting form", "error", err)
	}
}

// Publish handles POST /api/news-posting-page.
func (h *NewsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.GetUserID(r)
	if authorID == "" {
		writeText(w, http.StatusUnauthorized, service.MsgAuthRequired)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, service.MsgFillInEachPart)
		return
	}

	item, err := h.news.Publish(r.Context(), service.PublishRequest{
		Title:   r.PostFormValue(formTitle),
		Content: r.PostFormValue(formContent),
		URL:     r.PostFormValue(formURL),
	}, authorID)
	if err != nil {
		writeServiceError(w, r, err, "failed to publish news", "user_id", authorID)
		return
	}

	slog.Debug("news item stored", "news_id", item.NewsID)
	flashSuccess(w, r, h.renderer, RouteRoot, flashPublished)
}

// withAuthors attaches display names to items in a single user lookup.
func (h *NewsHandler) withAuthors(r *http.Request, items ...model.NewsItem) ([]NewsView, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Author)
	}
	names, err := h.users.DisplayNames(r.Context(), ids...)
	if err != nil {
		return nil, err
	}

	views := make([]NewsView, 0, len(items))
	for _, it := range items {
		name, ok := names[it.Author]
		if !ok {
			name = unknownAuthor
		}
		views = append(views, NewsView{Item: it, AuthorName: name})
	}
	return views, nil
}
