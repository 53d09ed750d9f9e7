// Package web is the server-rendered page tree: public marketing pages
// composed from the query service, plus the SEO/static surface.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_haven/internal/adapters/stripe"
	"hotel_haven/internal/app"
	"hotel_haven/internal/domain"
	"hotel_haven/internal/fetch"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// pages that render inside the layout
var pageFiles = []string{
	"home", "rooms", "room", "contact", "login", "register",
	"user", "admin", "offline", "notfound",
}

// AdminStore backs the admin dashboard (mirrored rooms, sync misses,
// contact inbox) and the user-detail page.
type AdminStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListRoomSnapshots(ctx context.Context) ([]domain.RoomSnapshot, error)
	ListMisses(ctx context.Context, limit int) ([]domain.SyncMiss, error)
	ListContactMessages(ctx context.Context, limit int) ([]domain.ContactMessage, error)
}

type Handlers struct {
	Q       *app.QueryService
	F       *fetch.Fetcher
	Store   AdminStore
	BaseURL string

	// User resolves the request's session, wired from the auth layer.
	User func(r *http.Request) *domain.User

	pages map[string]*template.Template
}

func New(q *app.QueryService, f *fetch.Fetcher, store AdminStore, baseURL string, user func(r *http.Request) *domain.User) (*Handlers, error) {
	h := &Handlers{Q: q, F: f, Store: store, BaseURL: strings.TrimRight(baseURL, "/"), User: user}
	h.pages = make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		t, err := template.ParseFS(templatesFS, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

func (h *Handlers) Mount(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/rooms", h.rooms)
	r.Get("/rooms/{slug}", h.roomDetail)
	r.Get("/contact", h.contactPage)
	r.Get("/login", h.loginPage)
	r.Get("/register", h.registerPage)
	r.Get("/users/{id}", h.userDetail)
	r.Get("/admin", h.admin)
	r.Get("/offline", h.offline)
	r.Get("/robots.txt", h.robots)
	r.Get("/sitemap.xml", h.sitemap)
	r.NotFound(h.notFound)
}

// ---- metadata ----

// Meta is the per-route title/description pair. It is derived from the
// resolved route parameter alone, independent of the body render, so it
// can be emitted before or without content.
type Meta struct {
	Title       string
	Description string
}

func metaFor(route, param string) Meta {
	switch route {
	case "home":
		return Meta{"Hotel Haven", "Boutique rooms, honest prices. Book your stay at Hotel Haven."}
	case "rooms":
		return Meta{"Rooms — Hotel Haven", "Browse every room at Hotel Haven."}
	case "room":
		name := humanize(param)
		return Meta{name + " — Hotel Haven", "Details, amenities and reviews for " + name + "."}
	case "contact":
		return Meta{"Contact — Hotel Haven", "Get in touch with the Hotel Haven team."}
	case "login":
		return Meta{"Sign in — Hotel Haven", "Sign in to your Hotel Haven account."}
	case "register":
		return Meta{"Create account — Hotel Haven", "Create a Hotel Haven account."}
	case "user":
		return Meta{"Your profile — Hotel Haven", "Account details and activity."}
	case "admin":
		return Meta{"Admin — Hotel Haven", "Operations dashboard."}
	case "offline":
		return Meta{"Offline — Hotel Haven", "You appear to be offline."}
	default:
		return Meta{"Not found — Hotel Haven", "The page you requested does not exist."}
	}
}

func humanize(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	if len(words) == 0 {
		return slug
	}
	return strings.Join(words, " ")
}

// ---- rendering ----

type pageData struct {
	Meta      Meta
	User      *domain.User
	StripeKey string
	Data      any
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, meta Meta, data any) {
	t, ok := h.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	pd := pageData{Meta: meta, StripeKey: stripe.Browser().PublishableKey, Data: data}
	if h.User != nil {
		pd.User = h.User(r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", pd); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render failed")
	}
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notfound", metaFor("notfound", ""), nil)
}

// ---- data fetching ----

// Page reads go through the shared fetcher: identical reads from
// concurrent page renders collapse into one query-service call, and
// transient failures are retried before the page degrades.

func (h *Handlers) fetchRooms(ctx context.Context) ([]domain.Room, error) {
	v, err := h.F.Do(ctx, fetch.Thunk{Name: "rooms:list", Fn: func(ctx context.Context) (any, error) {
		return h.Q.ListRooms(ctx)
	}})
	if err != nil || v == nil {
		return nil, err
	}
	rooms, _ := v.([]domain.Room)
	return rooms, nil
}

func (h *Handlers) fetchFeatured(ctx context.Context) (*domain.Room, error) {
	v, err := h.F.Do(ctx, fetch.Thunk{Name: "rooms:featured", Fn: func(ctx context.Context) (any, error) {
		return h.Q.FeaturedRoom(ctx)
	}})
	if err != nil || v == nil {
		return nil, err
	}
	room, _ := v.(*domain.Room)
	return room, nil
}

func (h *Handlers) fetchRoom(ctx context.Context, slug string) (*domain.Room, error) {
	v, err := h.F.Do(ctx, fetch.Thunk{Name: "room:" + slug, Fn: func(ctx context.Context) (any, error) {
		return h.Q.RoomBySlug(ctx, slug)
	}})
	if err != nil || v == nil {
		return nil, err
	}
	room, _ := v.(*domain.Room)
	return room, nil
}

func (h *Handlers) fetchReviews(ctx context.Context, roomID string) ([]domain.Review, error) {
	v, err := h.F.Do(ctx, fetch.Thunk{Name: "reviews:" + roomID, Fn: func(ctx context.Context) (any, error) {
		return h.Q.RoomReviews(ctx, roomID, 100)
	}})
	if err != nil || v == nil {
		return nil, err
	}
	revs, _ := v.([]domain.Review)
	return revs, nil
}

// ---- pages ----

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	meta := metaFor("home", "")
	featured, err := h.fetchFeatured(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("featured room unavailable")
		featured = nil // the page renders without the hero block
	}
	h.render(w, r, http.StatusOK, "home", meta, featured)
}

func (h *Handlers) rooms(w http.ResponseWriter, r *http.Request) {
	meta := metaFor("rooms", "")
	rooms, err := h.fetchRooms(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list rooms failed")
		rooms = nil
	}
	h.render(w, r, http.StatusOK, "rooms", meta, rooms)
}

func (h *Handlers) roomDetail(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		h.notFound(w, r)
		return
	}
	meta := metaFor("room", slug)
	room, err := h.fetchRoom(r.Context(), slug)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("room fetch failed")
		h.notFound(w, r)
		return
	}
	if room == nil {
		h.notFound(w, r)
		return
	}
	reviews, err := h.fetchReviews(r.Context(), room.ID)
	if err != nil {
		log.Warn().Err(err).Str("room", room.ID).Msg("reviews unavailable")
	}
	h.render(w, r, http.StatusOK, "room", meta, struct {
		Room    *domain.Room
		Reviews []domain.Review
	}{room, reviews})
}

func (h *Handlers) contactPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contact", metaFor("contact", ""), nil)
}

func (h *Handlers) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", metaFor("login", ""), nil)
}

func (h *Handlers) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", metaFor("register", ""), nil)
}

func (h *Handlers) userDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.notFound(w, r)
		return
	}
	viewer := (*domain.User)(nil)
	if h.User != nil {
		viewer = h.User(r)
	}
	// only the owner or an admin sees a profile; everyone else gets the
	// same terminal page as a missing user
	if viewer == nil || (viewer.ID != id && !viewer.IsAdmin) {
		h.notFound(w, r)
		return
	}
	u, err := h.Store.GetUserByID(r.Context(), id)
	if err != nil || u == nil {
		h.notFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "user", metaFor("user", id), u)
}

func (h *Handlers) admin(w http.ResponseWriter, r *http.Request) {
	viewer := (*domain.User)(nil)
	if h.User != nil {
		viewer = h.User(r)
	}
	if viewer == nil || !viewer.IsAdmin {
		h.notFound(w, r)
		return
	}
	ctx := r.Context()
	snaps, err := h.Store.ListRoomSnapshots(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list room snapshots failed")
	}
	misses, err := h.Store.ListMisses(ctx, 50)
	if err != nil {
		log.Error().Err(err).Msg("list misses failed")
	}
	msgs, err := h.Store.ListContactMessages(ctx, 50)
	if err != nil {
		log.Error().Err(err).Msg("list contact messages failed")
	}
	h.render(w, r, http.StatusOK, "admin", metaFor("admin", ""), struct {
		Rooms    []domain.RoomSnapshot
		Misses   []domain.SyncMiss
		Messages []domain.ContactMessage
	}{snaps, misses, msgs})
}

func (h *Handlers) offline(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "offline", metaFor("offline", ""), nil)
}

// ---- SEO surface ----

func (h *Handlers) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, `User-agent: *
Disallow: /api/
Disallow: /admin/
Disallow: /private/
Disallow: /users/
Disallow: /_assets/

Sitemap: %s/sitemap.xml
`, h.BaseURL)
}

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range []string{"/", "/rooms", "/contact"} {
		sb.WriteString("  <url><loc>" + h.BaseURL + p + "</loc></url>\n")
	}
	if rooms, err := h.fetchRooms(r.Context()); err == nil {
		for _, room := range rooms {
			// slugs are URL-safe by contract
			sb.WriteString("  <url><loc>" + h.BaseURL + "/rooms/" + room.Slug + "</loc></url>\n")
		}
	} else {
		log.Warn().Err(err).Msg("sitemap rendered without room URLs")
	}
	sb.WriteString("</urlset>\n")
	_, _ = w.Write([]byte(sb.String()))
}
