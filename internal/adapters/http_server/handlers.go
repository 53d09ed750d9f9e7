package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_haven/internal/app"
	"hotel_haven/internal/auth"
	"hotel_haven/internal/domain"
)

// fallbackErrMsg stands in when a failure carries no message of its own.
const fallbackErrMsg = "An unexpected error occurred"

// ContactStore is the slice of storage the contact route writes to.
type ContactStore interface {
	SaveContactMessage(ctx context.Context, m domain.ContactMessage) error
}

type Handlers struct {
	Q    *app.QueryService
	Auth *auth.Service

	Contacts      ContactStore
	SessionMaxAge time.Duration
	CookieSecure  bool
}

// envelope is the JSON wrapper shared by most API routes. The
// room-reviews route deliberately bypasses it (raw list on success,
// plain text on error) to match the public contract as shipped.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/api/rooms", h.listRooms)
	s.mux.Get("/api/room/{slug}", h.getRoom)
	s.mux.Get("/api/room-reviews/{id}", h.roomReviews)
	s.mux.Post("/api/payment-intent", h.createPaymentIntent)
	s.mux.Post("/api/contact", h.contact)

	s.mux.Post("/auth/register", h.register)
	s.mux.Post("/auth/login", h.login)
	s.mux.Post("/auth/logout", h.logout)
	s.mux.Get("/auth/me", h.me)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeServerError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, http.StatusInternalServerError,
		envelope{Success: false, Message: message, Error: errText(err)})
}

// errText extracts a human-readable message from a failure, defensively
// falling back when the error carries none.
func errText(err error) string {
	if err == nil {
		return fallbackErrMsg
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallbackErrMsg
}

// ---- API routes ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Q.ListRooms(r.Context())
	if err != nil {
		writeServerError(w, "Failed to fetch rooms", err)
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	n := len(rooms)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: rooms, Count: &n})
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		writeFailure(w, http.StatusBadRequest, "Slug is required")
		return
	}
	room, err := h.Q.RoomBySlug(r.Context(), slug)
	if err != nil {
		writeServerError(w, "Failed to fetch room", err)
		return
	}
	if room == nil {
		writeFailure(w, http.StatusNotFound, "Room not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: room})
}

// roomReviews keeps the legacy response shape: the raw review list on
// success and a plain-text error on failure, unlike its sibling routes.
func (h *Handlers) roomReviews(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeFailure(w, http.StatusBadRequest, "Room id is required")
		return
	}
	reviews, err := h.Q.RoomReviews(r.Context(), id, 100)
	if err != nil {
		http.Error(w, errText(err), http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) contact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		writeFailure(w, http.StatusBadRequest, "Name, email and message are required")
		return
	}
	if err := h.Contacts.SaveContactMessage(r.Context(), domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}); err != nil {
		writeServerError(w, "Failed to save message", err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true})
}
