package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"hotel_haven/internal/auth"
	"hotel_haven/internal/domain"
)

const sessionCookieName = "hh_session"

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := h.Auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeFailure(w, http.StatusConflict, "Email already registered")
			return
		}
		writeFailure(w, http.StatusBadRequest, errText(err))
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: u})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sess, u, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeServerError(w, "Login failed", err)
		return
	}
	h.setSessionCookie(w, h.Auth.SignCookie(sess.ID), int(h.SessionMaxAge.Seconds()))
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: u})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if id, ok := h.Auth.ParseCookie(c.Value); ok {
			_ = h.Auth.Logout(r.Context(), id)
		}
	}
	h.setSessionCookie(w, "", -1)
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u := h.CurrentUser(r)
	if u == nil {
		writeFailure(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: u})
}

// CurrentUser resolves the session cookie to a user, or nil. Shared with
// the page tree, which renders both states.
func (h *Handlers) CurrentUser(r *http.Request) *domain.User {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	id, ok := h.Auth.ParseCookie(c.Value)
	if !ok {
		return nil
	}
	u, err := h.Auth.Validate(r.Context(), id)
	if err != nil {
		return nil
	}
	return u
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
