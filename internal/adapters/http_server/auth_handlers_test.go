package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hotel_haven/internal/domain"
)

// authStore is an in-memory auth.Store.
type authStore struct {
	mu       sync.Mutex
	users    map[string]domain.User
	byEmail  map[string]string
	sessions map[string]domain.Session
}

func newAuthStore() *authStore {
	return &authStore{
		users:    map[string]domain.User{},
		byEmail:  map[string]string{},
		sessions: map[string]domain.Session{},
	}
}

func (m *authStore) CreateUser(ctx context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *authStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	u := m.users[id]
	return &u, nil
}

func (m *authStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *authStore) CreateSession(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *authStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *authStore) TouchSession(ctx context.Context, id string, expiresAt, lastSeenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[id]
	s.ExpiresAt, s.LastSeenAt = expiresAt, lastSeenAt
	m.sessions[id] = s
	return nil
}

func (m *authStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func TestAuthFlow_RegisterLoginMeLogout(t *testing.T) {
	srv := newTestServer(&fakeContent{}, &fakeContacts{})

	// register
	rr := doJSON(t, srv, "POST", "/auth/register", map[string]string{
		"email": "guest@example.com", "name": "Guest", "password": "hunter2hunter2",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status %d: %s", rr.Code, rr.Body.String())
	}

	// duplicate register
	rr = doJSON(t, srv, "POST", "/auth/register", map[string]string{
		"email": "guest@example.com", "name": "Guest", "password": "hunter2hunter2",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register status %d", rr.Code)
	}

	// wrong password
	rr = doJSON(t, srv, "POST", "/auth/login", map[string]string{
		"email": "guest@example.com", "password": "nope",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status %d", rr.Code)
	}

	// login
	rr = doJSON(t, srv, "POST", "/auth/login", map[string]string{
		"email": "guest@example.com", "password": "hunter2hunter2",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	var sess *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			sess = c
		}
	}
	if sess == nil || sess.Value == "" || !sess.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", cookies)
	}

	// me with cookie
	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(sess)
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status %d: %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Success bool        `json:"success"`
		Data    domain.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if !me.Success || me.Data.Email != "guest@example.com" {
		t.Fatalf("unexpected me: %+v", me)
	}

	// me without cookie
	rr = doJSON(t, srv, "GET", "/auth/me", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me status %d", rr.Code)
	}

	// logout invalidates the session
	req = httptest.NewRequest("POST", "/auth/logout", bytes.NewReader(nil))
	req.AddCookie(sess)
	rec = httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(sess)
	rec = httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout status %d", rec.Code)
	}
}

func TestForgedSessionCookieRejected(t *testing.T) {
	srv := newTestServer(&fakeContent{}, &fakeContacts{})

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged-id.deadbeef"})
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged cookie, got %d", rec.Code)
	}
}
