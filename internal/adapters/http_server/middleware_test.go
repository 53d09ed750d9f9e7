package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeoutBodyIsEnvelopeShaped(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	srv := httptest.NewServer(Timeout(20 * time.Millisecond)(slow))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("timeout body is not JSON: %v", err)
	}
	if env.Success || env.Message == "" {
		t.Fatalf("unexpected timeout envelope: %+v", env)
	}
}

func TestHasSessionCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if hasSessionCookie(r) {
		t.Errorf("bare request reported a session")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: ""})
	if hasSessionCookie(r) {
		t.Errorf("empty cookie value reported a session")
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess.sig"})
	if !hasSessionCookie(r) {
		t.Errorf("session cookie not detected")
	}
}
