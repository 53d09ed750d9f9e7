package sanity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hotel_haven/internal/adapters/sanity"
)

func TestClient_RoomBySlug_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{"_id": "room.1", "slug": "sea-breeze", "name": "Sea Breeze", "price": 180.0},
			})
		}
	}))
	defer ts.Close()

	cl, err := sanity.New(ts.URL, "test-token", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.RoomBySlug(ctx, "sea-breeze")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || got.Slug != "sea-breeze" || got.Price != 180 {
		t.Fatalf("unexpected room: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_RoomBySlug_NullResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"result": null}`))
	}))
	defer ts.Close()

	cl, err := sanity.New(ts.URL, "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, err := cl.RoomBySlug(context.Background(), "no-such-room")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil room for null result, got %+v", got)
	}
}

func TestClient_ListRooms_PassesQueryParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			t.Errorf("missing query parameter")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		_, _ = w.Write([]byte(`{"result": [{"_id":"a","slug":"a","name":"A","price":1},{"_id":"b","slug":"b","name":"B","price":2}]}`))
	}))
	defer ts.Close()

	cl, _ := sanity.New(ts.URL, "tok", 100)
	rooms, err := cl.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rooms) != 2 || rooms[1].Slug != "b" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
}

func TestClient_NotFoundStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, _ := sanity.New(ts.URL, "", 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.RoomReviews(ctx, "room.1", 10)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
}
