package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotel_haven/internal/fetch"
)

func TestThunk_ReturnsResolvedValue(t *testing.T) {
	f := fetch.New()
	got, err := f.Do(context.Background(), fetch.Thunk{
		Name: "featured",
		Fn:   func(ctx context.Context) (any, error) { return "sea-breeze", nil },
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != "sea-breeze" {
		t.Fatalf("expected thunk value passed through, got %v", got)
	}
}

func TestURL_GetAndErrorOnNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer ts.Close()

	f := fetch.New(fetch.WithRetry(0, 0))

	got, err := f.Do(context.Background(), fetch.URL(ts.URL+"/ok"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok || m["success"] != true {
		t.Fatalf("unexpected body: %v", got)
	}

	if _, err := f.Do(context.Background(), fetch.URL(ts.URL+"/nope")); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestDedup_WithinWindow(t *testing.T) {
	var calls int32
	f := fetch.New(fetch.WithDedupWindow(time.Minute))
	k := fetch.Thunk{
		Name: "rooms",
		Fn: func(ctx context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			return []string{"a", "b"}, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Do(context.Background(), k); err != nil {
				t.Errorf("err: %v", err)
			}
		}()
	}
	wg.Wait()

	// sequential call inside the window must also reuse the result
	if _, err := f.Do(context.Background(), k); err != nil {
		t.Fatalf("err: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 underlying call, got %d", n)
	}
}

func TestRetry_BoundedWithFixedDelay(t *testing.T) {
	var calls int32
	f := fetch.New(fetch.WithRetry(3, time.Millisecond), fetch.WithDedupWindow(0))
	boom := errors.New("boom")
	_, err := f.Do(context.Background(), fetch.Thunk{
		Name: "always-fails",
		Fn: func(ctx context.Context) (any, error) {
			atomic.AddInt32(&calls, 1)
			return nil, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 4 {
		t.Fatalf("expected initial call + 3 retries, got %d", n)
	}
}

func TestErrors_NotCached(t *testing.T) {
	var calls int32
	f := fetch.New(fetch.WithRetry(0, 0), fetch.WithDedupWindow(time.Minute))
	k := fetch.Thunk{
		Name: "flaky",
		Fn: func(ctx context.Context) (any, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		},
	}
	if _, err := f.Do(context.Background(), k); err == nil {
		t.Fatalf("expected first call to fail")
	}
	got, err := f.Do(context.Background(), k)
	if err != nil || got != "ok" {
		t.Fatalf("expected second call to succeed, got %v %v", got, err)
	}
}
