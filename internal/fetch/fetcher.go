// Package fetch is the shared client-side data-fetching layer: one
// fetcher, one de-duplication window, one retry policy for every
// consumer. Keys are either a raw URL to GET or a named thunk invoking
// a pre-built query.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies one fetchable resource.
type Key interface {
	cacheKey() string
	run(ctx context.Context, hc *http.Client) (any, error)
}

// URL performs an HTTP GET and fails on any non-2xx status.
type URL string

func (u URL) cacheKey() string { return "url:" + string(u) }

func (u URL) run(ctx context.Context, hc *http.Client) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(u), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: unexpected status %d for %s", resp.StatusCode, string(u))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Thunk invokes a pre-built query directly and returns its result.
// Name is the de-duplication identity; callers with the same Name share
// one in-flight call and one cached result.
type Thunk struct {
	Name string
	Fn   func(ctx context.Context) (any, error)
}

func (t Thunk) cacheKey() string { return "thunk:" + t.Name }

func (t Thunk) run(ctx context.Context, _ *http.Client) (any, error) { return t.Fn(ctx) }

type entry struct {
	v  any
	at time.Time
}

// Fetcher de-duplicates identical keys within a fixed window and retries
// failures a bounded number of times at fixed spacing. Errors are never
// cached; only successful results live in the window.
type Fetcher struct {
	hc      *http.Client
	group   singleflight.Group
	mu      sync.Mutex
	recent  map[string]entry
	window  time.Duration
	retries int
	delay   time.Duration
}

type Option func(*Fetcher)

func WithHTTPClient(hc *http.Client) Option { return func(f *Fetcher) { f.hc = hc } }

func WithDedupWindow(d time.Duration) Option { return func(f *Fetcher) { f.window = d } }

func WithRetry(n int, delay time.Duration) Option {
	return func(f *Fetcher) { f.retries, f.delay = n, delay }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		hc:      &http.Client{Timeout: 15 * time.Second},
		recent:  map[string]entry{},
		window:  2000 * time.Millisecond,
		retries: 3,
		delay:   1000 * time.Millisecond,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *Fetcher) Do(ctx context.Context, k Key) (any, error) {
	key := k.cacheKey()

	f.mu.Lock()
	if e, ok := f.recent[key]; ok {
		if time.Since(e.at) < f.window {
			f.mu.Unlock()
			return e.v, nil
		}
		delete(f.recent, key)
	}
	f.mu.Unlock()

	v, err, _ := f.group.Do(key, func() (any, error) {
		var lastErr error
		for i := 0; i <= f.retries; i++ {
			v, err := k.run(ctx, f.hc)
			if err == nil {
				f.store(key, v)
				return v, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if i < f.retries && !sleepCtx(ctx, f.delay) {
				return nil, ctx.Err()
			}
		}
		return nil, lastErr
	})
	return v, err
}

func (f *Fetcher) store(key string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// lazy sweep keeps the map bounded without a background goroutine
	for k, e := range f.recent {
		if time.Since(e.at) >= f.window {
			delete(f.recent, k)
		}
	}
	f.recent[key] = entry{v: v, at: time.Now()}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
