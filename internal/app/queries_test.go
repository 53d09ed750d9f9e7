package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hotel_haven/internal/app"
	"hotel_haven/internal/domain"
)

// ---- fakes ----

type fakeContent struct {
	rooms    []domain.Room
	featured *domain.Room
	bySlug   map[string]*domain.Room
	reviews  []domain.Review
	err      error
	calls    int
}

func (f *fakeContent) ListRooms(ctx context.Context) ([]domain.Room, error) {
	f.calls++
	return f.rooms, f.err
}
func (f *fakeContent) FeaturedRoom(ctx context.Context) (*domain.Room, error) {
	f.calls++
	return f.featured, f.err
}
func (f *fakeContent) RoomBySlug(ctx context.Context, slug string) (*domain.Room, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.bySlug[slug], nil
}
func (f *fakeContent) RoomReviews(ctx context.Context, roomID string, limit int) ([]domain.Review, error) {
	f.calls++
	return f.reviews, f.err
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Room:
		*d = v.([]domain.Room)
	case *domain.Room:
		*d = v.(domain.Room)
	case *[]domain.Review:
		*d = v.([]domain.Review)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}
func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) error {
	c.dels = append(c.dels, prefix+"*")
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

// ---- tests ----

func TestRoomBySlug_CacheMissThenHit(t *testing.T) {
	room := &domain.Room{ID: "r1", Slug: "sea-breeze", Name: "Sea Breeze", Price: 180}
	content := &fakeContent{bySlug: map[string]*domain.Room{"sea-breeze": room}}
	cache := &fakeCache{}
	q := app.NewQueryService(content, cache, 10*time.Minute)

	got, err := q.RoomBySlug(context.Background(), "sea-breeze")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got == nil || got.Name != "Sea Breeze" {
		t.Fatalf("unexpected room: %+v", got)
	}

	// Mutate upstream to prove the second read is served from cache
	room.Name = "SHOULD NOT SEE THIS"

	got2, err := q.RoomBySlug(context.Background(), "sea-breeze")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got2.Name != "Sea Breeze" {
		t.Fatalf("expected cached name, got %s", got2.Name)
	}
	if content.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", content.calls)
	}
}

func TestRoomBySlug_AbsentNotCached(t *testing.T) {
	content := &fakeContent{bySlug: map[string]*domain.Room{}}
	cache := &fakeCache{}
	q := app.NewQueryService(content, cache, 10*time.Minute)

	got, err := q.RoomBySlug(context.Background(), "ghost")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for absent room; got %+v, %v", got, err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("absent rooms must not be cached: %v", cache.store)
	}
}

func TestListRooms_ErrorPassesThrough(t *testing.T) {
	boom := errors.New("store down")
	q := app.NewQueryService(&fakeContent{err: boom}, &fakeCache{}, time.Minute)
	if _, err := q.ListRooms(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected pass-through error, got %v", err)
	}
}

func TestRoomReviews_Cache(t *testing.T) {
	content := &fakeContent{reviews: []domain.Review{
		{ID: "rev1", RoomID: "r1", Author: "Ana", Rating: 4.5},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(content, cache, 10*time.Minute)

	out, err := q.RoomReviews(context.Background(), "r1", 100)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].Author != "Ana" {
		t.Fatalf("unexpected reviews: %+v", out)
	}

	content.reviews[0].Author = "Changed"
	out2, _ := q.RoomReviews(context.Background(), "r1", 100)
	if out2[0].Author != "Ana" {
		t.Fatalf("expected cached author Ana, got %s", out2[0].Author)
	}
}
