package app

import (
	"context"
	"fmt"
	"time"

	"hotel_haven/internal/domain"
)

// Cache keys shared with the sync service's invalidation paths.
const (
	keyAllRooms     = "rooms:all"
	keyFeaturedRoom = "rooms:featured"
)

func keyRoom(slug string) string             { return "room:" + slug }
func keyReviewsPrefix(roomID string) string  { return "reviews:" + roomID + ":" }
func keyReviews(roomID string, n int) string { return fmt.Sprintf("%s%d", keyReviewsPrefix(roomID), n) }

// QueryService is the read path: content store behind a read-through
// cache. It never validates entities itself; absence is reported as a
// nil result and errors pass through to the caller.
type QueryService struct {
	content  domain.ContentClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(c domain.ContentClient, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{content: c, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if ok, _ := s.cache.Get(ctx, keyAllRooms, &rooms); ok {
		return rooms, nil
	}
	rooms, err := s.content.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	// copy before caching so callers can't mutate the cached slice
	cp := make([]domain.Room, len(rooms))
	copy(cp, rooms)
	_ = s.cache.Set(ctx, keyAllRooms, cp, int(s.cacheTTL.Seconds()))
	return rooms, nil
}

func (s *QueryService) FeaturedRoom(ctx context.Context) (*domain.Room, error) {
	var r domain.Room
	if ok, _ := s.cache.Get(ctx, keyFeaturedRoom, &r); ok {
		return &r, nil
	}
	room, err := s.content.FeaturedRoom(ctx)
	if err != nil || room == nil {
		return room, err
	}
	_ = s.cache.Set(ctx, keyFeaturedRoom, *room, int(s.cacheTTL.Seconds()))
	return room, nil
}

// RoomBySlug returns (nil, nil) when the store has no such room. Absent
// rooms are never cached.
func (s *QueryService) RoomBySlug(ctx context.Context, slug string) (*domain.Room, error) {
	key := keyRoom(slug)
	var r domain.Room
	if ok, _ := s.cache.Get(ctx, key, &r); ok {
		return &r, nil
	}
	room, err := s.content.RoomBySlug(ctx, slug)
	if err != nil || room == nil {
		return room, err
	}
	_ = s.cache.Set(ctx, key, *room, int(s.cacheTTL.Seconds()))
	return room, nil
}

func (s *QueryService) RoomReviews(ctx context.Context, roomID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 100
	}
	key := keyReviews(roomID, limit)
	var out []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rs, err := s.content.RoomReviews(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	cp := make([]domain.Review, len(rs))
	copy(cp, rs)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return rs, nil
}
