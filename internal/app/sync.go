package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel_haven/internal/domain"
)

// SyncStore is the slice of the storage layer the syncer writes to.
type SyncStore interface {
	UpsertRoom(ctx context.Context, r domain.Room) error
	UpsertReviews(ctx context.Context, rs []domain.Review) error
	LogMiss(ctx context.Context, roomID string, status int, reason string) error
}

// SyncService mirrors rooms and their reviews from the content store
// into MySQL and keeps the redis cache from serving stale snapshots.
type SyncService struct {
	content domain.ContentClient
	store   SyncStore
	cache   domain.Cache
}

func NewSyncService(c domain.ContentClient, st SyncStore, cache domain.Cache) *SyncService {
	return &SyncService{content: c, store: st, cache: cache}
}

// ListRooms exposes the store's room catalog so the caller can fan the
// per-room work out over a worker pool.
func (s *SyncService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.content.ListRooms(ctx)
}

// SyncRoom mirrors one room and its reviews. Known 404/401/403 outcomes
// on the review fetch are recorded as misses and do not fail the sync;
// anything else bubbles up.
func (s *SyncService) SyncRoom(ctx context.Context, room domain.Room, reviewCount int) error {
	if err := s.store.UpsertRoom(ctx, room); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, keyRoom(room.Slug))
	}

	revs, err := s.content.RoomReviews(ctx, room.ID, reviewCount)
	if err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found"):
			_ = s.store.LogMiss(ctx, room.ID, 404, "reviews")
			s.invalidateReviews(ctx, room.ID)
			return nil
		case strings.Contains(low, "unauthorized") || strings.Contains(low, "forbidden"):
			_ = s.store.LogMiss(ctx, room.ID, 403, "reviews")
			s.invalidateReviews(ctx, room.ID)
			return nil
		default:
			return err
		}
	}

	if len(revs) > 0 {
		if err := s.store.UpsertReviews(ctx, revs); err != nil {
			return fmt.Errorf("upsert reviews failed for %s: %w", room.ID, err)
		}
	}
	// success: even an empty list invalidates, so stale entries drop out
	s.invalidateReviews(ctx, room.ID)
	return nil
}

// InvalidateCatalog drops the list-level cache entries after a full run.
func (s *SyncService) InvalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, keyAllRooms)
	_ = s.cache.Del(ctx, keyFeaturedRoom)
}

func (s *SyncService) invalidateReviews(ctx context.Context, roomID string) {
	if s.cache == nil {
		return
	}
	// review lists are cached per limit; clear them all in one sweep
	_ = s.cache.DelPrefix(ctx, keyReviewsPrefix(roomID))
}
