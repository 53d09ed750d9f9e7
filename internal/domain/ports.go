package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is the one not-found sentinel shared by the content client
// and the storage layer.
var ErrNotFound = errors.New("not found")

// ContentClient issues typed queries against the external content store.
// A nil Room with a nil error means the store returned nothing.
type ContentClient interface {
	ListRooms(ctx context.Context) ([]Room, error)
	FeaturedRoom(ctx context.Context) (*Room, error)
	RoomBySlug(ctx context.Context, slug string) (*Room, error)
	RoomReviews(ctx context.Context, roomID string, limit int) ([]Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// DelPrefix removes every key under the prefix, for invalidating
	// families of keys (per-room review lists at arbitrary limits).
	DelPrefix(ctx context.Context, prefix string) error
}

// Store is the MySQL-backed side of the service: users, sessions, contact
// messages and the mirrored room/review snapshot written by the syncer.
type Store interface {
	// Users & sessions
	CreateUser(ctx context.Context, u User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	TouchSession(ctx context.Context, id string, expiresAt, lastSeenAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Contact form
	SaveContactMessage(ctx context.Context, m ContactMessage) error
	ListContactMessages(ctx context.Context, limit int) ([]ContactMessage, error)

	// Mirror written by the syncer
	UpsertRoom(ctx context.Context, r Room) error
	UpsertReviews(ctx context.Context, rs []Review) error
	ListRoomSnapshots(ctx context.Context) ([]RoomSnapshot, error)
	LogMiss(ctx context.Context, roomID string, status int, reason string) error
	ListMisses(ctx context.Context, limit int) ([]SyncMiss, error)
}

// RoomSnapshot is the mirrored row served on the admin dashboard.
type RoomSnapshot struct {
	ID        string
	Slug      string
	Name      string
	Price     float64
	IsBooked  bool
	Reviews   int
	UpdatedAt time.Time
}

type SyncMiss struct {
	RoomID string
	Status int
	Reason string
	SeenAt time.Time
}
