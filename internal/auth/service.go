package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hotel_haven/internal/adapters/observability"
	"hotel_haven/internal/domain"
)

var (
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)

// touchEvery is the session revalidation interval: expiry is only
// extended when at least this much time passed since the last touch.
const touchEvery = 5 * time.Minute

// Store is the subset of the storage layer the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	TouchSession(ctx context.Context, id string, expiresAt, lastSeenAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
}

type Service struct {
	store  Store
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewService(store Store, secret string, maxAge time.Duration) *Service {
	return &Service{store: store, secret: []byte(secret), maxAge: maxAge, now: time.Now}
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || name == "" || len(password) < 8 {
		return nil, errors.New("auth: email, name and a password of at least 8 characters are required")
	}
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	now := s.now()
	sess := domain.Session{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		ExpiresAt:  now.Add(s.maxAge),
		LastSeenAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, err
	}
	observability.ObserveSession("create")
	return &sess, u, nil
}

// Validate resolves a session id to its user. It returns (nil, nil) for
// missing or expired sessions; expired sessions are deleted on the way
// out. A live session is touched (expiry extended) only when touchEvery
// has elapsed since the previous touch.
func (s *Service) Validate(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	now := s.now()
	if now.After(sess.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, sessionID)
		observability.ObserveSession("expire")
		return nil, nil
	}
	if now.Sub(sess.LastSeenAt) >= touchEvery {
		if err := s.store.TouchSession(ctx, sessionID, now.Add(s.maxAge), now); err == nil {
			observability.ObserveSession("touch")
		}
	}
	return s.store.GetUserByID(ctx, sess.UserID)
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	observability.ObserveSession("logout")
	return nil
}

// ---- cookie signing ----

// SignCookie wraps a session id with an HMAC so a forged cookie never
// reaches the store. With an empty secret the bare id is used.
func (s *Service) SignCookie(sessionID string) string {
	if len(s.secret) == 0 {
		return sessionID
	}
	return sessionID + "." + s.mac(sessionID)
}

// ParseCookie reverses SignCookie; the second return is false when the
// signature does not verify.
func (s *Service) ParseCookie(v string) (string, bool) {
	if len(s.secret) == 0 {
		return v, v != ""
	}
	id, sig, ok := strings.Cut(v, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(id))) {
		return "", false
	}
	return id, true
}

func (s *Service) mac(id string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(id))
	return hex.EncodeToString(m.Sum(nil))
}
