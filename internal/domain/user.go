package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Image        *string   `json:"image,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session lifecycle is owned by the auth service; handlers only read it.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	// LastSeenAt is the last time the session was revalidated; expiry is
	// only extended when enough time has passed since this point.
	LastSeenAt time.Time
}

type ContactMessage struct {
	ID         int64
	Name       string
	Email      string
	Message    string
	ReceivedAt time.Time
}
