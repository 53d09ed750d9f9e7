package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"hotel_haven/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- users & sessions ----

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL,
		u.ID, u.Email, u.Name, u.Image, u.IsAdmin, u.PasswordHash, u.CreatedAt)
	return err
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

func (r *Repo) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.IsAdmin, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, insertSessionSQL, s.ID, s.UserID, s.ExpiresAt, s.LastSeenAt)
	return err
}

func (r *Repo) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx, getSessionSQL, id).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) TouchSession(ctx context.Context, id string, expiresAt, lastSeenAt time.Time) error {
	_, err := r.db.ExecContext(ctx, touchSessionSQL, expiresAt, lastSeenAt, id)
	return err
}

func (r *Repo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteSessionSQL, id)
	return err
}

func (r *Repo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredSessionsSQL)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- contact messages ----

func (r *Repo) SaveContactMessage(ctx context.Context, m domain.ContactMessage) error {
	at := m.ReceivedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertContactSQL, m.Name, m.Email, m.Message, at)
	return err
}

func (r *Repo) ListContactMessages(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listContactSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ContactMessage
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- room / review mirror ----

func (r *Repo) UpsertRoom(ctx context.Context, room domain.Room) error {
	raw, _ := json.Marshal(room)
	_, err := r.db.ExecContext(ctx, upsertRoomSQL,
		room.ID, room.Slug, room.Name, room.Price, room.IsBooked, string(raw))
	return err
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(insertReviewsPrefix)
	args := make([]any, 0, len(rs)*6)
	for i, rev := range rs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		var created any
		if !rev.CreatedAt.IsZero() {
			created = rev.CreatedAt
		}
		args = append(args, rev.ID, rev.RoomID, nullStr(rev.Author), rev.Rating, nullStr(rev.Text), created)
	}
	sb.WriteString(insertReviewsOnDup)
	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *Repo) ListRoomSnapshots(ctx context.Context) ([]domain.RoomSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, listRoomSnapshotsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RoomSnapshot
	for rows.Next() {
		var s domain.RoomSnapshot
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Price, &s.IsBooked, &s.Reviews, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) LogMiss(ctx context.Context, roomID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, roomID, status, reason)
	return err
}

func (r *Repo) ListMisses(ctx context.Context, limit int) ([]domain.SyncMiss, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listMissesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.SyncMiss
	for rows.Next() {
		var m domain.SyncMiss
		if err := rows.Scan(&m.RoomID, &m.Status, &m.Reason, &m.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
