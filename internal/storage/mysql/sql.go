package mysql

// -----------------------------------------------------------------------------
// USERS & SESSIONS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (id, email, name, image, is_admin, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const getUserByEmailSQL = `
SELECT id, email, name, image, is_admin, password_hash, created_at
FROM users WHERE email = ?
`

const getUserByIDSQL = `
SELECT id, email, name, image, is_admin, password_hash, created_at
FROM users WHERE id = ?
`

const insertSessionSQL = `
INSERT INTO sessions (id, user_id, expires_at, last_seen_at)
VALUES (?, ?, ?, ?)
`

const getSessionSQL = `
SELECT id, user_id, expires_at, last_seen_at FROM sessions WHERE id = ?
`

const touchSessionSQL = `
UPDATE sessions SET expires_at = ?, last_seen_at = ? WHERE id = ?
`

const deleteSessionSQL = `DELETE FROM sessions WHERE id = ?`

const deleteExpiredSessionsSQL = `DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`

// -----------------------------------------------------------------------------
// CONTACT MESSAGES
// -----------------------------------------------------------------------------

const insertContactSQL = `
INSERT INTO contact_messages (name, email, message, received_at)
VALUES (?, ?, ?, ?)
`

const listContactSQL = `
SELECT id, name, email, message, received_at
FROM contact_messages
ORDER BY received_at DESC
LIMIT ?
`

// -----------------------------------------------------------------------------
// ROOM / REVIEW MIRROR (written by the syncer)
// -----------------------------------------------------------------------------

const upsertRoomSQL = `
INSERT INTO rooms (id, slug, name, price, is_booked, raw)
VALUES (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  slug       = VALUES(slug),
  name       = VALUES(name),
  price      = VALUES(price),
  is_booked  = VALUES(is_booked),
  raw        = VALUES(raw),
  updated_at = CURRENT_TIMESTAMP
`

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (id, room_id, author, rating, `text`, created_at)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  author     = COALESCE(VALUES(author), reviews.author),\n" +
	"  rating     = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  `text`     = COALESCE(VALUES(`text`), reviews.`text`),\n" +
	"  created_at = COALESCE(VALUES(created_at), reviews.created_at)\n"

const listRoomSnapshotsSQL = `
SELECT
  r.id,
  r.slug,
  r.name,
  r.price,
  r.is_booked,
  COUNT(v.id) AS review_count,
  r.updated_at
FROM rooms r
LEFT JOIN reviews v ON v.room_id = r.id
GROUP BY r.id, r.slug, r.name, r.price, r.is_booked, r.updated_at
ORDER BY r.name
`

const insertMissSQL = `
INSERT INTO sync_misses (room_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

const listMissesSQL = `
SELECT room_id, http_status, reason, seen_at
FROM sync_misses
ORDER BY seen_at DESC
LIMIT ?
`
