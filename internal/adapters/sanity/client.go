package sanity

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_haven/internal/adapters/observability"
	"hotel_haven/internal/domain"
)

// Client queries the content store's HTTP query API (GROQ over GET).
// Results are pass-through: the store owns the schema, we only decode.
type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

// Endpoint builds the query URL for a project/dataset pair.
func Endpoint(project, dataset string) string {
	return fmt.Sprintf("https://%s.apicdn.sanity.io/v2022-06-30/data/query/%s", project, dataset)
}

func New(base, token string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("content store endpoint is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:  base,
		hc:    &http.Client{Timeout: 20 * time.Second},
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- GROQ queries ----

const roomFields = `{
  _id,
  "slug": slug.current,
  name,
  description,
  specialNote,
  type,
  price,
  discount,
  numberOfBeds,
  dimension,
  "coverImage": coverImage.url,
  "images": images[].url,
  "offeredAmenities": offeredAmenities[].amenity,
  isFeatured,
  isBooked
}`

const (
	allRoomsGROQ     = `*[_type == "hotelRoom"] | order(name asc) ` + roomFields
	featuredRoomGROQ = `*[_type == "hotelRoom" && isFeatured == true][0] ` + roomFields
	roomBySlugGROQ   = `*[_type == "hotelRoom" && slug.current == $slug][0] ` + roomFields
	roomReviewsGROQ  = `*[_type == "review" && hotelRoom._ref == $roomId] | order(_createdAt desc)[0...$limit] {
  _id,
  "roomId": hotelRoom._ref,
  "author": user->name,
  rating,
  text,
  _createdAt
}`
)

// ---- Public API ----

func (c *Client) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var out []domain.Room
	return out, c.query(ctx, "rooms", allRoomsGROQ, nil, &out)
}

func (c *Client) FeaturedRoom(ctx context.Context) (*domain.Room, error) {
	var out *domain.Room
	return out, c.query(ctx, "featured_room", featuredRoomGROQ, nil, &out)
}

// RoomBySlug returns (nil, nil) when the store has no room for the slug.
func (c *Client) RoomBySlug(ctx context.Context, slug string) (*domain.Room, error) {
	var out *domain.Room
	return out, c.query(ctx, "room_by_slug", roomBySlugGROQ, map[string]any{"slug": slug}, &out)
}

func (c *Client) RoomReviews(ctx context.Context, roomID string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Review
	return out, c.query(ctx, "room_reviews", roomReviewsGROQ, map[string]any{"roomId": roomID, "limit": limit}, &out)
}

// ---- Internals ----

var (
	ErrNotFound     = domain.ErrNotFound
	ErrUnauthorized = errors.New("sanity: unauthorized")
	ErrForbidden    = errors.New("sanity: forbidden")
)

func (c *Client) queryURL(groq string, params map[string]any) string {
	q := url.Values{}
	q.Set("query", groq)
	for k, v := range params {
		// parameters are JSON-encoded per the query API contract
		b, _ := json.Marshal(v)
		q.Set("$"+k, string(b))
	}
	return c.base + "?" + q.Encode()
}

// query performs a GET with client-side rate limiting and retries, then
// decodes the envelope's result field into out. A null result leaves out
// at its zero value.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) query(ctx context.Context, endpoint, groq string, params map[string]any, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	u := c.queryURL(groq, params)

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-haven/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("sanity", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var env struct {
				Result json.RawMessage `json:"result"`
			}
			err := json.NewDecoder(resp.Body).Decode(&env)
			resp.Body.Close()
			if err != nil {
				return err
			}
			if len(env.Result) == 0 || string(env.Result) == "null" {
				return nil
			}
			return json.Unmarshal(env.Result, out)

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
