package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"hotel_haven/internal/adapters/observability"
)

const (
	defaultBaseURL = "https://api.stripe.com/v1"

	// apiVersion pins every server-side call; bumping it is a deliberate
	// change, never an ambient upgrade.
	apiVersion = "2023-10-16"

	publishableKeyEnv = "STRIPE_PUBLISHABLE_KEY"
	secretKeyEnv      = "STRIPE_SECRET_KEY"
)

// ErrMissingSecretKey is returned by Server on every call until the
// secret key appears in the environment.
var ErrMissingSecretKey = errors.New("stripe: " + secretKeyEnv + " is not set")

// BrowserConfig is the client-side handle: just the publishable key,
// exposed to rendered pages. It carries no secret.
type BrowserConfig struct {
	PublishableKey string
}

var (
	browserOnce sync.Once
	browserCfg  *BrowserConfig
)

// Browser lazily constructs the client-side handle once per process and
// returns the same instance on every subsequent call.
func Browser() *BrowserConfig {
	browserOnce.Do(func() {
		browserCfg = &BrowserConfig{PublishableKey: os.Getenv(publishableKeyEnv)}
	})
	return browserCfg
}

// Client is the server-side handle, bound to the pinned API version.
type Client struct {
	base string
	key  string
	hc   *http.Client
}

// Server checks the secret key on every invocation and returns a fresh
// handle. Route-handler context only; never share or serialize it.
func Server() (*Client, error) {
	key := os.Getenv(secretKeyEnv)
	if key == "" {
		return nil, ErrMissingSecretKey
	}
	return &Client{
		base: defaultBaseURL,
		key:  key,
		hc:   &http.Client{Timeout: 20 * time.Second},
	}, nil
}

type PaymentIntentParams struct {
	Amount      int64 // smallest currency unit
	Currency    string
	Description string
	Metadata    map[string]string
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(p.Amount, 10))
	form.Set("currency", p.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if p.Description != "" {
		form.Set("description", p.Description)
	}
	for k, v := range p.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Stripe-Version", apiVersion)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("stripe", "payment_intents", resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s", ae.Error.Message)
		}
		return nil, fmt.Errorf("stripe: bad status %d", resp.StatusCode)
	}
	var pi PaymentIntent
	if err := json.Unmarshal(body, &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}
