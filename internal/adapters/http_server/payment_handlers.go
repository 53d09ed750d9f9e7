package httpserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"hotel_haven/internal/adapters/stripe"
)

type paymentClient interface {
	CreatePaymentIntent(ctx context.Context, p stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// newPaymentClient indirects the server-handle accessor for tests. The
// accessor is called per request; its configuration check must run on
// every invocation.
var newPaymentClient = func() (paymentClient, error) { return stripe.Server() }

func (h *Handlers) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomSlug string `json:"roomSlug"`
		Nights   int    `json:"nights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RoomSlug) == "" {
		writeFailure(w, http.StatusBadRequest, "Slug is required")
		return
	}
	if req.Nights < 1 {
		writeFailure(w, http.StatusBadRequest, "Nights must be at least 1")
		return
	}

	room, err := h.Q.RoomBySlug(r.Context(), req.RoomSlug)
	if err != nil {
		writeServerError(w, "Failed to fetch room", err)
		return
	}
	if room == nil {
		writeFailure(w, http.StatusNotFound, "Room not found")
		return
	}

	client, err := newPaymentClient()
	if err != nil {
		// configuration error: secret missing from the environment
		writeServerError(w, "Payment configuration error", err)
		return
	}

	price := room.Price
	if room.Discount > 0 {
		price = price * (100 - room.Discount) / 100
	}
	amount := int64(math.Round(price * float64(req.Nights) * 100))

	meta := map[string]string{"roomSlug": room.Slug}
	if u := h.CurrentUser(r); u != nil {
		meta["userId"] = u.ID
	}
	pi, err := client.CreatePaymentIntent(r.Context(), stripe.PaymentIntentParams{
		Amount:      amount,
		Currency:    "usd",
		Description: room.Name,
		Metadata:    meta,
	})
	if err != nil {
		writeServerError(w, "Failed to initialize payment", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"clientSecret": pi.ClientSecret,
		"amount":       pi.Amount,
		"currency":     pi.Currency,
	}})
}
