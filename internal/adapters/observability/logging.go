package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the service logger. APP_ENV=dev (or development)
// uses a human-friendly console writer; anything else emits JSON. Every
// line carries a service tag for shared log streams.
func NewLogger(env string) zerolog.Logger {
	w := io.Writer(os.Stdout)
	if env == "dev" || env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("service", "hotel-haven").Logger()
}
