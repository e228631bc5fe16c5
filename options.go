package trackermcp

import (
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for the server and every adapter built
// from it. Defaults to NopLogger().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(store SessionStore) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSessionTTL sets the TTL of the default in-memory session store.
// Ignored when WithSessionStore is also given. Defaults to 24h.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}
