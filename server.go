package trackermcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tracknest/tracker-mcp-go/internal/assemble"
	"github.com/tracknest/tracker-mcp-go/internal/provider/factory"
	"github.com/tracknest/tracker-mcp-go/internal/session"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

const defaultSessionTTL = 24 * time.Hour

// Server builds per-request MCP surfaces from resolved credentials.
// Adapters are request-scoped: nothing built for one request is
// reused by another. The only cross-request state is the session
// store and the token-to-session-id map feeding it.
type Server struct {
	resolver   CredentialResolver
	store      SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]string // bearer token -> session id
}

// New builds a Server around a credential resolver.
func New(resolver CredentialResolver, opts ...Option) (*Server, error) {
	if resolver == nil {
		return nil, errors.New("trackermcp: credential resolver is required")
	}

	s := &Server{
		resolver:   resolver,
		sessionTTL: defaultSessionTTL,
		logger:     NopLogger(),
		sessions:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore(s.sessionTTL)
	}

	return s, nil
}

// BuildSession constructs the MCP server for one credential. The
// assembled tool and resource set is fixed for the session's
// lifetime. Construction failures (unknown provider, missing
// credential fields) are fatal for the whole request.
func (s *Server) BuildSession(cred UserCredential) (*mcpsdk.Server, error) {
	adapter, err := factory.CreateForUser(cred, factory.NewRegistry(), s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session built",
		"user", cred.UserID,
		"provider", adapter.Provider())

	return assemble.Build(adapter, s.logger), nil
}

type sessionRecord struct {
	UserID   string    `json:"user_id"`
	Provider string    `json:"provider"`
	LastSeen time.Time `json:"last_seen"`
}

// touchSession records activity for the token's session, issuing a
// fresh id for tokens not seen before (or whose session expired).
func (s *Server) touchSession(token string, cred UserCredential) {
	s.mu.Lock()
	id, ok := s.sessions[token]
	if !ok || !s.store.Exists(id) {
		id = session.NewID()
		s.sessions[token] = id
	}
	s.mu.Unlock()

	record, err := json.Marshal(sessionRecord{
		UserID:   cred.UserID,
		Provider: cred.Provider,
		LastSeen: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.store.Write(id, record); err != nil {
		s.logger.Warn("session write failed", "session", id, "error", err)
	}
}

// CollectSessions reaps expired sessions from the store and drops
// their token mappings, returning the expired ids. Deployments run
// this on a ticker.
func (s *Server) CollectSessions() []string {
	expired := s.store.GarbageCollect()
	if len(expired) == 0 {
		return nil
	}

	dead := make(map[string]bool, len(expired))
	for _, id := range expired {
		dead[id] = true
	}

	s.mu.Lock()
	for token, id := range s.sessions {
		if dead[id] {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()

	return expired
}

// HTTPHandler returns the streamable MCP endpoint behind bearer
// authentication. Each request resolves its token, builds its
// adapter, and serves the resulting per-request MCP server;
// resolution or construction failure answers with a JSON error before
// any tool registration happens.
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcpsdk.NewStreamableHTTPHandler(func(r *http.Request) *mcpsdk.Server {
		srv, _ := r.Context().Value(sessionServerKey{}).(*mcpsdk.Server)

		return srv
	}, &mcpsdk.StreamableHTTPOptions{Stateless: true})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")

			return
		}

		cred, err := s.resolver.Resolve(r.Context(), token)
		if err != nil {
			s.logger.Debug("token resolution failed", "error", err)
			writeError(w, http.StatusUnauthorized, "authentication failed")

			return
		}

		srv, err := s.BuildSession(cred)
		if err != nil {
			s.logger.Warn("session build failed", "user", cred.UserID, "error", err)
			writeError(w, buildFailureStatus(err), err.Error())

			return
		}
		s.touchSession(token, cred)

		ctx := contextWithSessionServer(r.Context(), srv)
		streamable.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sessionServerKey struct{}

func contextWithSessionServer(ctx context.Context, srv *mcpsdk.Server) context.Context {
	return context.WithValue(ctx, sessionServerKey{}, srv)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}

// buildFailureStatus maps construction failures onto HTTP statuses:
// unknown providers and malformed credentials are the deployment's
// configuration problem, not the caller's.
func buildFailureStatus(err error) int {
	var unsupported *trackererr.UnsupportedProviderError
	var config *trackererr.ConfigurationError
	if errors.As(err, &unsupported) || errors.As(err, &config) {
		return http.StatusInternalServerError
	}

	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}
