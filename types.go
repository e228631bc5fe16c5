package trackermcp

import (
	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/provider"
	"github.com/tracknest/tracker-mcp-go/internal/provider/factory"
	"github.com/tracknest/tracker-mcp-go/internal/session"
)

// UserCredential is the resolved per-request credential a resolver
// returns: the provider key, shared org config (base URL), and the
// user's own secrets.
type UserCredential = domain.UserCredential

// CredentialResolver turns an inbound bearer token into the
// credential it stands for.
type CredentialResolver = session.Resolver

// StaticResolver resolves tokens from a fixed map.
type StaticResolver = session.StaticResolver

// SessionStore is opaque key-value session state with a TTL.
type SessionStore = session.Store

// Descriptor describes one supported provider and its credential
// field requirements.
type Descriptor = provider.Descriptor

// Field describes one credential field of a provider.
type Field = provider.Field

// Descriptors lists the supported providers, for configuration and
// discovery UIs.
func Descriptors() []Descriptor {
	return factory.Descriptors()
}
