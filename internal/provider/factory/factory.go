// Package factory constructs provider adapters from user credentials.
// Dispatch on the provider key is closed: the three supported
// providers are enumerated here and nowhere else.
package factory

import (
	"log/slog"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
	"github.com/tracknest/tracker-mcp-go/internal/provider"
	"github.com/tracknest/tracker-mcp-go/internal/provider/jira"
	"github.com/tracknest/tracker-mcp-go/internal/provider/monday"
	"github.com/tracknest/tracker-mcp-go/internal/provider/redmine"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// NewRegistry builds the conversion table covering every supported
// provider. One registry instance is shared by all adapters.
func NewRegistry() *normalize.Registry {
	reg := normalize.NewRegistry()
	redmine.RegisterNormalizers(reg)
	jira.RegisterNormalizers(reg)
	monday.RegisterNormalizers(reg)

	return reg
}

// CreateForUser validates the credential and returns the adapter for
// its provider. Construction is pure: no I/O happens beyond client
// setup, so a returned adapter says nothing about whether the
// credential will be accepted upstream.
func CreateForUser(cred domain.UserCredential, reg *normalize.Registry, logger *slog.Logger) (provider.Adapter, error) {
	switch cred.Provider {
	case redmine.ProviderKey:
		return redmine.New(cred, reg, logger)
	case jira.ProviderKey:
		return jira.New(cred, reg, logger)
	case monday.ProviderKey:
		return monday.New(cred, reg, logger)
	default:
		return nil, &trackererr.UnsupportedProviderError{Provider: cred.Provider}
	}
}

// Descriptors lists the supported providers and their credential
// field requirements, for configuration discovery.
func Descriptors() []provider.Descriptor {
	return []provider.Descriptor{
		redmine.Descriptor(),
		jira.Descriptor(),
		monday.Descriptor(),
	}
}
