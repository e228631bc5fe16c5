package trackermcp

import "github.com/tracknest/tracker-mcp-go/internal/errors"

// Re-export error types from internal package

// AuthenticationError indicates a bad, missing, or expired token.
type AuthenticationError = errors.AuthenticationError

// UnsupportedProviderError indicates an unknown provider key.
type UnsupportedProviderError = errors.UnsupportedProviderError

// ConfigurationError indicates a missing required credential field.
type ConfigurationError = errors.ConfigurationError

// NotFoundError indicates the upstream object does not exist.
type NotFoundError = errors.NotFoundError

// AccessDeniedError indicates the upstream rejected the operation.
type AccessDeniedError = errors.AccessDeniedError

// InvalidCredentialsError indicates the stored API credentials were
// rejected upstream.
type InvalidCredentialsError = errors.InvalidCredentialsError

// ValidationError indicates a business-rule violation caught before
// any upstream call.
type ValidationError = errors.ValidationError

// UpstreamError indicates any other upstream failure.
type UpstreamError = errors.UpstreamError

// TrackerError is the common interface of all typed errors above.
type TrackerError = errors.TrackerError

// Re-export sentinel errors from internal package.
var (
	// ErrSessionNotFound indicates the session id is unknown or expired.
	ErrSessionNotFound = errors.ErrSessionNotFound

	// ErrNoUpdateFields indicates an update carried no fields to change.
	ErrNoUpdateFields = errors.ErrNoUpdateFields
)
