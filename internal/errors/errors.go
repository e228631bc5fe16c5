package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// TrackerError is the base interface for all errors produced by this module.
type TrackerError interface {
	error
	IsTrackerError() bool
}

// Compile-time verification that all error types implement TrackerError.
var (
	_ TrackerError = (*AuthenticationError)(nil)
	_ TrackerError = (*UnsupportedProviderError)(nil)
	_ TrackerError = (*ConfigurationError)(nil)
	_ TrackerError = (*NotFoundError)(nil)
	_ TrackerError = (*AccessDeniedError)(nil)
	_ TrackerError = (*InvalidCredentialsError)(nil)
	_ TrackerError = (*ValidationError)(nil)
	_ TrackerError = (*UpstreamError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrSessionNotFound indicates the session id is unknown to the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoUpdateFields indicates an update call supplied nothing to change.
	ErrNoUpdateFields = errors.New("no update fields supplied")
)

// AuthenticationError indicates a bad, missing, or expired inbound token.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Reason == "" {
		return "authentication failed"
	}

	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// IsTrackerError implements TrackerError.
func (e *AuthenticationError) IsTrackerError() bool { return true }

// UnsupportedProviderError indicates an unknown provider key in the factory.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %q", e.Provider)
}

// IsTrackerError implements TrackerError.
func (e *UnsupportedProviderError) IsTrackerError() bool { return true }

// ConfigurationError indicates a missing or malformed credential field.
type ConfigurationError struct {
	Provider string
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s configuration: missing or invalid field %q", e.Provider, e.Field)
	}

	return fmt.Sprintf("%s configuration: %s", e.Provider, e.Reason)
}

// IsTrackerError implements TrackerError.
func (e *ConfigurationError) IsTrackerError() bool { return true }

// NotFoundError indicates an upstream 404: issue, attachment, or comment absent.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "" {
		return "not found"
	}

	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IsTrackerError implements TrackerError.
func (e *NotFoundError) IsTrackerError() bool { return true }

// AccessDeniedError indicates an upstream 403.
type AccessDeniedError struct {
	Detail string
}

func (e *AccessDeniedError) Error() string {
	if e.Detail == "" {
		return "access denied by provider"
	}

	return fmt.Sprintf("access denied by provider: %s", e.Detail)
}

// IsTrackerError implements TrackerError.
func (e *AccessDeniedError) IsTrackerError() bool { return true }

// InvalidCredentialsError indicates an upstream 401: the stored API
// key or token was rejected by the provider.
type InvalidCredentialsError struct {
	Provider string
}

func (e *InvalidCredentialsError) Error() string {
	if e.Provider == "" {
		return "provider rejected the stored credentials"
	}

	return fmt.Sprintf("%s rejected the stored credentials", e.Provider)
}

// IsTrackerError implements TrackerError.
func (e *InvalidCredentialsError) IsTrackerError() bool { return true }

// ValidationError indicates a business-rule violation detected before
// any upstream I/O: non-positive hours, missing required activity id,
// or an update with no fields supplied.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTrackerError implements TrackerError.
func (e *ValidationError) IsTrackerError() bool { return true }

// UpstreamError indicates any other upstream failure: network error
// or an unexpected HTTP status.
type UpstreamError struct {
	Provider string
	Status   int
	Detail   string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s upstream failure: %v", e.Provider, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s upstream failure: HTTP %d: %s", e.Provider, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s upstream failure: %s", e.Provider, e.Detail)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsTrackerError implements TrackerError.
func (e *UpstreamError) IsTrackerError() bool { return true }

// FromStatus translates an upstream HTTP status into the typed error
// for that class of failure. Transport-level errors must never cross
// the adapter boundary untyped.
func FromStatus(provider string, status int, kind, id, detail string) error {
	switch status {
	case http.StatusUnauthorized:
		return &InvalidCredentialsError{Provider: provider}
	case http.StatusForbidden:
		return &AccessDeniedError{Detail: detail}
	case http.StatusNotFound:
		return &NotFoundError{Kind: kind, ID: id}
	default:
		return &UpstreamError{Provider: provider, Status: status, Detail: detail}
	}
}
