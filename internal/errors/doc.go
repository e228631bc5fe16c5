// Package errors defines the typed error taxonomy shared by the
// provider adapters, domain services, and the protocol layer.
//
// Upstream HTTP failures are translated into these types at the
// adapter boundary (401 -> InvalidCredentialsError, 403 ->
// AccessDeniedError, 404 -> NotFoundError, anything else ->
// UpstreamError) so that callers never see raw transport errors.
package errors
