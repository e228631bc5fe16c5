// Package domain holds the canonical, provider-agnostic records every
// adapter normalizes into. All types are immutable value records:
// constructed fresh per request from provider responses, never mutated
// afterwards, and discarded when the request completes.
package domain
