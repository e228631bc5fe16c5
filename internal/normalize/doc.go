// Package normalize converts raw provider payloads into canonical
// domain records.
//
// Dispatch runs through a lookup table keyed by (kind, provider): each
// provider package contributes one conversion function per domain kind
// it emits, and composite conversions (an issue containing comments
// and attachments) recurse through the table via the conversion
// Context rather than inlining nested logic.
//
// Field extraction is defensive throughout: a missing key yields the
// documented default (empty string, zero id, nil timestamp) instead of
// an error.
package normalize
