package httpx

import (
	"encoding/base64"
	"net/http"
)

// AuthConfig applies provider authentication to an outgoing request.
type AuthConfig interface {
	Apply(req *http.Request)
}

// NoAuth sends requests unauthenticated.
type NoAuth struct{}

// Apply implements AuthConfig.
func (a NoAuth) Apply(*http.Request) {}

// BearerToken uses Bearer token authentication (Monday.com).
type BearerToken struct {
	Token string
}

// Apply implements AuthConfig.
func (a BearerToken) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// APIKey sends the key in a custom header (Redmine's X-Redmine-API-Key).
type APIKey struct {
	Key    string
	Header string
}

// Apply implements AuthConfig.
func (a APIKey) Apply(req *http.Request) {
	if a.Key == "" {
		return
	}
	header := a.Header
	if header == "" {
		header = "X-API-Key"
	}
	req.Header.Set(header, a.Key)
}

// AtlassianAuth uses Atlassian-style Basic auth (email:token), as
// required by Jira Cloud.
type AtlassianAuth struct {
	Email    string
	APIToken string
}

// Apply implements AuthConfig.
func (a AtlassianAuth) Apply(req *http.Request) {
	if a.Email == "" || a.APIToken == "" {
		return
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(a.Email + ":" + a.APIToken))
	req.Header.Set("Authorization", "Basic "+credentials)
}
