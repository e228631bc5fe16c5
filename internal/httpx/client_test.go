package httpx

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthConfigs(t *testing.T) {
	newRequest := func() *http.Request {
		req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
		require.NoError(t, err)

		return req
	}

	t.Run("bearer token", func(t *testing.T) {
		req := newRequest()
		BearerToken{Token: "tok"}.Apply(req)
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})

	t.Run("api key with custom header", func(t *testing.T) {
		req := newRequest()
		APIKey{Key: "secret", Header: "X-Redmine-API-Key"}.Apply(req)
		assert.Equal(t, "secret", req.Header.Get("X-Redmine-API-Key"))
	})

	t.Run("api key default header", func(t *testing.T) {
		req := newRequest()
		APIKey{Key: "secret"}.Apply(req)
		assert.Equal(t, "secret", req.Header.Get("X-API-Key"))
	})

	t.Run("atlassian basic auth", func(t *testing.T) {
		req := newRequest()
		AtlassianAuth{Email: "dev@example.com", APIToken: "tok"}.Apply(req)

		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("dev@example.com:tok"))
		assert.Equal(t, want, req.Header.Get("Authorization"))
	})

	t.Run("empty credentials add nothing", func(t *testing.T) {
		req := newRequest()
		BearerToken{}.Apply(req)
		AtlassianAuth{}.Apply(req)
		APIKey{}.Apply(req)
		assert.Empty(t, req.Header)
	})
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("X-Redmine-API-Key"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Auth:    APIKey{Key: "tok", Header: "X-Redmine-API-Key"},
	})

	resp, err := client.Get(context.Background(), "/issues.json", url.Values{"limit": {"50"}})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.JSON(&body))
	assert.True(t, body.OK)
}

func TestClientDoesNotRetry(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	resp, err := client.Get(context.Background(), "/projects.json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, int64(1), calls.Load())
}

func TestClientGetURLCarriesConfiguredHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-10", r.Header.Get("API-Version"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("file bytes"))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: "https://unused.example.com",
		Auth:    BearerToken{Token: "tok"},
		Headers: map[string]string{"API-Version": "2024-10"},
	})

	resp, err := client.GetURL(context.Background(), srv.URL+"/assets/41/download")
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "file bytes", string(resp.Body))
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	resp, err := client.PostJSON(context.Background(), "/time_entries.json", map[string]any{"hours": 1.5})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
