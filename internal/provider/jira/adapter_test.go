package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reg := normalize.NewRegistry()
	RegisterNormalizers(reg)

	adapter, err := New(domain.UserCredential{
		Provider:        ProviderKey,
		OrgConfig:       map[string]string{"base_url": srv.URL},
		UserCredentials: map[string]string{"email": "mia@example.com", "api_token": "tok"},
	}, reg, nil)
	require.NoError(t, err)

	return adapter
}

func TestNewValidatesCredential(t *testing.T) {
	reg := normalize.NewRegistry()

	t.Run("missing base url", func(t *testing.T) {
		_, err := New(domain.UserCredential{
			UserCredentials: map[string]string{"email": "a@b.c", "api_token": "t"},
		}, reg, nil)

		var confErr *trackererr.ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, "base_url", confErr.Field)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := New(domain.UserCredential{
			OrgConfig:       map[string]string{"base_url": "https://example.atlassian.net"},
			UserCredentials: map[string]string{"api_token": "t"},
		}, reg, nil)

		var confErr *trackererr.ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, "email", confErr.Field)
	})

	t.Run("missing api token", func(t *testing.T) {
		_, err := New(domain.UserCredential{
			OrgConfig:       map[string]string{"base_url": "https://example.atlassian.net"},
			UserCredentials: map[string]string{"email": "a@b.c"},
		}, reg, nil)

		var confErr *trackererr.ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, "api_token", confErr.Field)
	})
}

func TestGetProjectsUsesBasicAuth(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/project/search", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "mia@example.com", user)
		assert.Equal(t, "tok", pass)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": []any{
				map[string]any{"id": "10001", "name": "Shop"},
				map[string]any{"id": "10002", "name": "Billing"},
			},
		})
	})

	projects, err := adapter.GetProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, int64(10001), projects[0].ID)
	assert.Equal(t, "Billing", projects[1].Name)
}

func TestGetIssueNotFound(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := adapter.GetIssue(context.Background(), 404)

	var notFound *trackererr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "issue", notFound.Kind)
}

func TestGetIssueAuthRejected(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := adapter.GetIssue(context.Background(), 1)

	var invalid *trackererr.InvalidCredentialsError
	require.ErrorAs(t, err, &invalid)
}

func TestAddCommentSendsADF(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/api/3/issue/7/comment", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		body, _ := payload["body"].(map[string]any)
		require.NotNil(t, body)
		assert.Equal(t, "doc", body["type"])

		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, adapter.AddComment(context.Background(), 7, "looks good", false))
}

func TestUpdateCommentResolvesIssueFromSelf(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/3/comment/list":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": []any{
					map[string]any{"id": "301", "self": "https://example.atlassian.net/rest/api/3/issue/42/comment/301"},
				},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/rest/api/3/issue/42/comment/301":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, adapter.UpdateComment(context.Background(), 301, "amended"))
}

func TestUpdateIssueTransitionsToStatus(t *testing.T) {
	transitioned := false
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/api/3/issue/7":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "7",
				"fields": map[string]any{"summary": "x"},
				"transitions": []any{
					map[string]any{"id": "31", "to": map[string]any{"id": "4", "name": "Done"}},
				},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/3/issue/7/transitions":
			var payload map[string]map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "31", payload["transition"]["id"])
			transitioned = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	statusID := int64(4)
	require.NoError(t, adapter.UpdateIssue(context.Background(), 7, provider.IssueUpdate{StatusID: &statusID}))
	assert.True(t, transitioned)
}

func TestUpdateIssueRejectsUnreachableStatus(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "7",
			"fields":      map[string]any{"summary": "x"},
			"transitions": []any{},
		})
	})

	statusID := int64(99)
	err := adapter.UpdateIssue(context.Background(), 7, provider.IssueUpdate{StatusID: &statusID})

	var valErr *trackererr.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestLogTimeSendsWorklogFields(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/api/3/issue/7/worklog", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(5400), payload["timeSpentSeconds"])
		started, _ := payload["started"].(string)
		assert.Contains(t, started, "2024-03-01")

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "501", "issueId": "7", "timeSpentSeconds": 5400,
			"started": "2024-03-01T09:00:00.000+0000",
		})
	})

	entry, err := adapter.LogTime(context.Background(), 7, 5400, "", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(501), entry.ID)
	assert.Equal(t, int64(7), entry.IssueID)
	assert.Equal(t, int64(5400), entry.Seconds)
}

func TestGetTimeEntriesFansOutOverIssues(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/3/search":
			assert.Contains(t, r.URL.Query().Get("jql"), "worklogDate")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"issues": []any{
					map[string]any{"id": "7", "fields": map[string]any{"project": map[string]any{"id": "10001"}}},
				},
			})
		case "/rest/api/3/issue/7/worklog":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"worklogs": []any{
					map[string]any{"id": "501", "issueId": "7", "timeSpentSeconds": 3600, "started": "2024-03-01T09:00:00.000+0000"},
					map[string]any{"id": "502", "issueId": "7", "timeSpentSeconds": 1800, "started": "2023-01-01T09:00:00.000+0000"},
					map[string]any{"id": "503", "issueId": "7", "timeSpentSeconds": 900, "started": "2024-03-08T00:00:00.000+0000"},
				},
			})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	entries, err := adapter.GetTimeEntries(context.Background(), from, to, "")
	require.NoError(t, err)
	require.Len(t, entries, 1, "worklogs before the window or at midnight past its end must be dropped")
	assert.Equal(t, int64(501), entries[0].ID)
	assert.Equal(t, int64(10001), entries[0].ProjectID)
}
