package monday

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/tracker-mcp-go/internal/normalize"
	"github.com/tracknest/tracker-mcp-go/internal/provider"
)

func newRegistry(t *testing.T) *normalize.Registry {
	t.Helper()
	reg := normalize.NewRegistry()
	RegisterNormalizers(reg)

	return reg
}

func TestNormalizeItem(t *testing.T) {
	issue, err := newRegistry(t).Issue(ProviderKey, map[string]any{
		"id":    "9001",
		"name":  "Ship onboarding flow",
		"board": map[string]any{"id": "777", "name": "Product"},
		"column_values": []any{
			map[string]any{"id": "status", "type": "status", "text": "Working on it"},
			map[string]any{"id": "person", "type": "people", "text": "Mia Chen"},
		},
		"updates": []any{
			map[string]any{
				"id":         "501",
				"text_body":  "Design approved",
				"creator":    map[string]any{"name": "Mia Chen"},
				"created_at": "2024-03-01T10:00:00Z",
			},
		},
		"assets": []any{
			map[string]any{"id": "301", "name": "mock.png", "file_size": float64(2048), "public_url": "https://files.monday.com/mock.png"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9001), issue.ID)
	assert.Equal(t, "Ship onboarding flow", issue.Title)
	assert.Equal(t, "Working on it", issue.Status)
	assert.Equal(t, "Mia Chen", issue.Assignee)
	assert.Equal(t, int64(777), issue.Project.ID)
	assert.Empty(t, issue.AllowedStatuses)

	require.Len(t, issue.Comments, 1)
	assert.Equal(t, "Design approved", issue.Comments[0].Notes)
	require.NotNil(t, issue.Comments[0].CreatedAt)

	require.Len(t, issue.Attachments, 1)
	assert.Equal(t, "mock.png", issue.Attachments[0].Filename)
	assert.Equal(t, "https://files.monday.com/mock.png", issue.Attachments[0].ContentURL)
}

func TestNormalizeItemDefensiveDefaults(t *testing.T) {
	issue, err := newRegistry(t).Issue(ProviderKey, map[string]any{})
	require.NoError(t, err)

	assert.Zero(t, issue.ID)
	assert.Empty(t, issue.Title)
	assert.Empty(t, issue.Status)
	assert.Empty(t, issue.Comments)
}

func TestNormalizeSessionDuration(t *testing.T) {
	entry, err := newRegistry(t).TimeEntry(ProviderKey, map[string]any{
		"id":              "41",
		"item_id":         "9001",
		"board_id":        "777",
		"item_name":       "Ship onboarding flow",
		"started_at":      "2024-03-01T09:00:00Z",
		"ended_at":        "2024-03-01T10:30:00Z",
		"started_user_id": float64(111),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(9001), entry.IssueID)
	assert.Equal(t, int64(777), entry.ProjectID)
	assert.Equal(t, int64(5400), entry.Seconds)
	assert.InDelta(t, 1.5, entry.Hours(), 1e-9)
	assert.Equal(t, "2024-03-01", entry.SpentOn())
	assert.Equal(t, "111", entry.User)
}

func TestNormalizeSessionStillRunning(t *testing.T) {
	entry, err := newRegistry(t).TimeEntry(ProviderKey, map[string]any{
		"id":         "42",
		"item_id":    "9001",
		"started_at": "2024-03-01T09:00:00Z",
	})
	require.NoError(t, err)

	assert.Zero(t, entry.Seconds, "an open session has no duration yet")
	assert.False(t, entry.SpentAt.IsZero())
}

func TestNormalizeAssetPrefersPublicURL(t *testing.T) {
	reg := newRegistry(t)

	withPublic, err := reg.Attachment(ProviderKey, map[string]any{
		"id": "1", "url": "https://internal", "public_url": "https://public",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://public", withPublic.ContentURL)

	withoutPublic, err := reg.Attachment(ProviderKey, map[string]any{
		"id": "2", "url": "https://internal",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://internal", withoutPublic.ContentURL)
}

func TestBindPortsReadOnly(t *testing.T) {
	ports := provider.BindPorts(&Adapter{})

	assert.NotNil(t, ports.Projects)
	assert.NotNil(t, ports.IssueRead)
	assert.NotNil(t, ports.TimeRead)
	assert.NotNil(t, ports.Attachments)
	assert.NotNil(t, ports.User)

	assert.Nil(t, ports.IssueWrite)
	assert.Nil(t, ports.TimeWrite)
	assert.Nil(t, ports.Activities)
	assert.Nil(t, ports.Statuses)
	assert.Nil(t, ports.Members)
	assert.Nil(t, ports.Wiki)
}
