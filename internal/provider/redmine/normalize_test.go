package redmine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracknest/tracker-mcp-go/internal/normalize"
)

func newRegistry(t *testing.T) *normalize.Registry {
	t.Helper()
	reg := normalize.NewRegistry()
	RegisterNormalizers(reg)

	return reg
}

const rawIssuePayload = `{
	"id": 101,
	"subject": "Login page broken",
	"description": "500 on submit",
	"project": {"id": 7, "name": "Portal", "parent": {"id": 1, "name": "Platform"}},
	"status": {"id": 2, "name": "In Progress"},
	"assigned_to": {"id": 4, "name": "Jan Novak"},
	"tracker": {"id": 1, "name": "Bug"},
	"priority": {"id": 3, "name": "High"},
	"journals": [
		{"id": 11, "notes": "first note", "user": {"id": 4, "name": "Jan Novak"}, "created_on": "2024-02-01T09:00:00Z"},
		{"id": 12, "notes": "second note", "attachments": [{"id": 31, "filename": "log.txt", "filesize": 120}]},
		{"id": 13, "notes": ""}
	],
	"attachments": [
		{"id": 21, "filename": "screen.png", "filesize": 2048, "content_type": "image/png", "content_url": "https://redmine.example.com/attachments/download/21/screen.png"},
		{"id": 22, "filename": "trace.log", "filesize": 512}
	],
	"allowed_statuses": [
		{"id": 3, "name": "Resolved"},
		{"id": 5, "name": "Closed", "is_closed": true}
	]
}`

func TestNormalizeIssueRoundTrip(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(rawIssuePayload), &raw))

	issue, err := newRegistry(t).Issue(ProviderKey, raw)
	require.NoError(t, err)

	assert.Equal(t, int64(101), issue.ID)
	assert.Equal(t, "Login page broken", issue.Title)
	assert.Equal(t, "In Progress", issue.Status)
	assert.Equal(t, "Jan Novak", issue.Assignee)
	assert.Equal(t, "Bug", issue.Type)
	assert.Equal(t, "High", issue.Priority)

	require.NotNil(t, issue.Project.Parent)
	assert.Equal(t, "Platform", issue.Project.Parent.Name)

	// Comments and attachments keep the input arrays' lengths and order.
	require.Len(t, issue.Comments, 3)
	assert.Equal(t, "first note", issue.Comments[0].Notes)
	assert.Equal(t, "second note", issue.Comments[1].Notes)
	require.Len(t, issue.Comments[1].Attachments, 1)
	assert.Equal(t, "log.txt", issue.Comments[1].Attachments[0].Filename)

	require.Len(t, issue.Attachments, 2)
	assert.Equal(t, "screen.png", issue.Attachments[0].Filename)
	assert.Equal(t, "trace.log", issue.Attachments[1].Filename)

	require.Len(t, issue.AllowedStatuses, 2)
	assert.Equal(t, "Resolved", issue.AllowedStatuses[0].Name)
	assert.True(t, issue.AllowedStatuses[1].Closed)
}

func TestNormalizeIssueDefensiveDefaults(t *testing.T) {
	issue, err := newRegistry(t).Issue(ProviderKey, map[string]any{})
	require.NoError(t, err)

	assert.Zero(t, issue.ID)
	assert.Empty(t, issue.Title)
	assert.Empty(t, issue.Status)
	assert.Empty(t, issue.Comments)
	assert.Empty(t, issue.Attachments)
	assert.Empty(t, issue.AllowedStatuses)
}

func TestNormalizeTimeEntry(t *testing.T) {
	entry, err := newRegistry(t).TimeEntry(ProviderKey, map[string]any{
		"id":       float64(55),
		"hours":    1.5,
		"comments": "code review",
		"spent_on": "2024-03-01",
		"issue":    map[string]any{"id": float64(101)},
		"project":  map[string]any{"id": float64(7)},
		"activity": map[string]any{"id": float64(9), "name": "Development"},
		"user":     map[string]any{"id": float64(4), "name": "Jan Novak"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5400), entry.Seconds)
	assert.InDelta(t, 1.5, entry.Hours(), 1e-9)
	assert.Equal(t, "2024-03-01", entry.SpentOn())
	assert.Equal(t, int64(101), entry.IssueID)
	assert.Equal(t, int64(7), entry.ProjectID)
	assert.Equal(t, "Development", entry.Activity)
	assert.Equal(t, int64(9), entry.Metadata["activity_id"])
}

func TestNormalizeUserJoinsNames(t *testing.T) {
	user, err := newRegistry(t).User(ProviderKey, map[string]any{
		"id":        float64(4),
		"firstname": "Jan",
		"lastname":  "Novak",
		"mail":      "jan@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jan Novak", user.Name)
	assert.Equal(t, "jan@example.com", user.Email)
}

func TestNormalizeMembership(t *testing.T) {
	member, err := newRegistry(t).Member(ProviderKey, map[string]any{
		"id":    float64(3),
		"user":  map[string]any{"id": float64(4), "name": "Jan Novak"},
		"roles": []any{map[string]any{"name": "Developer"}, map[string]any{"name": "Reporter"}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4), member.ID)
	assert.Equal(t, []string{"Developer", "Reporter"}, member.Roles)
}
