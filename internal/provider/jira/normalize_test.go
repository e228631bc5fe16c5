package jira

import (
	"encoding/json"
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

const rawIssuePayload = `{
	"id": "10042",
	"key": "PRJ-7",
	"fields": {
		"summary": "Checkout timeout",
		"description": {
			"type": "doc",
			"version": 1,
			"content": [
				{"type": "paragraph", "content": [{"type": "text", "text": "Payment hangs."}]},
				{"type": "paragraph", "content": [{"type": "text", "text": "Only on retry."}]}
			]
		},
		"project": {"id": "10001", "name": "Shop"},
		"status": {"id": "3", "name": "In Progress"},
		"assignee": {"accountId": "5b10ac8d82e05b22cc7d4ef5", "displayName": "Mia Chen"},
		"issuetype": {"name": "Bug"},
		"priority": {"name": "Highest"},
		"comment": {
			"comments": [
				{"id": "301", "author": {"displayName": "Mia Chen"}, "body": {
					"type": "doc",
					"content": [
						{"type": "paragraph", "content": [{"type": "text", "text": "Reproduced."}]},
						{"type": "paragraph", "content": [{"type": "text", "text": "Logs attached."}]}
					]
				}}
			]
		},
		"attachment": [
			{"id": "401", "filename": "har.zip", "size": 9000, "mimeType": "application/zip", "content": "https://example.atlassian.net/content/401"}
		]
	},
	"transitions": [
		{"id": "31", "to": {"id": "4", "name": "Done", "statusCategory": {"key": "done"}}}
	]
}`

func TestNormalizeIssue(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(rawIssuePayload), &raw))

	issue, err := newRegistry(t).Issue(ProviderKey, raw)
	require.NoError(t, err)

	assert.Equal(t, int64(10042), issue.ID)
	assert.Equal(t, "Checkout timeout", issue.Title)
	assert.Equal(t, "Payment hangs.\nOnly on retry.", issue.Description)
	assert.Equal(t, int64(10001), issue.Project.ID)
	assert.Equal(t, "In Progress", issue.Status)
	assert.Equal(t, "Mia Chen", issue.Assignee)

	require.Len(t, issue.Comments, 1)
	assert.Equal(t, "Reproduced.\nLogs attached.", issue.Comments[0].Notes)

	require.Len(t, issue.Attachments, 1)
	assert.Equal(t, "har.zip", issue.Attachments[0].Filename)
	assert.Equal(t, int64(9000), issue.Attachments[0].Filesize)

	require.Len(t, issue.AllowedStatuses, 1)
	assert.Equal(t, "Done", issue.AllowedStatuses[0].Name)
	assert.True(t, issue.AllowedStatuses[0].Closed)
}

func TestNormalizeCommentADFBody(t *testing.T) {
	comment, err := newRegistry(t).Comment(ProviderKey, map[string]any{
		"id": "300",
		"body": map[string]any{
			"type": "doc",
			"content": []any{
				map[string]any{"type": "paragraph", "content": []any{map[string]any{"type": "text", "text": "first"}}},
				map[string]any{"type": "paragraph", "content": []any{map[string]any{"type": "text", "text": "second"}}},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "first\nsecond", comment.Notes)
}

func TestNormalizeUserSurrogateID(t *testing.T) {
	reg := newRegistry(t)

	user, err := reg.User(ProviderKey, map[string]any{
		"accountId":    "5b10ac8d82e05b22cc7d4ef5",
		"displayName":  "Mia Chen",
		"emailAddress": "mia@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, normalize.SurrogateID("5b10ac8d82e05b22cc7d4ef5"), user.ID)
	assert.Equal(t, "Mia Chen", user.Name)

	again, err := reg.User(ProviderKey, map[string]any{"accountId": "5b10ac8d82e05b22cc7d4ef5"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID, "surrogate ids must stay stable across conversions")
}

func TestNormalizeWorklog(t *testing.T) {
	entry, err := newRegistry(t).TimeEntry(ProviderKey, map[string]any{
		"id":               "501",
		"issueId":          "10042",
		"timeSpentSeconds": float64(5400),
		"started":          "2024-03-01T09:00:00.000+0000",
		"author":           map[string]any{"displayName": "Mia Chen"},
		"comment": map[string]any{
			"type":    "doc",
			"content": []any{map[string]any{"type": "paragraph", "content": []any{map[string]any{"type": "text", "text": "pairing"}}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(501), entry.ID)
	assert.Equal(t, int64(10042), entry.IssueID)
	assert.Equal(t, int64(5400), entry.Seconds)
	assert.InDelta(t, 1.5, entry.Hours(), 1e-9)
	assert.Equal(t, "pairing", entry.Comment)
	assert.Equal(t, "2024-03-01", entry.SpentOn())
}

func TestIssueIDFromSelf(t *testing.T) {
	issueID, err := issueIDFromSelf("https://example.atlassian.net/rest/api/3/issue/10042/comment/301")
	require.NoError(t, err)
	assert.Equal(t, "10042", issueID)

	_, err = issueIDFromSelf("https://example.atlassian.net/rest/api/3/comment/301")
	assert.Error(t, err)
}

func TestBindPortsExcludesActivityAndStatus(t *testing.T) {
	adapter := &Adapter{}
	ports := provider.BindPorts(adapter)

	assert.NotNil(t, ports.IssueWrite)
	assert.NotNil(t, ports.TimeWrite)
	assert.NotNil(t, ports.Members)
	assert.Nil(t, ports.Activities)
	assert.Nil(t, ports.Statuses)
	assert.Nil(t, ports.Wiki)
}
