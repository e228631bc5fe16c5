package jira

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/tracknest/tracker-mcp-go/internal/httpx"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

const apiPrefix = "/rest/api/3"

// Client is a thin typed client for the Jira Cloud v3 REST API.
type Client struct {
	http *httpx.Client
}

// NewClient builds a Jira client using Atlassian Basic auth
// (email:token).
func NewClient(baseURL, email, apiToken string, logger *slog.Logger) *Client {
	return &Client{
		http: httpx.NewClient(httpx.ClientConfig{
			BaseURL: baseURL,
			Auth:    httpx.AtlassianAuth{Email: email, APIToken: apiToken},
			Headers: map[string]string{"Accept": "application/json"},
			Logger:  logger,
		}),
	}
}

func check(resp *httpx.Response, kind, id string) error {
	if resp.IsSuccess() {
		return nil
	}

	return trackererr.FromStatus(ProviderKey, resp.StatusCode, kind, id, strings.TrimSpace(string(resp.Body)))
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, kind, id string) (map[string]any, error) {
	resp, err := c.http.Get(ctx, path, query)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if err := check(resp, kind, id); err != nil {
		return nil, err
	}

	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return body, nil
}

func objects(body map[string]any, key string) []map[string]any {
	raw, _ := body[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}

	return out
}

// Projects pages through project search results.
func (c *Client) Projects(ctx context.Context) ([]map[string]any, error) {
	body, err := c.getJSON(ctx, apiPrefix+"/project/search", url.Values{"maxResults": {"100"}}, "", "")
	if err != nil {
		return nil, err
	}

	return objects(body, "values"), nil
}

// SearchIssues runs a JQL search returning raw issues.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int, fields string) ([]map[string]any, error) {
	query := url.Values{
		"jql":        {jql},
		"maxResults": {strconv.Itoa(maxResults)},
	}
	if fields != "" {
		query.Set("fields", fields)
	}

	body, err := c.getJSON(ctx, apiPrefix+"/search", query, "", "")
	if err != nil {
		return nil, err
	}

	return objects(body, "issues"), nil
}

// Issue fetches one issue with comments, attachments, and available
// transitions expanded.
func (c *Client) Issue(ctx context.Context, issueID int64) (map[string]any, error) {
	id := strconv.FormatInt(issueID, 10)
	query := url.Values{"expand": {"transitions"}}

	return c.getJSON(ctx, apiPrefix+"/issue/"+id, query, "issue", id)
}

// AddComment posts an ADF comment on an issue.
func (c *Client) AddComment(ctx context.Context, issueID int64, body map[string]any) error {
	id := strconv.FormatInt(issueID, 10)
	resp, err := c.http.PostJSON(ctx, apiPrefix+"/issue/"+id+"/comment", body)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "issue", id)
}

// CommentByID resolves a comment through the bulk endpoint. The
// returned object carries a self URL embedding the owning issue id,
// which the update and delete paths need.
func (c *Client) CommentByID(ctx context.Context, commentID int64) (map[string]any, error) {
	resp, err := c.http.PostJSON(ctx, apiPrefix+"/comment/list", map[string]any{"ids": []int64{commentID}})
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	id := strconv.FormatInt(commentID, 10)
	if err := check(resp, "comment", id); err != nil {
		return nil, err
	}

	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	comments := objects(body, "values")
	if len(comments) == 0 {
		return nil, &trackererr.NotFoundError{Kind: "comment", ID: id}
	}

	return comments[0], nil
}

// issueIDFromSelf extracts the issue id from a comment/worklog self
// URL of the form .../issue/{issueID}/comment/{id}.
func issueIDFromSelf(self string) (string, error) {
	parts := strings.Split(self, "/")
	for i, part := range parts {
		if part == "issue" && i+1 < len(parts) {
			return parts[i+1], nil
		}
	}

	return "", fmt.Errorf("no issue id in self URL %q", self)
}

// UpdateCommentOn rewrites a comment on a known issue.
func (c *Client) UpdateCommentOn(ctx context.Context, issueID, commentID string, body map[string]any) error {
	resp, err := c.http.PutJSON(ctx, apiPrefix+"/issue/"+issueID+"/comment/"+commentID, body)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "comment", commentID)
}

// DeleteCommentOn removes a comment on a known issue.
func (c *Client) DeleteCommentOn(ctx context.Context, issueID, commentID string) error {
	resp, err := c.http.Delete(ctx, apiPrefix+"/issue/"+issueID+"/comment/"+commentID)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "comment", commentID)
}

// EditIssue applies a field update.
func (c *Client) EditIssue(ctx context.Context, issueID int64, payload map[string]any) error {
	id := strconv.FormatInt(issueID, 10)
	resp, err := c.http.PutJSON(ctx, apiPrefix+"/issue/"+id, payload)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "issue", id)
}

// Transition moves an issue through a workflow transition.
func (c *Client) Transition(ctx context.Context, issueID int64, transitionID string) error {
	id := strconv.FormatInt(issueID, 10)
	payload := map[string]any{"transition": map[string]any{"id": transitionID}}
	resp, err := c.http.PostJSON(ctx, apiPrefix+"/issue/"+id+"/transitions", payload)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "issue", id)
}

// IssueWorklogs lists an issue's worklogs.
func (c *Client) IssueWorklogs(ctx context.Context, issueID string) ([]map[string]any, error) {
	body, err := c.getJSON(ctx, apiPrefix+"/issue/"+issueID+"/worklog", nil, "issue", issueID)
	if err != nil {
		return nil, err
	}

	return objects(body, "worklogs"), nil
}

// AddWorklog logs time on an issue and returns the raw worklog.
func (c *Client) AddWorklog(ctx context.Context, issueID int64, payload map[string]any) (map[string]any, error) {
	id := strconv.FormatInt(issueID, 10)
	resp, err := c.http.PostJSON(ctx, apiPrefix+"/issue/"+id+"/worklog", payload)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if err := check(resp, "issue", id); err != nil {
		return nil, err
	}

	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return body, nil
}

// WorklogByID resolves a worklog through the bulk endpoint; the
// result carries the owning issueId.
func (c *Client) WorklogByID(ctx context.Context, worklogID int64) (map[string]any, error) {
	resp, err := c.http.PostJSON(ctx, apiPrefix+"/worklog/list", map[string]any{"ids": []int64{worklogID}})
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	id := strconv.FormatInt(worklogID, 10)
	if err := check(resp, "time entry", id); err != nil {
		return nil, err
	}

	var worklogs []map[string]any
	if err := resp.JSON(&worklogs); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if len(worklogs) == 0 {
		return nil, &trackererr.NotFoundError{Kind: "time entry", ID: id}
	}

	return worklogs[0], nil
}

// UpdateWorklogOn rewrites a worklog on a known issue.
func (c *Client) UpdateWorklogOn(ctx context.Context, issueID, worklogID string, payload map[string]any) error {
	resp, err := c.http.PutJSON(ctx, apiPrefix+"/issue/"+issueID+"/worklog/"+worklogID, payload)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "time entry", worklogID)
}

// DeleteWorklogOn removes a worklog on a known issue.
func (c *Client) DeleteWorklogOn(ctx context.Context, issueID, worklogID string) error {
	resp, err := c.http.Delete(ctx, apiPrefix+"/issue/"+issueID+"/worklog/"+worklogID)
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "time entry", worklogID)
}

// Attachment fetches attachment metadata.
func (c *Client) Attachment(ctx context.Context, attachmentID int64) (map[string]any, error) {
	id := strconv.FormatInt(attachmentID, 10)

	return c.getJSON(ctx, apiPrefix+"/attachment/"+id, nil, "attachment", id)
}

// Download follows an attachment content URL and returns the bytes in
// memory. The Basic auth credentials also cover the content host.
func (c *Client) Download(ctx context.Context, contentURL string) ([]byte, error) {
	resp, err := c.http.GetURL(ctx, contentURL)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if err := check(resp, "attachment", contentURL); err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// Myself fetches the identity behind the credentials.
func (c *Client) Myself(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, apiPrefix+"/myself", nil, "user", "myself")
}

// AssignableUsers lists users assignable in a project.
func (c *Client) AssignableUsers(ctx context.Context, projectID int64) ([]map[string]any, error) {
	query := url.Values{
		"project":    {strconv.FormatInt(projectID, 10)},
		"maxResults": {"50"},
	}

	resp, err := c.http.Get(ctx, apiPrefix+"/user/assignable/search", query)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if err := check(resp, "project", strconv.FormatInt(projectID, 10)); err != nil {
		return nil, err
	}

	var users []map[string]any
	if err := resp.JSON(&users); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return users, nil
}
