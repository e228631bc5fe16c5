package redmine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/tracknest/tracker-mcp-go/internal/httpx"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// Client is a thin typed client for the Redmine REST API. It returns
// raw payloads; normalization happens in the registry functions.
type Client struct {
	http *httpx.Client
}

// NewClient builds a Redmine client authenticating with the
// X-Redmine-API-Key header.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http: httpx.NewClient(httpx.ClientConfig{
			BaseURL: baseURL,
			Auth:    httpx.APIKey{Key: apiKey, Header: "X-Redmine-API-Key"},
			Logger:  logger,
		}),
	}
}

// check translates a non-2xx response into the typed error taxonomy.
func check(resp *httpx.Response, kind, id string) error {
	if resp.IsSuccess() {
		return nil
	}

	return trackererr.FromStatus(ProviderKey, resp.StatusCode, kind, id, string(resp.Body))
}

func (c *Client) getObject(ctx context.Context, path string, query url.Values, envelope, kind, id string) (map[string]any, error) {
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

	obj, ok := body[envelope].(map[string]any)
	if !ok {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Detail: fmt.Sprintf("missing %q envelope", envelope)}
	}

	return obj, nil
}

func (c *Client) getList(ctx context.Context, path string, query url.Values, envelope string) ([]map[string]any, error) {
	resp, err := c.http.Get(ctx, path, query)
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if err := check(resp, "", ""); err != nil {
		return nil, err
	}

	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	raw, _ := body[envelope].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}

	return out, nil
}

// Projects lists visible projects.
func (c *Client) Projects(ctx context.Context) ([]map[string]any, error) {
	return c.getList(ctx, "/projects.json", url.Values{"limit": {"100"}}, "projects")
}

// Issues lists issues matching the query.
func (c *Client) Issues(ctx context.Context, query url.Values) ([]map[string]any, error) {
	return c.getList(ctx, "/issues.json", query, "issues")
}

// Issue fetches one issue with journals, attachments, and workflow
// transitions included.
func (c *Client) Issue(ctx context.Context, issueID int64) (map[string]any, error) {
	id := strconv.FormatInt(issueID, 10)
	query := url.Values{"include": {"journals,attachments,allowed_statuses"}}

	return c.getObject(ctx, "/issues/"+id+".json", query, "issue", "issue", id)
}

// UpdateIssue applies a partial issue update. Redmine models new
// comments as the "notes" field of an issue update.
func (c *Client) UpdateIssue(ctx context.Context, issueID int64, fields map[string]any) error {
	id := strconv.FormatInt(issueID, 10)
	resp, err := c.http.PutJSON(ctx, "/issues/"+id+".json", map[string]any{"issue": fields})
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "issue", id)
}

// UpdateJournal rewrites a journal's notes. Blanking the notes is how
// Redmine removes a comment.
func (c *Client) UpdateJournal(ctx context.Context, journalID int64, notes string) error {
	id := strconv.FormatInt(journalID, 10)
	resp, err := c.http.PutJSON(ctx, "/journals/"+id+".json", map[string]any{"journal": map[string]any{"notes": notes}})
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "comment", id)
}

// TimeEntries lists entries matching the query.
func (c *Client) TimeEntries(ctx context.Context, query url.Values) ([]map[string]any, error) {
	return c.getList(ctx, "/time_entries.json", query, "time_entries")
}

// CreateTimeEntry logs time and returns the created raw entry.
func (c *Client) CreateTimeEntry(ctx context.Context, fields map[string]any) (map[string]any, error) {
	resp, err := c.http.PostJSON(ctx, "/time_entries.json", map[string]any{"time_entry": fields})
	if err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	if err := check(resp, "time entry", ""); err != nil {
		return nil, err
	}

	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}
	obj, _ := body["time_entry"].(map[string]any)
	if obj == nil {
		return nil, &trackererr.UpstreamError{Provider: ProviderKey, Detail: `missing "time_entry" envelope`}
	}

	return obj, nil
}

// UpdateTimeEntry applies a partial time-entry update.
func (c *Client) UpdateTimeEntry(ctx context.Context, entryID int64, fields map[string]any) error {
	id := strconv.FormatInt(entryID, 10)
	resp, err := c.http.PutJSON(ctx, "/time_entries/"+id+".json", map[string]any{"time_entry": fields})
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "time entry", id)
}

// DeleteTimeEntry removes a time entry.
func (c *Client) DeleteTimeEntry(ctx context.Context, entryID int64) error {
	id := strconv.FormatInt(entryID, 10)
	resp, err := c.http.Delete(ctx, "/time_entries/"+id+".json")
	if err != nil {
		return &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return check(resp, "time entry", id)
}

// Activities lists the global time-entry activity enumeration.
func (c *Client) Activities(ctx context.Context) ([]map[string]any, error) {
	return c.getList(ctx, "/enumerations/time_entry_activities.json", nil, "time_entry_activities")
}

// ProjectActivities lists a project's activity overrides, empty when
// the project inherits the global enumeration.
func (c *Client) ProjectActivities(ctx context.Context, projectID int64) ([]map[string]any, error) {
	id := strconv.FormatInt(projectID, 10)
	obj, err := c.getObject(ctx, "/projects/"+id+".json", url.Values{"include": {"time_entry_activities"}}, "project", "project", id)
	if err != nil {
		return nil, err
	}

	raw, _ := obj["time_entry_activities"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}

	return out, nil
}

// Statuses lists the issue status enumeration.
func (c *Client) Statuses(ctx context.Context) ([]map[string]any, error) {
	return c.getList(ctx, "/issue_statuses.json", nil, "issue_statuses")
}

// Attachment fetches attachment metadata.
func (c *Client) Attachment(ctx context.Context, attachmentID int64) (map[string]any, error) {
	id := strconv.FormatInt(attachmentID, 10)

	return c.getObject(ctx, "/attachments/"+id+".json", nil, "attachment", "attachment", id)
}

// Download fetches attachment content from its content URL. The API
// key header also authenticates the download path.
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

// CurrentUser fetches the identity behind the API key.
func (c *Client) CurrentUser(ctx context.Context) (map[string]any, error) {
	return c.getObject(ctx, "/users/current.json", nil, "user", "user", "current")
}

// Memberships lists a project's memberships.
func (c *Client) Memberships(ctx context.Context, projectID int64) ([]map[string]any, error) {
	id := strconv.FormatInt(projectID, 10)

	return c.getList(ctx, "/projects/"+id+"/memberships.json", nil, "memberships")
}

// WikiIndex lists a project's wiki page titles.
func (c *Client) WikiIndex(ctx context.Context, projectID int64) ([]map[string]any, error) {
	id := strconv.FormatInt(projectID, 10)

	return c.getList(ctx, "/projects/"+id+"/wiki/index.json", nil, "wiki_pages")
}

// WikiPage fetches one wiki page with its text.
func (c *Client) WikiPage(ctx context.Context, projectID int64, title string) (map[string]any, error) {
	id := strconv.FormatInt(projectID, 10)
	escaped := url.PathEscape(title)

	return c.getObject(ctx, "/projects/"+id+"/wiki/"+escaped+".json", nil, "wiki_page", "wiki page", title)
}
