package monday

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// ProviderKey identifies Monday.com in credentials and the normalizer
// table.
const ProviderKey = "monday"

// Monday is read-only: boards, items, time tracking history, assets,
// and the current user. No write ports, no activities, no statuses,
// no wiki.
var (
	_ provider.Adapter           = (*Adapter)(nil)
	_ provider.ProjectPort       = (*Adapter)(nil)
	_ provider.IssueReadPort     = (*Adapter)(nil)
	_ provider.TimeEntryReadPort = (*Adapter)(nil)
	_ provider.AttachmentPort    = (*Adapter)(nil)
	_ provider.UserPort          = (*Adapter)(nil)
)

// Descriptor returns the Monday registration metadata.
func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Key:   ProviderKey,
		Label: "Monday.com",
		OrgFields: []provider.Field{
			{Key: "endpoint", Label: "API Endpoint", Required: false},
		},
		UserFields: []provider.Field{
			{Key: "api_token", Label: "API Token", Required: true, Sensitive: true},
		},
	}
}

// Adapter implements the read-only Monday port subset.
type Adapter struct {
	client *Client
	reg    *normalize.Registry
}

// New validates the credential and constructs the adapter. The
// endpoint is optional and defaults to the public API.
func New(cred domain.UserCredential, reg *normalize.Registry, logger *slog.Logger) (*Adapter, error) {
	apiToken := cred.Secret("api_token")
	if apiToken == "" {
		return nil, &trackererr.ConfigurationError{Provider: ProviderKey, Field: "api_token"}
	}

	return &Adapter{
		client: NewClient(cred.Org("endpoint"), apiToken, logger),
		reg:    reg,
	}, nil
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return ProviderKey }

// Capabilities implements provider.Adapter.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:          ProviderKey,
		MaxDailyHours: 24,
	}
}

// GetProjects implements provider.ProjectPort. Boards map to
// projects.
func (a *Adapter) GetProjects(ctx context.Context) ([]domain.Project, error) {
	rawBoards, err := a.client.Boards(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(rawBoards))
	for _, raw := range rawBoards {
		project, err := a.reg.Project(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// GetIssues implements provider.IssueReadPort. Items map to issues;
// Monday has no assignee filter on this surface, so UserID is applied
// client-side against the people column text.
func (a *Adapter) GetIssues(ctx context.Context, filter provider.IssueFilter) ([]domain.Issue, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rawItems, err := a.client.BoardItems(ctx, filter.ProjectID, limit)
	if err != nil {
		return nil, err
	}

	issues := make([]domain.Issue, 0, len(rawItems))
	for _, raw := range rawItems {
		issue, err := a.reg.Issue(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		if filter.UserID != "" && issue.Assignee != filter.UserID {
			continue
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

// GetIssue implements provider.IssueReadPort.
func (a *Adapter) GetIssue(ctx context.Context, issueID int64) (domain.Issue, error) {
	raw, err := a.client.Item(ctx, issueID)
	if err != nil {
		return domain.Issue{}, err
	}

	return a.reg.Issue(ProviderKey, raw)
}

// GetTimeEntries implements provider.TimeEntryReadPort. Time tracking
// history records become entries; the item id and name are folded
// into each record before conversion, and the window and user filters
// are applied client-side because the API has neither.
func (a *Adapter) GetTimeEntries(ctx context.Context, from, to time.Time, userID string) ([]domain.TimeEntry, error) {
	rawItems, err := a.client.TimeTracking(ctx)
	if err != nil {
		return nil, err
	}

	var entries []domain.TimeEntry
	for _, rawItem := range rawItems {
		itemID := normalize.Str(rawItem, "id")
		itemName := normalize.Str(rawItem, "name")
		boardID := normalize.Str(normalize.Map(rawItem, "board"), "id")

		for _, column := range normalize.Slice(rawItem, "column_values") {
			for _, record := range normalize.Slice(column, "history") {
				record["item_id"] = itemID
				record["item_name"] = itemName
				record["board_id"] = boardID

				entry, err := a.reg.TimeEntry(ProviderKey, record)
				if err != nil {
					return nil, err
				}
				if entry.SpentAt.IsZero() || entry.SpentAt.Before(from) || !entry.SpentAt.Before(to.AddDate(0, 0, 1)) {
					continue
				}
				if userID != "" && entry.User != userID {
					continue
				}
				entries = append(entries, entry)
			}
		}
	}

	return entries, nil
}

// GetAttachment implements provider.AttachmentPort. Assets map to
// attachments.
func (a *Adapter) GetAttachment(ctx context.Context, attachmentID int64) (domain.Attachment, error) {
	raw, err := a.client.Asset(ctx, attachmentID)
	if err != nil {
		return domain.Attachment{}, err
	}

	return a.reg.Attachment(ProviderKey, raw)
}

// DownloadAttachment implements provider.AttachmentPort.
func (a *Adapter) DownloadAttachment(ctx context.Context, attachmentID int64) ([]byte, error) {
	attachment, err := a.GetAttachment(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if attachment.ContentURL == "" {
		return nil, &trackererr.NotFoundError{Kind: "attachment content", ID: strconv.FormatInt(attachmentID, 10)}
	}

	return a.client.Download(ctx, attachment.ContentURL)
}

// GetCurrentUser implements provider.UserPort.
func (a *Adapter) GetCurrentUser(ctx context.Context) (domain.ProviderUser, error) {
	raw, err := a.client.Me(ctx)
	if err != nil {
		return domain.ProviderUser{}, err
	}

	return a.reg.User(ProviderKey, raw)
}
