package redmine

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// ProviderKey identifies Redmine in credentials and the normalizer table.
const ProviderKey = "redmine"

// Compile-time verification of the implemented port set. Redmine is
// the fullest provider: every optional port is present.
var (
	_ provider.Adapter            = (*Adapter)(nil)
	_ provider.ProjectPort        = (*Adapter)(nil)
	_ provider.IssueReadPort      = (*Adapter)(nil)
	_ provider.IssueWritePort     = (*Adapter)(nil)
	_ provider.TimeEntryReadPort  = (*Adapter)(nil)
	_ provider.TimeEntryWritePort = (*Adapter)(nil)
	_ provider.ActivityPort       = (*Adapter)(nil)
	_ provider.StatusPort         = (*Adapter)(nil)
	_ provider.AttachmentPort     = (*Adapter)(nil)
	_ provider.UserPort           = (*Adapter)(nil)
	_ provider.MemberPort         = (*Adapter)(nil)
	_ provider.WikiPort           = (*Adapter)(nil)
)

// Descriptor returns the Redmine registration metadata.
func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Key:   ProviderKey,
		Label: "Redmine",
		OrgFields: []provider.Field{
			{Key: "base_url", Label: "Redmine URL", Required: true},
		},
		UserFields: []provider.Field{
			{Key: "api_key", Label: "API Key", Required: true, Sensitive: true},
		},
	}
}

// Adapter implements every port against a Redmine instance.
type Adapter struct {
	client *Client
	reg    *normalize.Registry
}

// New validates the credential and constructs the adapter. This is
// pure construction: no I/O happens here.
func New(cred domain.UserCredential, reg *normalize.Registry, logger *slog.Logger) (*Adapter, error) {
	baseURL := cred.Org("base_url")
	if baseURL == "" {
		return nil, &trackererr.ConfigurationError{Provider: ProviderKey, Field: "base_url"}
	}
	apiKey := cred.Secret("api_key")
	if apiKey == "" {
		return nil, &trackererr.ConfigurationError{Provider: ProviderKey, Field: "api_key"}
	}

	return &Adapter{
		client: NewClient(baseURL, apiKey, logger),
		reg:    reg,
	}, nil
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return ProviderKey }

// Capabilities implements provider.Adapter. Redmine requires an
// activity on every time entry.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:                     ProviderKey,
		RequiresActivity:         true,
		SupportsProjectHierarchy: true,
		MaxDailyHours:            24,
	}
}

// GetProjects implements provider.ProjectPort.
func (a *Adapter) GetProjects(ctx context.Context) ([]domain.Project, error) {
	rawProjects, err := a.client.Projects(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(rawProjects))
	for _, raw := range rawProjects {
		project, err := a.reg.Project(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// GetIssues implements provider.IssueReadPort.
func (a *Adapter) GetIssues(ctx context.Context, filter provider.IssueFilter) ([]domain.Issue, error) {
	query := url.Values{}
	if filter.ProjectID != 0 {
		query.Set("project_id", strconv.FormatInt(filter.ProjectID, 10))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.UserID != "" {
		query.Set("assigned_to_id", filter.UserID)
	}

	rawIssues, err := a.client.Issues(ctx, query)
	if err != nil {
		return nil, err
	}

	issues := make([]domain.Issue, 0, len(rawIssues))
	for _, raw := range rawIssues {
		issue, err := a.reg.Issue(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

// GetIssue implements provider.IssueReadPort.
func (a *Adapter) GetIssue(ctx context.Context, issueID int64) (domain.Issue, error) {
	raw, err := a.client.Issue(ctx, issueID)
	if err != nil {
		return domain.Issue{}, err
	}

	return a.reg.Issue(ProviderKey, raw)
}

// AddComment implements provider.IssueWritePort. Redmine models a new
// comment as the notes field of an issue update.
func (a *Adapter) AddComment(ctx context.Context, issueID int64, text string, private bool) error {
	fields := map[string]any{"notes": text}
	if private {
		fields["private_notes"] = true
	}

	return a.client.UpdateIssue(ctx, issueID, fields)
}

// UpdateComment implements provider.IssueWritePort.
func (a *Adapter) UpdateComment(ctx context.Context, commentID int64, text string) error {
	return a.client.UpdateJournal(ctx, commentID, text)
}

// DeleteComment implements provider.IssueWritePort. Redmine removes a
// journal note by blanking it.
func (a *Adapter) DeleteComment(ctx context.Context, commentID int64) error {
	return a.client.UpdateJournal(ctx, commentID, "")
}

// UpdateIssue implements provider.IssueWritePort.
func (a *Adapter) UpdateIssue(ctx context.Context, issueID int64, update provider.IssueUpdate) error {
	fields := map[string]any{}
	if update.Subject != nil {
		fields["subject"] = *update.Subject
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.StatusID != nil {
		fields["status_id"] = *update.StatusID
	}
	if update.AssigneeID != nil {
		fields["assigned_to_id"] = *update.AssigneeID
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}

	return a.client.UpdateIssue(ctx, issueID, fields)
}

// GetTimeEntries implements provider.TimeEntryReadPort.
func (a *Adapter) GetTimeEntries(ctx context.Context, from, to time.Time, userID string) ([]domain.TimeEntry, error) {
	query := url.Values{
		"from":  {formatSpentOn(from)},
		"to":    {formatSpentOn(to)},
		"limit": {"100"},
	}
	if userID != "" {
		query.Set("user_id", userID)
	}

	rawEntries, err := a.client.TimeEntries(ctx, query)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimeEntry, 0, len(rawEntries))
	for _, raw := range rawEntries {
		entry, err := a.reg.TimeEntry(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// LogTime implements provider.TimeEntryWritePort.
func (a *Adapter) LogTime(ctx context.Context, issueID, seconds int64, comment string, spentAt time.Time, metadata map[string]any) (domain.TimeEntry, error) {
	fields := map[string]any{
		"issue_id": issueID,
		"hours":    float64(seconds) / 3600,
		"comments": comment,
		"spent_on": formatSpentOn(spentAt),
	}
	if activityID, ok := metadata["activity_id"]; ok {
		fields["activity_id"] = activityID
	}

	raw, err := a.client.CreateTimeEntry(ctx, fields)
	if err != nil {
		return domain.TimeEntry{}, err
	}

	return a.reg.TimeEntry(ProviderKey, raw)
}

// UpdateTimeEntry implements provider.TimeEntryWritePort.
func (a *Adapter) UpdateTimeEntry(ctx context.Context, entryID int64, update provider.TimeEntryUpdate) error {
	fields := map[string]any{}
	if update.Hours != nil {
		fields["hours"] = *update.Hours
	}
	if update.Comment != nil {
		fields["comments"] = *update.Comment
	}
	if update.ActivityID != nil {
		fields["activity_id"] = *update.ActivityID
	}
	if update.SpentOn != nil {
		fields["spent_on"] = formatSpentOn(*update.SpentOn)
	}

	return a.client.UpdateTimeEntry(ctx, entryID, fields)
}

// DeleteTimeEntry implements provider.TimeEntryWritePort.
func (a *Adapter) DeleteTimeEntry(ctx context.Context, entryID int64) error {
	return a.client.DeleteTimeEntry(ctx, entryID)
}

// GetActivities implements provider.ActivityPort.
func (a *Adapter) GetActivities(ctx context.Context) ([]domain.Activity, error) {
	rawActivities, err := a.client.Activities(ctx)
	if err != nil {
		return nil, err
	}

	return a.normalizeActivities(rawActivities)
}

// GetProjectActivities implements provider.ActivityPort. Projects
// without overrides inherit the global enumeration.
func (a *Adapter) GetProjectActivities(ctx context.Context, projectID int64) ([]domain.Activity, error) {
	rawActivities, err := a.client.ProjectActivities(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(rawActivities) == 0 {
		return a.GetActivities(ctx)
	}

	return a.normalizeActivities(rawActivities)
}

func (a *Adapter) normalizeActivities(rawActivities []map[string]any) ([]domain.Activity, error) {
	activities := make([]domain.Activity, 0, len(rawActivities))
	for _, raw := range rawActivities {
		activity, err := a.reg.Activity(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// GetStatuses implements provider.StatusPort.
func (a *Adapter) GetStatuses(ctx context.Context) ([]domain.Status, error) {
	rawStatuses, err := a.client.Statuses(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.Status, 0, len(rawStatuses))
	for _, raw := range rawStatuses {
		status, err := a.reg.Status(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// GetAttachment implements provider.AttachmentPort.
func (a *Adapter) GetAttachment(ctx context.Context, attachmentID int64) (domain.Attachment, error) {
	raw, err := a.client.Attachment(ctx, attachmentID)
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
	raw, err := a.client.CurrentUser(ctx)
	if err != nil {
		return domain.ProviderUser{}, err
	}

	return a.reg.User(ProviderKey, raw)
}

// GetProjectMembers implements provider.MemberPort.
func (a *Adapter) GetProjectMembers(ctx context.Context, projectID int64) ([]domain.ProjectMember, error) {
	rawMemberships, err := a.client.Memberships(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members := make([]domain.ProjectMember, 0, len(rawMemberships))
	for _, raw := range rawMemberships {
		member, err := a.reg.Member(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, nil
}

// GetWikiPages implements provider.WikiPort.
func (a *Adapter) GetWikiPages(ctx context.Context, projectID int64) ([]domain.WikiPage, error) {
	rawPages, err := a.client.WikiIndex(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.WikiPage, 0, len(rawPages))
	for _, raw := range rawPages {
		page, err := a.reg.WikiPage(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// GetWikiPage implements provider.WikiPort.
func (a *Adapter) GetWikiPage(ctx context.Context, projectID int64, title string) (domain.WikiPage, error) {
	raw, err := a.client.WikiPage(ctx, projectID, title)
	if err != nil {
		return domain.WikiPage{}, err
	}

	return a.reg.WikiPage(ProviderKey, raw)
}
