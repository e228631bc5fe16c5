package jira

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// ProviderKey identifies Jira in credentials and the normalizer table.
const ProviderKey = "jira"

// Compile-time verification of the implemented port set. Jira has no
// activity or status enumeration and no wiki; everything else is
// present.
var (
	_ provider.Adapter            = (*Adapter)(nil)
	_ provider.ProjectPort        = (*Adapter)(nil)
	_ provider.IssueReadPort      = (*Adapter)(nil)
	_ provider.IssueWritePort     = (*Adapter)(nil)
	_ provider.TimeEntryReadPort  = (*Adapter)(nil)
	_ provider.TimeEntryWritePort = (*Adapter)(nil)
	_ provider.AttachmentPort     = (*Adapter)(nil)
	_ provider.UserPort           = (*Adapter)(nil)
	_ provider.MemberPort         = (*Adapter)(nil)
)

// Descriptor returns the Jira registration metadata.
func Descriptor() provider.Descriptor {
	return provider.Descriptor{
		Key:   ProviderKey,
		Label: "Jira Cloud",
		OrgFields: []provider.Field{
			{Key: "base_url", Label: "Jira URL", Required: true},
		},
		UserFields: []provider.Field{
			{Key: "email", Label: "Email", Required: true},
			{Key: "api_token", Label: "API Token", Required: true, Sensitive: true},
		},
	}
}

// Adapter implements the Jira port subset.
type Adapter struct {
	client *Client
	reg    *normalize.Registry
}

// New validates the credential and constructs the adapter. Jira
// requires an email alongside the API token because Atlassian Basic
// auth is email:token.
func New(cred domain.UserCredential, reg *normalize.Registry, logger *slog.Logger) (*Adapter, error) {
	baseURL := cred.Org("base_url")
	if baseURL == "" {
		return nil, &trackererr.ConfigurationError{Provider: ProviderKey, Field: "base_url"}
	}
	email := cred.Secret("email")
	if email == "" {
		return nil, &trackererr.ConfigurationError{Provider: ProviderKey, Field: "email"}
	}
	apiToken := cred.Secret("api_token")
	if apiToken == "" {
		return nil, &trackererr.ConfigurationError{Provider: ProviderKey, Field: "api_token"}
	}

	return &Adapter{
		client: NewClient(baseURL, email, apiToken, logger),
		reg:    reg,
	}, nil
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return ProviderKey }

// Capabilities implements provider.Adapter. Jira has no activity
// concept; worklogs need nothing beyond duration and start.
func (a *Adapter) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Name:          ProviderKey,
		SupportsTags:  true,
		MaxDailyHours: 24,
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
	jql := "order by updated desc"
	if filter.ProjectID != 0 {
		jql = fmt.Sprintf("project = %d %s", filter.ProjectID, jql)
	}
	if filter.UserID != "" {
		jql = fmt.Sprintf("assignee = %q AND %s", filter.UserID, jql)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rawIssues, err := a.client.SearchIssues(ctx, jql, limit, "summary,description,project,status,assignee,issuetype,priority")
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

// AddComment implements provider.IssueWritePort. Jira has no private
// comment flag on the standard comment endpoint; private is ignored.
func (a *Adapter) AddComment(ctx context.Context, issueID int64, text string, _ bool) error {
	return a.client.AddComment(ctx, issueID, map[string]any{"body": TextToADF(text)})
}

// UpdateComment implements provider.IssueWritePort. The owning issue
// is recovered from the comment's self URL.
func (a *Adapter) UpdateComment(ctx context.Context, commentID int64, text string) error {
	issueID, err := a.resolveCommentIssue(ctx, commentID)
	if err != nil {
		return err
	}

	return a.client.UpdateCommentOn(ctx, issueID, strconv.FormatInt(commentID, 10), map[string]any{"body": TextToADF(text)})
}

// DeleteComment implements provider.IssueWritePort.
func (a *Adapter) DeleteComment(ctx context.Context, commentID int64) error {
	issueID, err := a.resolveCommentIssue(ctx, commentID)
	if err != nil {
		return err
	}

	return a.client.DeleteCommentOn(ctx, issueID, strconv.FormatInt(commentID, 10))
}

func (a *Adapter) resolveCommentIssue(ctx context.Context, commentID int64) (string, error) {
	comment, err := a.client.CommentByID(ctx, commentID)
	if err != nil {
		return "", err
	}

	self, _ := comment["self"].(string)
	issueID, err := issueIDFromSelf(self)
	if err != nil {
		return "", &trackererr.UpstreamError{Provider: ProviderKey, Err: err}
	}

	return issueID, nil
}

// UpdateIssue implements provider.IssueWritePort. Field edits go
// through the edit endpoint; a status change runs the matching
// workflow transition.
func (a *Adapter) UpdateIssue(ctx context.Context, issueID int64, update provider.IssueUpdate) error {
	fields := map[string]any{}
	if update.Subject != nil {
		fields["summary"] = *update.Subject
	}
	if update.Description != nil {
		fields["description"] = TextToADF(*update.Description)
	}
	if update.AssigneeID != nil {
		fields["assignee"] = map[string]any{"id": strconv.FormatInt(*update.AssigneeID, 10)}
	}

	if len(fields) > 0 {
		if err := a.client.EditIssue(ctx, issueID, map[string]any{"fields": fields}); err != nil {
			return err
		}
	}

	if update.StatusID != nil {
		if err := a.transitionTo(ctx, issueID, *update.StatusID); err != nil {
			return err
		}
	}

	if update.Notes != nil {
		return a.AddComment(ctx, issueID, *update.Notes, false)
	}

	return nil
}

// transitionTo finds the transition leading to the wanted status and
// executes it.
func (a *Adapter) transitionTo(ctx context.Context, issueID, statusID int64) error {
	raw, err := a.client.Issue(ctx, issueID)
	if err != nil {
		return err
	}
	for _, transition := range normalize.Slice(raw, "transitions") {
		to := normalize.Map(transition, "to")
		if normalize.ID(to, "id") == statusID {
			return a.client.Transition(ctx, issueID, normalize.Str(transition, "id"))
		}
	}

	return &trackererr.ValidationError{
		Message: fmt.Sprintf("status %d is not reachable from the issue's current workflow state", statusID),
	}
}

// GetTimeEntries implements provider.TimeEntryReadPort. Issues with
// worklogs in range are found via JQL, then each issue's worklogs are
// fetched and filtered to the window.
func (a *Adapter) GetTimeEntries(ctx context.Context, from, to time.Time, userID string) ([]domain.TimeEntry, error) {
	jql := fmt.Sprintf("worklogDate >= %q AND worklogDate <= %q", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if userID != "" {
		jql += fmt.Sprintf(" AND worklogAuthor = %q", userID)
	}

	rawIssues, err := a.client.SearchIssues(ctx, jql, 100, "project")
	if err != nil {
		return nil, err
	}

	// Worklog fetches are independent per issue; fan out, then
	// assemble in the search result's order so the output stays
	// deterministic.
	worklogsByIssue := make([][]map[string]any, len(rawIssues))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for i, rawIssue := range rawIssues {
		issueID, _ := rawIssue["id"].(string)
		group.Go(func() error {
			worklogs, err := a.client.IssueWorklogs(groupCtx, issueID)
			if err != nil {
				return err
			}
			worklogsByIssue[i] = worklogs

			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var entries []domain.TimeEntry
	for i, rawIssue := range rawIssues {
		issueID, _ := rawIssue["id"].(string)
		projectID := normalize.ID(normalize.Map(normalize.Map(rawIssue, "fields"), "project"), "id")

		for _, raw := range worklogsByIssue[i] {
			entry, err := a.reg.TimeEntry(ProviderKey, raw)
			if err != nil {
				return nil, err
			}
			if entry.SpentAt.Before(from) || !entry.SpentAt.Before(to.AddDate(0, 0, 1)) {
				continue
			}
			if entry.IssueID == 0 {
				entry.IssueID = normalize.SurrogateID(issueID)
				if n, err := strconv.ParseInt(issueID, 10, 64); err == nil {
					entry.IssueID = n
				}
			}
			entry.ProjectID = projectID
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// jiraStarted is the timestamp format the worklog endpoint requires.
const jiraStarted = "2006-01-02T15:04:05.000-0700"

// LogTime implements provider.TimeEntryWritePort.
func (a *Adapter) LogTime(ctx context.Context, issueID, seconds int64, comment string, spentAt time.Time, _ map[string]any) (domain.TimeEntry, error) {
	payload := map[string]any{
		"timeSpentSeconds": seconds,
		"started":          spentAt.Format(jiraStarted),
	}
	if comment != "" {
		payload["comment"] = TextToADF(comment)
	}

	raw, err := a.client.AddWorklog(ctx, issueID, payload)
	if err != nil {
		return domain.TimeEntry{}, err
	}

	entry, err := a.reg.TimeEntry(ProviderKey, raw)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if entry.IssueID == 0 {
		entry.IssueID = issueID
	}

	return entry, nil
}

// UpdateTimeEntry implements provider.TimeEntryWritePort.
func (a *Adapter) UpdateTimeEntry(ctx context.Context, entryID int64, update provider.TimeEntryUpdate) error {
	worklog, err := a.client.WorklogByID(ctx, entryID)
	if err != nil {
		return err
	}
	issueID := normalize.Str(worklog, "issueId")
	if issueID == "" {
		return &trackererr.UpstreamError{Provider: ProviderKey, Detail: "worklog carries no issue id"}
	}

	payload := map[string]any{}
	if update.Hours != nil {
		payload["timeSpentSeconds"] = int64(*update.Hours * 3600)
	}
	if update.Comment != nil {
		payload["comment"] = TextToADF(*update.Comment)
	}
	if update.SpentOn != nil {
		payload["started"] = update.SpentOn.Format(jiraStarted)
	}

	return a.client.UpdateWorklogOn(ctx, issueID, strconv.FormatInt(entryID, 10), payload)
}

// DeleteTimeEntry implements provider.TimeEntryWritePort.
func (a *Adapter) DeleteTimeEntry(ctx context.Context, entryID int64) error {
	worklog, err := a.client.WorklogByID(ctx, entryID)
	if err != nil {
		return err
	}
	issueID := normalize.Str(worklog, "issueId")
	if issueID == "" {
		return &trackererr.UpstreamError{Provider: ProviderKey, Detail: "worklog carries no issue id"}
	}

	return a.client.DeleteWorklogOn(ctx, issueID, strconv.FormatInt(entryID, 10))
}

// GetAttachment implements provider.AttachmentPort.
func (a *Adapter) GetAttachment(ctx context.Context, attachmentID int64) (domain.Attachment, error) {
	raw, err := a.client.Attachment(ctx, attachmentID)
	if err != nil {
		return domain.Attachment{}, err
	}

	return a.reg.Attachment(ProviderKey, raw)
}

// DownloadAttachment implements provider.AttachmentPort. The content
// is fetched fully into memory.
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
	raw, err := a.client.Myself(ctx)
	if err != nil {
		return domain.ProviderUser{}, err
	}

	return a.reg.User(ProviderKey, raw)
}

// GetProjectMembers implements provider.MemberPort via the assignable
// user search; Jira exposes no role labels on that surface.
func (a *Adapter) GetProjectMembers(ctx context.Context, projectID int64) ([]domain.ProjectMember, error) {
	rawUsers, err := a.client.AssignableUsers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members := make([]domain.ProjectMember, 0, len(rawUsers))
	for _, raw := range rawUsers {
		member, err := a.reg.Member(ProviderKey, raw)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, nil
}
