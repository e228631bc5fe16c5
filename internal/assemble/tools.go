package assemble

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// Baseline tools, registered for every provider.
const (
	ToolListProjects    = "list_projects"
	ToolListIssues      = "list_issues"
	ToolGetIssueDetails = "get_issue_details"
	ToolListTimeEntries = "list_time_entries"
	ToolGetAttachment   = "get_attachment"
	ToolGetCurrentUser  = "get_current_user"
)

// inlineAttachmentLimit caps the attachment content returned inline.
const inlineAttachmentLimit = 1 << 20

func (b *builder) registerBaselineTools(srv *mcpsdk.Server) {
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolListProjects,
		Description: "List the projects visible to the user.",
	}, b.handleListProjects)
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolListIssues,
		Description: "List issues, optionally narrowed to one project or assignee.",
	}, b.handleListIssues)
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolGetIssueDetails,
		Description: "Fetch one issue with comments, attachments, and allowed status transitions.",
	}, b.handleGetIssueDetails)
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolListTimeEntries,
		Description: "List time entries in a date window, optionally grouped by day or project.",
		InputSchema: listTimeEntriesSchema,
	}, b.handleListTimeEntries)
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolGetAttachment,
		Description: "Fetch attachment metadata; content up to 1 MiB is returned inline base64-encoded.",
	}, b.handleGetAttachment)
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolGetCurrentUser,
		Description: "Resolve the acting identity inside the tracker.",
	}, b.handleGetCurrentUser)
}

// Presentation views. The domain types stay tag-free; the wire shape
// is owned here.

type projectView struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Parent *projectView `json:"parent,omitempty"`
}

func viewProject(p domain.Project) projectView {
	view := projectView{ID: p.ID, Name: p.Name}
	if p.Parent != nil {
		parent := viewProject(*p.Parent)
		view.Parent = &parent
	}

	return view
}

type attachmentView struct {
	ID          int64  `json:"id"`
	Filename    string `json:"filename"`
	Filesize    int64  `json:"filesize"`
	ContentType string `json:"content_type,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func viewAttachment(a domain.Attachment) attachmentView {
	return attachmentView{
		ID:          a.ID,
		Filename:    a.Filename,
		Filesize:    a.Filesize,
		ContentType: a.ContentType,
		Description: a.Description,
		Author:      a.Author,
		CreatedAt:   viewTime(a.CreatedAt),
	}
}

type commentView struct {
	ID          int64            `json:"id"`
	Notes       string           `json:"notes"`
	Author      string           `json:"author,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
	Attachments []attachmentView `json:"attachments,omitempty"`
}

func viewComment(c domain.Comment) commentView {
	view := commentView{
		ID:        c.ID,
		Notes:     c.Notes,
		Author:    c.Author,
		CreatedAt: viewTime(c.CreatedAt),
	}
	for _, a := range c.Attachments {
		view.Attachments = append(view.Attachments, viewAttachment(a))
	}

	return view
}

type statusView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

type issueView struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Project         projectView      `json:"project"`
	Status          string           `json:"status,omitempty"`
	Assignee        string           `json:"assignee,omitempty"`
	Type            string           `json:"type,omitempty"`
	Priority        string           `json:"priority,omitempty"`
	Comments        []commentView    `json:"comments,omitempty"`
	Attachments     []attachmentView `json:"attachments,omitempty"`
	AllowedStatuses []statusView     `json:"allowed_statuses,omitempty"`
}

func viewIssue(i domain.Issue) issueView {
	view := issueView{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Project:     viewProject(i.Project),
		Status:      i.Status,
		Assignee:    i.Assignee,
		Type:        i.Type,
		Priority:    i.Priority,
	}
	for _, c := range i.Comments {
		view.Comments = append(view.Comments, viewComment(c))
	}
	for _, a := range i.Attachments {
		view.Attachments = append(view.Attachments, viewAttachment(a))
	}
	for _, s := range i.AllowedStatuses {
		view.AllowedStatuses = append(view.AllowedStatuses, statusView{ID: s.ID, Name: s.Name, Closed: s.Closed})
	}

	return view
}

type timeEntryView struct {
	ID        int64   `json:"id"`
	IssueID   int64   `json:"issue_id"`
	ProjectID int64   `json:"project_id,omitempty"`
	Hours     float64 `json:"hours"`
	Comment   string  `json:"comment,omitempty"`
	SpentOn   string  `json:"spent_on"`
	Activity  string  `json:"activity,omitempty"`
	User      string  `json:"user,omitempty"`
}

func viewTimeEntry(e domain.TimeEntry) timeEntryView {
	return timeEntryView{
		ID:        e.ID,
		IssueID:   e.IssueID,
		ProjectID: e.ProjectID,
		Hours:     e.Hours(),
		Comment:   e.Comment,
		SpentOn:   e.SpentOn(),
		Activity:  e.Activity,
		User:      e.User,
	}
}

func viewTimeEntries(entries []domain.TimeEntry) []timeEntryView {
	views := make([]timeEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, viewTimeEntry(e))
	}

	return views
}

func viewTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.RFC3339)
}

// Handlers. Errors never escape to the protocol layer: every failure
// becomes {success:false, error} so the session survives individual
// tool failures.

type listProjectsInput struct{}

type listProjectsOutput struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Projects []projectView `json:"projects,omitempty"`
}

func (b *builder) handleListProjects(ctx context.Context, _ *mcpsdk.CallToolRequest, _ listProjectsInput) (*mcpsdk.CallToolResult, listProjectsOutput, error) {
	projects, err := b.ports.Projects.GetProjects(ctx)
	if err != nil {
		return nil, listProjectsOutput{Error: err.Error()}, nil
	}

	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, viewProject(p))
	}

	return nil, listProjectsOutput{Success: true, Projects: views}, nil
}

type listIssuesInput struct {
	ProjectID int64  `json:"project_id,omitempty" jsonschema:"Narrow to one project"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum issues to return (default 50)"`
	UserID    string `json:"user_id,omitempty" jsonschema:"Narrow to one assignee"`
}

type listIssuesOutput struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Issues  []issueView `json:"issues,omitempty"`
}

func (b *builder) handleListIssues(ctx context.Context, _ *mcpsdk.CallToolRequest, in listIssuesInput) (*mcpsdk.CallToolResult, listIssuesOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}

	issues, err := b.ports.IssueRead.GetIssues(ctx, provider.IssueFilter{
		ProjectID: in.ProjectID,
		Limit:     limit,
		UserID:    in.UserID,
	})
	if err != nil {
		return nil, listIssuesOutput{Error: err.Error()}, nil
	}

	views := make([]issueView, 0, len(issues))
	for _, i := range issues {
		views = append(views, viewIssue(i))
	}

	return nil, listIssuesOutput{Success: true, Issues: views}, nil
}

type getIssueDetailsInput struct {
	IssueID int64 `json:"issue_id" jsonschema:"Issue id"`
}

type getIssueDetailsOutput struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Issue   *issueView `json:"issue,omitempty"`
}

func (b *builder) handleGetIssueDetails(ctx context.Context, _ *mcpsdk.CallToolRequest, in getIssueDetailsInput) (*mcpsdk.CallToolResult, getIssueDetailsOutput, error) {
	issue, err := b.ports.IssueRead.GetIssue(ctx, in.IssueID)
	if err != nil {
		return nil, getIssueDetailsOutput{Error: err.Error()}, nil
	}

	view := viewIssue(issue)

	return nil, getIssueDetailsOutput{Success: true, Issue: &view}, nil
}

type listTimeEntriesInput struct {
	From    string `json:"from"`
	To      string `json:"to"`
	UserID  string `json:"user_id,omitempty"`
	GroupBy string `json:"group_by,omitempty"`
}

// listTimeEntriesSchema is declared explicitly because schema
// inference cannot express the group_by enum.
var listTimeEntriesSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"from":     {Type: "string", Description: "Window start, ISO date (YYYY-MM-DD)"},
		"to":       {Type: "string", Description: "Window end, ISO date (YYYY-MM-DD)"},
		"user_id":  {Type: "string", Description: "Narrow to one provider user"},
		"group_by": {Type: "string", Description: "Optional grouping", Enum: []any{"day", "project"}},
	},
	Required: []string{"from", "to"},
}

type listTimeEntriesOutput struct {
	Success  bool                `json:"success"`
	Error    string              `json:"error,omitempty"`
	Entries  []timeEntryView     `json:"entries,omitempty"`
	Days     []dayBucketView     `json:"days,omitempty"`
	Projects []projectBucketView `json:"projects,omitempty"`
}

type dayBucketView struct {
	Date    string          `json:"date"`
	Hours   float64         `json:"hours"`
	Entries []timeEntryView `json:"entries"`
}

type projectBucketView struct {
	ProjectID int64           `json:"project_id"`
	Hours     float64         `json:"hours"`
	Entries   []timeEntryView `json:"entries"`
}

func (b *builder) handleListTimeEntries(ctx context.Context, _ *mcpsdk.CallToolRequest, in listTimeEntriesInput) (*mcpsdk.CallToolResult, listTimeEntriesOutput, error) {
	from, err := parseDate(in.From, "from")
	if err != nil {
		return nil, listTimeEntriesOutput{Error: err.Error()}, nil
	}
	to, err := parseDate(in.To, "to")
	if err != nil {
		return nil, listTimeEntriesOutput{Error: err.Error()}, nil
	}

	switch in.GroupBy {
	case "":
		entries, err := b.times.List(ctx, from, to, in.UserID)
		if err != nil {
			return nil, listTimeEntriesOutput{Error: err.Error()}, nil
		}

		return nil, listTimeEntriesOutput{Success: true, Entries: viewTimeEntries(entries)}, nil
	case "day":
		buckets, err := b.times.GetEntriesByDay(ctx, from, to, in.UserID)
		if err != nil {
			return nil, listTimeEntriesOutput{Error: err.Error()}, nil
		}

		days := make([]dayBucketView, 0, len(buckets))
		for _, bucket := range buckets {
			days = append(days, dayBucketView{Date: bucket.Date, Hours: bucket.Hours, Entries: viewTimeEntries(bucket.Entries)})
		}

		return nil, listTimeEntriesOutput{Success: true, Days: days}, nil
	case "project":
		buckets, err := b.times.GetEntriesByProject(ctx, from, to, in.UserID)
		if err != nil {
			return nil, listTimeEntriesOutput{Error: err.Error()}, nil
		}

		projects := make([]projectBucketView, 0, len(buckets))
		for _, bucket := range buckets {
			projects = append(projects, projectBucketView{ProjectID: bucket.ProjectID, Hours: bucket.Hours, Entries: viewTimeEntries(bucket.Entries)})
		}

		return nil, listTimeEntriesOutput{Success: true, Projects: projects}, nil
	default:
		return nil, listTimeEntriesOutput{Error: `group_by must be "day" or "project"`}, nil
	}
}

func parseDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &trackererr.ValidationError{Message: field + " is required (ISO date, YYYY-MM-DD)"}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &trackererr.ValidationError{Message: field + " must be an ISO date (YYYY-MM-DD)"}
	}

	return t, nil
}

type getAttachmentInput struct {
	AttachmentID int64 `json:"attachment_id" jsonschema:"Attachment id"`
}

type getAttachmentOutput struct {
	Success        bool            `json:"success"`
	Error          string          `json:"error,omitempty"`
	Attachment     *attachmentView `json:"attachment,omitempty"`
	ContentBase64  string          `json:"content_base64,omitempty"`
	ContentOmitted bool            `json:"content_omitted,omitempty"`
}

func (b *builder) handleGetAttachment(ctx context.Context, _ *mcpsdk.CallToolRequest, in getAttachmentInput) (*mcpsdk.CallToolResult, getAttachmentOutput, error) {
	attachment, err := b.ports.Attachments.GetAttachment(ctx, in.AttachmentID)
	if err != nil {
		return nil, getAttachmentOutput{Error: err.Error()}, nil
	}

	view := viewAttachment(attachment)
	out := getAttachmentOutput{Success: true, Attachment: &view}

	if attachment.Filesize > inlineAttachmentLimit {
		out.ContentOmitted = true

		return nil, out, nil
	}

	content, err := b.ports.Attachments.DownloadAttachment(ctx, in.AttachmentID)
	if err != nil {
		return nil, getAttachmentOutput{Error: err.Error()}, nil
	}
	if len(content) > inlineAttachmentLimit {
		out.ContentOmitted = true

		return nil, out, nil
	}
	out.ContentBase64 = base64.StdEncoding.EncodeToString(content)

	return nil, out, nil
}

type getCurrentUserInput struct{}

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type getCurrentUserOutput struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	User    *userView `json:"user,omitempty"`
}

func (b *builder) handleGetCurrentUser(ctx context.Context, _ *mcpsdk.CallToolRequest, _ getCurrentUserInput) (*mcpsdk.CallToolResult, getCurrentUserOutput, error) {
	user, err := b.ports.User.GetCurrentUser(ctx)
	if err != nil {
		return nil, getCurrentUserOutput{Error: err.Error()}, nil
	}

	return nil, getCurrentUserOutput{Success: true, User: &userView{ID: user.ID, Name: user.Name, Email: user.Email}}, nil
}
