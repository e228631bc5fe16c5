package assemble

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tracknest/tracker-mcp-go/internal/provider"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// Write tools, gated on the issue-write and time-write ports.
const (
	ToolAddComment      = "add_comment"
	ToolUpdateComment   = "update_comment"
	ToolDeleteComment   = "delete_comment"
	ToolUpdateIssue     = "update_issue"
	ToolLogTime         = "log_time"
	ToolUpdateTimeEntry = "update_time_entry"
	ToolDeleteTimeEntry = "delete_time_entry"
)

func (b *builder) registerWriteTools(srv *mcpsdk.Server) {
	if b.ports.IssueWrite != nil {
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolAddComment,
			Description: "Add a comment to an issue.",
		}, b.handleAddComment)
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolUpdateComment,
			Description: "Replace the text of an existing comment.",
		}, b.handleUpdateComment)
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolDeleteComment,
			Description: "Delete a comment.",
		}, b.handleDeleteComment)
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolUpdateIssue,
			Description: "Update issue fields: subject, description, status, assignee, or an added note.",
		}, b.handleUpdateIssue)
	}

	if b.ports.TimeWrite != nil {
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolLogTime,
			Description: "Log work time against an issue.",
		}, b.handleLogTime)
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolUpdateTimeEntry,
			Description: "Update an existing time entry.",
		}, b.handleUpdateTimeEntry)
		mcpsdk.AddTool(srv, &mcpsdk.Tool{
			Name:        ToolDeleteTimeEntry,
			Description: "Delete a time entry.",
		}, b.handleDeleteTimeEntry)
	}
}

// statusOutput is the bare envelope for mutations with no payload.
type statusOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func status(err error) statusOutput {
	if err != nil {
		return statusOutput{Error: err.Error()}
	}

	return statusOutput{Success: true}
}

type addCommentInput struct {
	IssueID int64  `json:"issue_id" jsonschema:"Issue id"`
	Comment string `json:"comment" jsonschema:"Comment text"`
	Private bool   `json:"private,omitempty" jsonschema:"Mark the comment private where the provider supports it"`
}

func (b *builder) handleAddComment(ctx context.Context, _ *mcpsdk.CallToolRequest, in addCommentInput) (*mcpsdk.CallToolResult, statusOutput, error) {
	if in.Comment == "" {
		return nil, status(&trackererr.ValidationError{Message: "comment must not be empty"}), nil
	}

	return nil, status(b.ports.IssueWrite.AddComment(ctx, in.IssueID, in.Comment, in.Private)), nil
}

type updateCommentInput struct {
	CommentID int64  `json:"comment_id" jsonschema:"Comment id"`
	Comment   string `json:"comment" jsonschema:"Replacement text"`
}

func (b *builder) handleUpdateComment(ctx context.Context, _ *mcpsdk.CallToolRequest, in updateCommentInput) (*mcpsdk.CallToolResult, statusOutput, error) {
	if in.Comment == "" {
		return nil, status(&trackererr.ValidationError{Message: "comment must not be empty"}), nil
	}

	return nil, status(b.ports.IssueWrite.UpdateComment(ctx, in.CommentID, in.Comment)), nil
}

type deleteCommentInput struct {
	CommentID int64 `json:"comment_id" jsonschema:"Comment id"`
}

func (b *builder) handleDeleteComment(ctx context.Context, _ *mcpsdk.CallToolRequest, in deleteCommentInput) (*mcpsdk.CallToolResult, statusOutput, error) {
	return nil, status(b.ports.IssueWrite.DeleteComment(ctx, in.CommentID)), nil
}

type updateIssueInput struct {
	IssueID     int64   `json:"issue_id" jsonschema:"Issue id"`
	Subject     *string `json:"subject,omitempty" jsonschema:"New subject"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	StatusID    *int64  `json:"status_id,omitempty" jsonschema:"Target status id, must be among the issue's allowed_statuses"`
	AssigneeID  *int64  `json:"assignee_id,omitempty" jsonschema:"New assignee id"`
	Notes       *string `json:"notes,omitempty" jsonschema:"Note appended alongside the update"`
}

func (b *builder) handleUpdateIssue(ctx context.Context, _ *mcpsdk.CallToolRequest, in updateIssueInput) (*mcpsdk.CallToolResult, statusOutput, error) {
	update := provider.IssueUpdate{
		Subject:     in.Subject,
		Description: in.Description,
		StatusID:    in.StatusID,
		AssigneeID:  in.AssigneeID,
		Notes:       in.Notes,
	}
	if update.Empty() {
		return nil, status(trackererr.ErrNoUpdateFields), nil
	}

	return nil, status(b.ports.IssueWrite.UpdateIssue(ctx, in.IssueID, update)), nil
}

type logTimeInput struct {
	IssueID  int64          `json:"issue_id" jsonschema:"Issue id"`
	Hours    float64        `json:"hours" jsonschema:"Hours worked, must be positive"`
	Comment  string         `json:"comment,omitempty" jsonschema:"Work description"`
	SpentAt  string         `json:"spent_at,omitempty" jsonschema:"ISO date the work happened (defaults to today)"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"Provider-specific fields, e.g. activity_id"`
}

type logTimeOutput struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Entry   *timeEntryView `json:"entry,omitempty"`
}

func (b *builder) handleLogTime(ctx context.Context, _ *mcpsdk.CallToolRequest, in logTimeInput) (*mcpsdk.CallToolResult, logTimeOutput, error) {
	spentAt := time.Now()
	if in.SpentAt != "" {
		parsed, err := parseDate(in.SpentAt, "spent_at")
		if err != nil {
			return nil, logTimeOutput{Error: err.Error()}, nil
		}
		spentAt = parsed
	}

	entry, err := b.times.LogTime(ctx, in.IssueID, in.Hours, in.Comment, spentAt, in.Metadata)
	if err != nil {
		return nil, logTimeOutput{Error: err.Error()}, nil
	}

	view := viewTimeEntry(entry)

	return nil, logTimeOutput{Success: true, Entry: &view}, nil
}

type updateTimeEntryInput struct {
	TimeEntryID int64    `json:"time_entry_id" jsonschema:"Time entry id"`
	Hours       *float64 `json:"hours,omitempty" jsonschema:"New duration in hours"`
	Comment     *string  `json:"comment,omitempty" jsonschema:"New work description"`
	ActivityID  *int64   `json:"activity_id,omitempty" jsonschema:"New activity id"`
	SpentOn     *string  `json:"spent_on,omitempty" jsonschema:"New ISO date"`
}

func (b *builder) handleUpdateTimeEntry(ctx context.Context, _ *mcpsdk.CallToolRequest, in updateTimeEntryInput) (*mcpsdk.CallToolResult, statusOutput, error) {
	update := provider.TimeEntryUpdate{
		Hours:      in.Hours,
		Comment:    in.Comment,
		ActivityID: in.ActivityID,
	}
	if in.SpentOn != nil {
		parsed, err := parseDate(*in.SpentOn, "spent_on")
		if err != nil {
			return nil, status(err), nil
		}
		update.SpentOn = &parsed
	}

	return nil, status(b.times.Update(ctx, in.TimeEntryID, update)), nil
}

type deleteTimeEntryInput struct {
	TimeEntryID int64 `json:"time_entry_id" jsonschema:"Time entry id"`
}

func (b *builder) handleDeleteTimeEntry(ctx context.Context, _ *mcpsdk.CallToolRequest, in deleteTimeEntryInput) (*mcpsdk.CallToolResult, statusOutput, error) {
	return nil, status(b.times.Delete(ctx, in.TimeEntryID)), nil
}
