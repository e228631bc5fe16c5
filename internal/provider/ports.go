package provider

import (
	"context"
	"time"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
)

// IssueFilter narrows an issue listing. Zero values mean "no filter";
// Limit defaults at the tool layer, not here.
type IssueFilter struct {
	ProjectID int64
	Limit     int
	UserID    string
}

// IssueUpdate carries the mutable issue fields. Nil means "leave
// unchanged".
type IssueUpdate struct {
	Subject     *string
	Description *string
	StatusID    *int64
	AssigneeID  *int64
	Notes       *string
}

// Empty reports whether the update carries no changes.
func (u IssueUpdate) Empty() bool {
	return u.Subject == nil && u.Description == nil && u.StatusID == nil &&
		u.AssigneeID == nil && u.Notes == nil
}

// TimeEntryUpdate carries the mutable time-entry fields. Nil means
// "leave unchanged".
type TimeEntryUpdate struct {
	Hours      *float64
	Comment    *string
	ActivityID *int64
	SpentOn    *time.Time
}

// Empty reports whether the update carries no changes.
func (u TimeEntryUpdate) Empty() bool {
	return u.Hours == nil && u.Comment == nil && u.ActivityID == nil && u.SpentOn == nil
}

// ProjectPort lists the projects visible to the acting user.
type ProjectPort interface {
	GetProjects(ctx context.Context) ([]domain.Project, error)
}

// IssueReadPort reads issues. GetIssue fails with a NotFoundError when
// the issue is absent upstream.
type IssueReadPort interface {
	GetIssues(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	GetIssue(ctx context.Context, issueID int64) (domain.Issue, error)
}

// IssueWritePort mutates issues and their comments.
type IssueWritePort interface {
	AddComment(ctx context.Context, issueID int64, text string, private bool) error
	UpdateComment(ctx context.Context, commentID int64, text string) error
	DeleteComment(ctx context.Context, commentID int64) error
	UpdateIssue(ctx context.Context, issueID int64, update IssueUpdate) error
}

// TimeEntryReadPort lists time entries in [from, to], optionally
// narrowed to one provider user.
type TimeEntryReadPort interface {
	GetTimeEntries(ctx context.Context, from, to time.Time, userID string) ([]domain.TimeEntry, error)
}

// TimeEntryWritePort logs and mutates time entries. LogTime takes the
// duration in seconds; hours-to-seconds conversion and validation
// happen in the domain service before this port is reached.
type TimeEntryWritePort interface {
	LogTime(ctx context.Context, issueID, seconds int64, comment string, spentAt time.Time, metadata map[string]any) (domain.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, entryID int64, update TimeEntryUpdate) error
	DeleteTimeEntry(ctx context.Context, entryID int64) error
}

// ActivityPort lists time-entry activities for providers that require
// selecting one when logging time.
type ActivityPort interface {
	GetActivities(ctx context.Context) ([]domain.Activity, error)
	GetProjectActivities(ctx context.Context, projectID int64) ([]domain.Activity, error)
}

// StatusPort lists the provider's issue statuses.
type StatusPort interface {
	GetStatuses(ctx context.Context) ([]domain.Status, error)
}

// AttachmentPort reads attachment metadata and content. Download
// returns the full content in memory.
type AttachmentPort interface {
	GetAttachment(ctx context.Context, attachmentID int64) (domain.Attachment, error)
	DownloadAttachment(ctx context.Context, attachmentID int64) ([]byte, error)
}

// UserPort resolves the acting identity inside the tracker.
type UserPort interface {
	GetCurrentUser(ctx context.Context) (domain.ProviderUser, error)
}

// MemberPort lists a project's members with their role labels.
type MemberPort interface {
	GetProjectMembers(ctx context.Context, projectID int64) ([]domain.ProjectMember, error)
}

// WikiPort reads a project's wiki. GetWikiPages returns the index
// (titles only); GetWikiPage returns one page with text.
type WikiPort interface {
	GetWikiPages(ctx context.Context, projectID int64) ([]domain.WikiPage, error)
	GetWikiPage(ctx context.Context, projectID int64, title string) (domain.WikiPage, error)
}
