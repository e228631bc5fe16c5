package domain

import "time"

// Project is a provider-agnostic project record. Parent is itself a
// Project or nil, forming a tree by id lookup; there is no live
// back-reference from parent to children.
type Project struct {
	ID     int64
	Name   string
	Parent *Project
}

// Issue is a provider-agnostic work item. Comments, Attachments, and
// AllowedStatuses preserve the order the provider returned them in.
// AllowedStatuses lists workflow-permitted transitions and is empty
// when the provider does not expose workflow information.
type Issue struct {
	ID              int64
	Title           string
	Description     string
	Project         Project
	Status          string
	Assignee        string
	Type            string
	Priority        string
	Comments        []Comment
	Attachments     []Attachment
	AllowedStatuses []Status
}

// Comment is a single note on an issue. Redmine calls these journals;
// the two names carry the same semantic type and this is the only
// representation of both.
type Comment struct {
	ID          int64
	Notes       string
	Author      string
	CreatedAt   *time.Time
	Attachments []Attachment
}

// Attachment describes a file attached to an issue or comment.
type Attachment struct {
	ID          int64
	Filename    string
	Filesize    int64
	ContentType string
	Description string
	ContentURL  string
	Author      string
	CreatedAt   *time.Time
}

// TimeEntry is a logged unit of work against an issue. Metadata is a
// provider-specific bag (for example Redmine's activity id).
type TimeEntry struct {
	ID        int64
	IssueID   int64
	ProjectID int64
	Seconds   int64
	Comment   string
	SpentAt   time.Time
	Activity  string
	User      string
	Metadata  map[string]any
}

// Hours returns the entry duration in hours, derived from Seconds.
func (e TimeEntry) Hours() float64 {
	return float64(e.Seconds) / 3600
}

// SpentOn returns the spent-at date as an ISO date string. Sorting
// these lexicographically equals sorting them chronologically.
func (e TimeEntry) SpentOn() string {
	return e.SpentAt.Format("2006-01-02")
}

// Activity is a time-entry activity. Only meaningful for providers
// that require selecting an activity when logging time.
type Activity struct {
	ID      int64
	Name    string
	Default bool
}

// Status is an issue status.
type Status struct {
	ID     int64
	Name   string
	Closed bool
}

// ProviderUser is the external identity inside the tracker, distinct
// from the platform's authenticated user.
type ProviderUser struct {
	ID    int64
	Name  string
	Email string
}

// ProjectMember is a user's membership in a project with role labels.
type ProjectMember struct {
	ID    int64
	Name  string
	Roles []string
}

// WikiPage is a project wiki page. Text is empty on index listings.
type WikiPage struct {
	Title     string
	Text      string
	Version   int
	Author    string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// UserCredential is the resolved per-request credential seed from
// which an adapter is built. OrgConfig is shared across an
// organization's users (for example the base URL); UserCredentials
// vary per user (for example the API key). The two maps stay separate
// because multi-tenant deployments share the former and not the latter.
type UserCredential struct {
	UserID          string
	Provider        string
	OrgConfig       map[string]string
	UserCredentials map[string]string
	Role            string
}

// Org returns an org-level config value, or "" when absent.
func (c UserCredential) Org(key string) string {
	return c.OrgConfig[key]
}

// Secret returns a user-level credential value, or "" when absent.
func (c UserCredential) Secret(key string) string {
	return c.UserCredentials[key]
}
