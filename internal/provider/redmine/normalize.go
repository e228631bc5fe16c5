package redmine

import (
	"time"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
)

// RegisterNormalizers installs the Redmine conversion functions into
// the (kind, provider) table.
func RegisterNormalizers(reg *normalize.Registry) {
	reg.Register(normalize.KindProject, ProviderKey, normalizeProject)
	reg.Register(normalize.KindIssue, ProviderKey, normalizeIssue)
	reg.Register(normalize.KindComment, ProviderKey, normalizeJournal)
	reg.Register(normalize.KindAttachment, ProviderKey, normalizeAttachment)
	reg.Register(normalize.KindTimeEntry, ProviderKey, normalizeTimeEntry)
	reg.Register(normalize.KindActivity, ProviderKey, normalizeActivity)
	reg.Register(normalize.KindStatus, ProviderKey, normalizeStatus)
	reg.Register(normalize.KindUser, ProviderKey, normalizeUser)
	reg.Register(normalize.KindMember, ProviderKey, normalizeMembership)
	reg.Register(normalize.KindWikiPage, ProviderKey, normalizeWikiPage)
}

func normalizeProject(c *normalize.Context, raw map[string]any) (any, error) {
	project := domain.Project{
		ID:   normalize.Int(raw, "id"),
		Name: normalize.Str(raw, "name"),
	}

	if parent := normalize.Map(raw, "parent"); parent != nil {
		nested, err := c.Project(parent)
		if err != nil {
			return nil, err
		}
		project.Parent = &nested
	}

	return project, nil
}

func normalizeIssue(c *normalize.Context, raw map[string]any) (any, error) {
	issue := domain.Issue{
		ID:          normalize.Int(raw, "id"),
		Title:       normalize.Str(raw, "subject"),
		Description: normalize.Str(raw, "description"),
		Status:      nestedName(raw, "status"),
		Assignee:    nestedName(raw, "assigned_to"),
		Type:        nestedName(raw, "tracker"),
		Priority:    nestedName(raw, "priority"),
	}

	if rawProject := normalize.Map(raw, "project"); rawProject != nil {
		project, err := c.Project(rawProject)
		if err != nil {
			return nil, err
		}
		issue.Project = project
	}

	for _, rawJournal := range normalize.Slice(raw, "journals") {
		comment, err := c.Comment(rawJournal)
		if err != nil {
			return nil, err
		}
		issue.Comments = append(issue.Comments, comment)
	}

	for _, rawAttachment := range normalize.Slice(raw, "attachments") {
		attachment, err := c.Attachment(rawAttachment)
		if err != nil {
			return nil, err
		}
		issue.Attachments = append(issue.Attachments, attachment)
	}

	for _, rawStatus := range normalize.Slice(raw, "allowed_statuses") {
		status, err := c.Status(rawStatus)
		if err != nil {
			return nil, err
		}
		issue.AllowedStatuses = append(issue.AllowedStatuses, status)
	}

	return issue, nil
}

// normalizeJournal converts a Redmine journal. "Journal" is Redmine's
// name for what the canonical model calls a comment.
func normalizeJournal(c *normalize.Context, raw map[string]any) (any, error) {
	comment := domain.Comment{
		ID:        normalize.Int(raw, "id"),
		Notes:     normalize.Str(raw, "notes"),
		Author:    nestedName(raw, "user"),
		CreatedAt: normalize.TimePtr(raw, "created_on"),
	}

	for _, rawAttachment := range normalize.Slice(raw, "attachments") {
		attachment, err := c.Attachment(rawAttachment)
		if err != nil {
			return nil, err
		}
		comment.Attachments = append(comment.Attachments, attachment)
	}

	return comment, nil
}

func normalizeAttachment(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.Attachment{
		ID:          normalize.Int(raw, "id"),
		Filename:    normalize.Str(raw, "filename"),
		Filesize:    normalize.Int(raw, "filesize"),
		ContentType: normalize.Str(raw, "content_type"),
		Description: normalize.Str(raw, "description"),
		ContentURL:  normalize.Str(raw, "content_url"),
		Author:      nestedName(raw, "author"),
		CreatedAt:   normalize.TimePtr(raw, "created_on"),
	}, nil
}

func normalizeTimeEntry(_ *normalize.Context, raw map[string]any) (any, error) {
	entry := domain.TimeEntry{
		ID:        normalize.Int(raw, "id"),
		Comment:   normalize.Str(raw, "comments"),
		Activity:  nestedName(raw, "activity"),
		User:      nestedName(raw, "user"),
		Seconds:   int64(normalize.Float(raw, "hours") * 3600),
		IssueID:   normalize.Int(normalize.Map(raw, "issue"), "id"),
		ProjectID: normalize.Int(normalize.Map(raw, "project"), "id"),
	}

	if spent := normalize.TimePtr(raw, "spent_on"); spent != nil {
		entry.SpentAt = *spent
	}

	if activity := normalize.Map(raw, "activity"); activity != nil {
		entry.Metadata = map[string]any{"activity_id": normalize.Int(activity, "id")}
	}

	return entry, nil
}

func normalizeActivity(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.Activity{
		ID:      normalize.Int(raw, "id"),
		Name:    normalize.Str(raw, "name"),
		Default: normalize.Bool(raw, "is_default"),
	}, nil
}

func normalizeStatus(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.Status{
		ID:     normalize.Int(raw, "id"),
		Name:   normalize.Str(raw, "name"),
		Closed: normalize.Bool(raw, "is_closed"),
	}, nil
}

func normalizeUser(_ *normalize.Context, raw map[string]any) (any, error) {
	name := normalize.Str(raw, "firstname")
	if last := normalize.Str(raw, "lastname"); last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	if name == "" {
		name = normalize.Str(raw, "name")
	}

	return domain.ProviderUser{
		ID:    normalize.Int(raw, "id"),
		Name:  name,
		Email: normalize.Str(raw, "mail"),
	}, nil
}

func normalizeMembership(_ *normalize.Context, raw map[string]any) (any, error) {
	member := domain.ProjectMember{
		ID:   normalize.Int(normalize.Map(raw, "user"), "id"),
		Name: nestedName(raw, "user"),
	}

	for _, role := range normalize.Slice(raw, "roles") {
		if name := normalize.Str(role, "name"); name != "" {
			member.Roles = append(member.Roles, name)
		}
	}

	return member, nil
}

func normalizeWikiPage(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.WikiPage{
		Title:     normalize.Str(raw, "title"),
		Text:      normalize.Str(raw, "text"),
		Version:   int(normalize.Int(raw, "version")),
		Author:    nestedName(raw, "author"),
		CreatedAt: normalize.TimePtr(raw, "created_on"),
		UpdatedAt: normalize.TimePtr(raw, "updated_on"),
	}, nil
}

// nestedName extracts the "name" of a nested reference object like
// {"id": 1, "name": "..."}. Missing objects yield "".
func nestedName(raw map[string]any, key string) string {
	return normalize.Str(normalize.Map(raw, key), "name")
}

// spentOnFormat is the date-only format Redmine uses for spent_on.
const spentOnFormat = "2006-01-02"

func formatSpentOn(t time.Time) string {
	return t.Format(spentOnFormat)
}
