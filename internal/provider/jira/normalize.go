package jira

import (
	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
)

// RegisterNormalizers installs the Jira conversion functions into the
// (kind, provider) table.
//
// Jira's native identifiers are strings; numeric ones (issue and
// project ids) parse through, while opaque account ids fall back to
// the display-only checksum surrogate.
func RegisterNormalizers(reg *normalize.Registry) {
	reg.Register(normalize.KindProject, ProviderKey, normalizeProject)
	reg.Register(normalize.KindIssue, ProviderKey, normalizeIssue)
	reg.Register(normalize.KindComment, ProviderKey, normalizeComment)
	reg.Register(normalize.KindAttachment, ProviderKey, normalizeAttachment)
	reg.Register(normalize.KindTimeEntry, ProviderKey, normalizeWorklog)
	reg.Register(normalize.KindStatus, ProviderKey, normalizeTransition)
	reg.Register(normalize.KindUser, ProviderKey, normalizeUser)
	reg.Register(normalize.KindMember, ProviderKey, normalizeAssignableUser)
}

func normalizeProject(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.Project{
		ID:   normalize.ID(raw, "id"),
		Name: normalize.Str(raw, "name"),
	}, nil
}

func normalizeIssue(c *normalize.Context, raw map[string]any) (any, error) {
	fields := normalize.Map(raw, "fields")
	if fields == nil {
		fields = map[string]any{}
	}

	issue := domain.Issue{
		ID:       normalize.ID(raw, "id"),
		Title:    normalize.Str(fields, "summary"),
		Status:   normalize.Str(normalize.Map(fields, "status"), "name"),
		Assignee: normalize.Str(normalize.Map(fields, "assignee"), "displayName"),
		Type:     normalize.Str(normalize.Map(fields, "issuetype"), "name"),
		Priority: normalize.Str(normalize.Map(fields, "priority"), "name"),
	}

	// Descriptions are ADF documents in the v3 API; legacy payloads
	// may still carry plain strings.
	switch desc := fields["description"].(type) {
	case map[string]any:
		issue.Description = FlattenADF(desc)
	case string:
		issue.Description = desc
	}

	if rawProject := normalize.Map(fields, "project"); rawProject != nil {
		project, err := c.Project(rawProject)
		if err != nil {
			return nil, err
		}
		issue.Project = project
	}

	if comment := normalize.Map(fields, "comment"); comment != nil {
		for _, rawComment := range normalize.Slice(comment, "comments") {
			converted, err := c.Comment(rawComment)
			if err != nil {
				return nil, err
			}
			issue.Comments = append(issue.Comments, converted)
		}
	}

	for _, rawAttachment := range normalize.Slice(fields, "attachment") {
		attachment, err := c.Attachment(rawAttachment)
		if err != nil {
			return nil, err
		}
		issue.Attachments = append(issue.Attachments, attachment)
	}

	for _, rawTransition := range normalize.Slice(raw, "transitions") {
		status, err := c.Status(rawTransition)
		if err != nil {
			return nil, err
		}
		issue.AllowedStatuses = append(issue.AllowedStatuses, status)
	}

	return issue, nil
}

func normalizeComment(_ *normalize.Context, raw map[string]any) (any, error) {
	comment := domain.Comment{
		ID:        normalize.ID(raw, "id"),
		Author:    normalize.Str(normalize.Map(raw, "author"), "displayName"),
		CreatedAt: normalize.TimePtr(raw, "created"),
	}

	switch body := raw["body"].(type) {
	case map[string]any:
		comment.Notes = FlattenADF(body)
	case string:
		comment.Notes = body
	}

	return comment, nil
}

func normalizeAttachment(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.Attachment{
		ID:          normalize.ID(raw, "id"),
		Filename:    normalize.Str(raw, "filename"),
		Filesize:    normalize.Int(raw, "size"),
		ContentType: normalize.Str(raw, "mimeType"),
		ContentURL:  normalize.Str(raw, "content"),
		Author:      normalize.Str(normalize.Map(raw, "author"), "displayName"),
		CreatedAt:   normalize.TimePtr(raw, "created"),
	}, nil
}

func normalizeWorklog(_ *normalize.Context, raw map[string]any) (any, error) {
	entry := domain.TimeEntry{
		ID:      normalize.ID(raw, "id"),
		IssueID: normalize.ID(raw, "issueId"),
		Seconds: normalize.Int(raw, "timeSpentSeconds"),
		User:    normalize.Str(normalize.Map(raw, "author"), "displayName"),
	}

	switch comment := raw["comment"].(type) {
	case map[string]any:
		entry.Comment = FlattenADF(comment)
	case string:
		entry.Comment = comment
	}

	if started := normalize.TimePtr(raw, "started"); started != nil {
		entry.SpentAt = *started
	}

	return entry, nil
}

// normalizeTransition converts a workflow transition into the status
// it leads to.
func normalizeTransition(_ *normalize.Context, raw map[string]any) (any, error) {
	to := normalize.Map(raw, "to")
	if to == nil {
		to = raw
	}

	category := normalize.Map(to, "statusCategory")

	return domain.Status{
		ID:     normalize.ID(to, "id"),
		Name:   normalize.Str(to, "name"),
		Closed: normalize.Str(category, "key") == "done",
	}, nil
}

func normalizeUser(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.ProviderUser{
		ID:    normalize.ID(raw, "accountId"),
		Name:  normalize.Str(raw, "displayName"),
		Email: normalize.Str(raw, "emailAddress"),
	}, nil
}

func normalizeAssignableUser(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.ProjectMember{
		ID:   normalize.ID(raw, "accountId"),
		Name: normalize.Str(raw, "displayName"),
	}, nil
}
