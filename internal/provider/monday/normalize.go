package monday

import (
	"strconv"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
	"github.com/tracknest/tracker-mcp-go/internal/normalize"
)

// RegisterNormalizers installs the Monday conversion functions into
// the (kind, provider) table. Monday registers no activity, status,
// member, or wiki normalizers; the adapter exposes none of those
// ports.
func RegisterNormalizers(reg *normalize.Registry) {
	reg.Register(normalize.KindProject, ProviderKey, normalizeBoard)
	reg.Register(normalize.KindIssue, ProviderKey, normalizeItem)
	reg.Register(normalize.KindComment, ProviderKey, normalizeUpdate)
	reg.Register(normalize.KindAttachment, ProviderKey, normalizeAsset)
	reg.Register(normalize.KindTimeEntry, ProviderKey, normalizeSession)
	reg.Register(normalize.KindUser, ProviderKey, normalizeUser)
}

func normalizeBoard(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.Project{
		ID:   normalize.ID(raw, "id"),
		Name: normalize.Str(raw, "name"),
	}, nil
}

// columnText finds the text of the first column of the given type.
func columnText(raw map[string]any, columnType string) string {
	for _, column := range normalize.Slice(raw, "column_values") {
		if normalize.Str(column, "type") == columnType {
			return normalize.Str(column, "text")
		}
	}

	return ""
}

func normalizeItem(c *normalize.Context, raw map[string]any) (any, error) {
	issue := domain.Issue{
		ID:       normalize.ID(raw, "id"),
		Title:    normalize.Str(raw, "name"),
		Status:   columnText(raw, "status"),
		Assignee: columnText(raw, "people"),
	}

	if board := normalize.Map(raw, "board"); board != nil {
		project, err := c.Project(board)
		if err != nil {
			return nil, err
		}
		issue.Project = project
	}

	for _, rawUpdate := range normalize.Slice(raw, "updates") {
		comment, err := c.Comment(rawUpdate)
		if err != nil {
			return nil, err
		}
		issue.Comments = append(issue.Comments, comment)
	}

	for _, rawAsset := range normalize.Slice(raw, "assets") {
		attachment, err := c.Attachment(rawAsset)
		if err != nil {
			return nil, err
		}
		issue.Attachments = append(issue.Attachments, attachment)
	}

	return issue, nil
}

func normalizeUpdate(c *normalize.Context, raw map[string]any) (any, error) {
	comment := domain.Comment{
		ID:        normalize.ID(raw, "id"),
		Notes:     normalize.Str(raw, "text_body"),
		Author:    normalize.Str(normalize.Map(raw, "creator"), "name"),
		CreatedAt: normalize.TimePtr(raw, "created_at"),
	}

	for _, rawAsset := range normalize.Slice(raw, "assets") {
		attachment, err := c.Attachment(rawAsset)
		if err != nil {
			return nil, err
		}
		comment.Attachments = append(comment.Attachments, attachment)
	}

	return comment, nil
}

func normalizeAsset(_ *normalize.Context, raw map[string]any) (any, error) {
	contentURL := normalize.Str(raw, "public_url")
	if contentURL == "" {
		contentURL = normalize.Str(raw, "url")
	}

	return domain.Attachment{
		ID:          normalize.ID(raw, "id"),
		Filename:    normalize.Str(raw, "name"),
		Filesize:    normalize.Int(raw, "file_size"),
		ContentType: normalize.Str(raw, "file_extension"),
		ContentURL:  contentURL,
		Author:      normalize.Str(normalize.Map(raw, "uploaded_by"), "name"),
		CreatedAt:   normalize.TimePtr(raw, "created_at"),
	}, nil
}

// normalizeSession converts one time tracking history record. The
// item context (issue and board ids) is merged in by the adapter
// before conversion.
func normalizeSession(_ *normalize.Context, raw map[string]any) (any, error) {
	entry := domain.TimeEntry{
		ID:        normalize.ID(raw, "id"),
		IssueID:   normalize.ID(raw, "item_id"),
		ProjectID: normalize.ID(raw, "board_id"),
		Comment:   normalize.Str(raw, "item_name"),
	}
	if starter := normalize.Int(raw, "started_user_id"); starter != 0 {
		entry.User = strconv.FormatInt(starter, 10)
	}

	started := normalize.TimePtr(raw, "started_at")
	ended := normalize.TimePtr(raw, "ended_at")
	if started != nil {
		entry.SpentAt = *started
		if ended != nil && ended.After(*started) {
			entry.Seconds = int64(ended.Sub(*started).Seconds())
		}
	}

	return entry, nil
}

func normalizeUser(_ *normalize.Context, raw map[string]any) (any, error) {
	return domain.ProviderUser{
		ID:    normalize.ID(raw, "id"),
		Name:  normalize.Str(raw, "name"),
		Email: normalize.Str(raw, "email"),
	}, nil
}
