package assemble

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
)

// Resource URIs and templates, gated on the optional ports.
const (
	ResourceActivities        = "provider://activities"
	ResourceStatuses          = "provider://statuses"
	TemplateProjectMembers    = "provider://projects/{id}/members"
	TemplateProjectActivities = "provider://projects/{id}/activities"
	TemplateProjectWiki       = "provider://projects/{id}/wiki"
	TemplateProjectWikiPage   = "provider://projects/{id}/wiki/{title}"
)

const resourceMIMEType = "application/json"

func (b *builder) registerResources(srv *mcpsdk.Server) {
	if b.ports.Activities != nil {
		srv.AddResource(&mcpsdk.Resource{
			URI:         ResourceActivities,
			Name:        "Time entry activities",
			Description: "Activities accepted as activity_id when logging time.",
			MIMEType:    resourceMIMEType,
		}, b.handleActivitiesResource)
		srv.AddResourceTemplate(&mcpsdk.ResourceTemplate{
			URITemplate: TemplateProjectActivities,
			Name:        "Project time entry activities",
			Description: "Activities enabled for one project, falling back to the global list.",
			MIMEType:    resourceMIMEType,
		}, b.handleProjectActivitiesResource)
	}

	if b.ports.Statuses != nil {
		srv.AddResource(&mcpsdk.Resource{
			URI:         ResourceStatuses,
			Name:        "Issue statuses",
			Description: "Every issue status the tracker knows.",
			MIMEType:    resourceMIMEType,
		}, b.handleStatusesResource)
	}

	if b.ports.Members != nil {
		srv.AddResourceTemplate(&mcpsdk.ResourceTemplate{
			URITemplate: TemplateProjectMembers,
			Name:        "Project members",
			Description: "Members of one project with their role labels.",
			MIMEType:    resourceMIMEType,
		}, b.handleProjectMembersResource)
	}

	if b.ports.Wiki != nil {
		srv.AddResourceTemplate(&mcpsdk.ResourceTemplate{
			URITemplate: TemplateProjectWiki,
			Name:        "Project wiki index",
			Description: "Titles of one project's wiki pages.",
			MIMEType:    resourceMIMEType,
		}, b.handleWikiResource)
		srv.AddResourceTemplate(&mcpsdk.ResourceTemplate{
			URITemplate: TemplateProjectWikiPage,
			Name:        "Project wiki page",
			Description: "One wiki page's content.",
			MIMEType:    resourceMIMEType,
		}, b.handleWikiResource)
	}
}

// resourceJSON renders a payload as pretty-printed JSON with Unicode
// left unescaped.
func resourceJSON(uri string, payload any) (*mcpsdk.ReadResourceResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}

	return &mcpsdk.ReadResourceResult{
		Contents: []*mcpsdk.ResourceContents{{
			URI:      uri,
			MIMEType: resourceMIMEType,
			Text:     strings.TrimRight(buf.String(), "\n"),
		}},
	}, nil
}

type activityView struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

func viewActivities(activities []domain.Activity) []activityView {
	views := make([]activityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, activityView{ID: a.ID, Name: a.Name, Default: a.Default})
	}

	return views
}

func (b *builder) handleActivitiesResource(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	activities, err := b.ports.Activities.GetActivities(ctx)
	if err != nil {
		return nil, err
	}

	return resourceJSON(req.Params.URI, map[string]any{"activities": viewActivities(activities)})
}

func (b *builder) handleProjectActivitiesResource(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	projectID, _, err := parseProjectURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	activities, err := b.ports.Activities.GetProjectActivities(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return resourceJSON(req.Params.URI, map[string]any{"activities": viewActivities(activities)})
}

func (b *builder) handleStatusesResource(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	statuses, err := b.ports.Statuses.GetStatuses(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]statusView, 0, len(statuses))
	for _, s := range statuses {
		views = append(views, statusView{ID: s.ID, Name: s.Name, Closed: s.Closed})
	}

	return resourceJSON(req.Params.URI, map[string]any{"statuses": views})
}

type memberView struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

func (b *builder) handleProjectMembersResource(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	projectID, _, err := parseProjectURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	members, err := b.ports.Members.GetProjectMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{ID: m.ID, Name: m.Name, Roles: m.Roles})
	}

	return resourceJSON(req.Params.URI, map[string]any{"members": views})
}

type wikiPageView struct {
	Title     string `json:"title"`
	Text      string `json:"text,omitempty"`
	Version   int    `json:"version,omitempty"`
	Author    string `json:"author,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func viewWikiPage(p domain.WikiPage) wikiPageView {
	return wikiPageView{
		Title:     p.Title,
		Text:      p.Text,
		Version:   p.Version,
		Author:    p.Author,
		UpdatedAt: viewTime(p.UpdatedAt),
	}
}

// handleWikiResource serves both the index and single-page templates;
// the trailing title segment decides which.
func (b *builder) handleWikiResource(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	projectID, rest, err := parseProjectURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	title := strings.TrimPrefix(rest, "wiki")
	title = strings.TrimPrefix(title, "/")

	if title == "" {
		pages, err := b.ports.Wiki.GetWikiPages(ctx, projectID)
		if err != nil {
			return nil, err
		}

		views := make([]wikiPageView, 0, len(pages))
		for _, p := range pages {
			views = append(views, viewWikiPage(p))
		}

		return resourceJSON(req.Params.URI, map[string]any{"pages": views})
	}

	page, err := b.ports.Wiki.GetWikiPage(ctx, projectID, title)
	if err != nil {
		return nil, err
	}

	return resourceJSON(req.Params.URI, map[string]any{"page": viewWikiPage(page)})
}

// parseProjectURI splits provider://projects/{id}/<rest> into the
// project id and the trailing segment.
func parseProjectURI(uri string) (int64, string, error) {
	const prefix = "provider://projects/"
	if !strings.HasPrefix(uri, prefix) {
		return 0, "", mcpsdk.ResourceNotFoundError(uri)
	}

	idPart, rest, _ := strings.Cut(strings.TrimPrefix(uri, prefix), "/")
	projectID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", mcpsdk.ResourceNotFoundError(uri)
	}

	return projectID, rest, nil
}
