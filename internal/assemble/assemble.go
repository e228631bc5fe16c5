// Package assemble turns a constructed provider adapter into a live
// MCP server: the baseline tool set is registered unconditionally,
// optional tools and resources are gated on the adapter's port set,
// and the session instructions describe exactly the surface that was
// registered. The assembled surface is fixed for the lifetime of one
// session build.
package assemble

import (
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tracknest/tracker-mcp-go/internal/provider"
	"github.com/tracknest/tracker-mcp-go/internal/service"
)

const (
	serverName    = "tracker-mcp"
	serverVersion = "0.1.0"
)

// builder carries the request-scoped collaborators every handler
// closes over. Nothing here is shared across requests.
type builder struct {
	adapter provider.Adapter
	ports   provider.Ports
	caps    provider.Capabilities
	times   *service.TimeEntry
	logger  *slog.Logger
}

// Build assembles the MCP server for one adapter. The port set is
// inspected once; every registration decision below consults the
// resulting descriptor, never the adapter's type.
func Build(adapter provider.Adapter, logger *slog.Logger) *mcpsdk.Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ports := provider.BindPorts(adapter)
	caps := adapter.Capabilities()

	b := &builder{
		adapter: adapter,
		ports:   ports,
		caps:    caps,
		times:   service.NewTimeEntry(ports.TimeRead, ports.TimeWrite, caps),
		logger:  logger,
	}

	srv := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &mcpsdk.ServerOptions{
		Instructions: b.instructions(),
	})

	b.registerBaselineTools(srv)
	b.registerWriteTools(srv)
	b.registerResources(srv)

	logger.Debug("mcp surface assembled",
		"provider", adapter.Provider(),
		"issue_write", ports.IssueWrite != nil,
		"time_write", ports.TimeWrite != nil,
		"activities", ports.Activities != nil,
		"statuses", ports.Statuses != nil,
		"wiki", ports.Wiki != nil)

	return srv
}

// instructions concatenates the fragments for the registered surface,
// in registration order.
func (b *builder) instructions() string {
	fragments := []string{
		"This server exposes the user's " + b.adapter.Provider() + " workspace. " +
			"Use list_projects and list_issues to orient, get_issue_details for full issue context including comments and attachments, " +
			"and list_time_entries (optionally grouped by day or project) to review logged work. " +
			"get_current_user reveals the acting identity for user_id filters.",
	}

	if b.ports.IssueWrite != nil {
		fragments = append(fragments,
			"Issues are writable: add_comment, update_comment, delete_comment, and update_issue are available. "+
				"update_issue only accepts status_id values listed in the issue's allowed_statuses.")
	}
	if b.ports.TimeWrite != nil {
		fragment := "Time entries are writable via log_time, update_time_entry, and delete_time_entry. Hours must be positive."
		if b.caps.RequiresActivity {
			fragment += " Read provider://activities before calling log_time; it supplies required activity_id values."
		}
		fragments = append(fragments, fragment)
	}
	if b.ports.Statuses != nil {
		fragments = append(fragments, "provider://statuses lists every issue status the tracker knows.")
	}
	if b.ports.Members != nil {
		fragments = append(fragments, "provider://projects/{id}/members lists a project's members.")
	}
	if b.ports.Wiki != nil {
		fragments = append(fragments, "provider://projects/{id}/wiki indexes a project's wiki; append /{title} for page content.")
	}

	return strings.Join(fragments, "\n\n")
}
