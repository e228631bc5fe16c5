package normalize

import (
	"fmt"

	"github.com/tracknest/tracker-mcp-go/internal/domain"
)

// Kind tags the domain type a conversion produces.
type Kind int

// Domain kinds understood by the registry.
const (
	KindProject Kind = iota
	KindIssue
	KindComment
	KindAttachment
	KindTimeEntry
	KindActivity
	KindStatus
	KindUser
	KindMember
	KindWikiPage
)

var kindNames = map[Kind]string{
	KindProject:    "project",
	KindIssue:      "issue",
	KindComment:    "comment",
	KindAttachment: "attachment",
	KindTimeEntry:  "time entry",
	KindActivity:   "activity",
	KindStatus:     "status",
	KindUser:       "user",
	KindMember:     "member",
	KindWikiPage:   "wiki page",
}

// String returns the kind's display name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Func converts one raw payload into the domain record for its kind.
type Func func(c *Context, raw map[string]any) (any, error)

type key struct {
	kind     Kind
	provider string
}

// Registry is the (kind, provider) conversion table.
type Registry struct {
	funcs map[key]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[key]Func, 32)}
}

// Register installs the conversion function for (kind, provider).
// Registering the same pair twice panics: the table is assembled once
// at startup and a duplicate means miswired providers.
func (r *Registry) Register(kind Kind, provider string, fn Func) {
	k := key{kind: kind, provider: provider}
	if _, exists := r.funcs[k]; exists {
		panic(fmt.Sprintf("normalize: duplicate registration for %s/%s", provider, kind))
	}
	r.funcs[k] = fn
}

// Convert dispatches raw through the table.
func (r *Registry) Convert(kind Kind, provider string, raw map[string]any) (any, error) {
	fn, ok := r.funcs[key{kind: kind, provider: provider}]
	if !ok {
		return nil, fmt.Errorf("normalize: no %s normalizer for provider %q", kind, provider)
	}

	return fn(&Context{Provider: provider, registry: r}, raw)
}

// Context carries the provider discriminator through a conversion and
// lets composite conversions recurse into the table.
type Context struct {
	Provider string

	registry *Registry
}

func (c *Context) convert(kind Kind, raw map[string]any) (any, error) {
	return c.registry.Convert(kind, c.Provider, raw)
}

// Project recursively converts a nested project payload.
func (c *Context) Project(raw map[string]any) (domain.Project, error) {
	v, err := c.convert(KindProject, raw)
	if err != nil {
		return domain.Project{}, err
	}

	return v.(domain.Project), nil
}

// Comment recursively converts a nested comment/journal payload.
func (c *Context) Comment(raw map[string]any) (domain.Comment, error) {
	v, err := c.convert(KindComment, raw)
	if err != nil {
		return domain.Comment{}, err
	}

	return v.(domain.Comment), nil
}

// Attachment recursively converts a nested attachment payload.
func (c *Context) Attachment(raw map[string]any) (domain.Attachment, error) {
	v, err := c.convert(KindAttachment, raw)
	if err != nil {
		return domain.Attachment{}, err
	}

	return v.(domain.Attachment), nil
}

// Status recursively converts a nested status payload.
func (c *Context) Status(raw map[string]any) (domain.Status, error) {
	v, err := c.convert(KindStatus, raw)
	if err != nil {
		return domain.Status{}, err
	}

	return v.(domain.Status), nil
}

// Typed front doors. Each dispatches through the table and asserts the
// produced record's type, so callers never handle bare any values.

// Project converts a raw project payload for the given provider.
func (r *Registry) Project(provider string, raw map[string]any) (domain.Project, error) {
	v, err := r.Convert(KindProject, provider, raw)
	if err != nil {
		return domain.Project{}, err
	}

	return v.(domain.Project), nil
}

// Issue converts a raw issue payload for the given provider.
func (r *Registry) Issue(provider string, raw map[string]any) (domain.Issue, error) {
	v, err := r.Convert(KindIssue, provider, raw)
	if err != nil {
		return domain.Issue{}, err
	}

	return v.(domain.Issue), nil
}

// Comment converts a raw comment payload for the given provider.
func (r *Registry) Comment(provider string, raw map[string]any) (domain.Comment, error) {
	v, err := r.Convert(KindComment, provider, raw)
	if err != nil {
		return domain.Comment{}, err
	}

	return v.(domain.Comment), nil
}

// Attachment converts a raw attachment payload for the given provider.
func (r *Registry) Attachment(provider string, raw map[string]any) (domain.Attachment, error) {
	v, err := r.Convert(KindAttachment, provider, raw)
	if err != nil {
		return domain.Attachment{}, err
	}

	return v.(domain.Attachment), nil
}

// TimeEntry converts a raw time-entry payload for the given provider.
func (r *Registry) TimeEntry(provider string, raw map[string]any) (domain.TimeEntry, error) {
	v, err := r.Convert(KindTimeEntry, provider, raw)
	if err != nil {
		return domain.TimeEntry{}, err
	}

	return v.(domain.TimeEntry), nil
}

// Activity converts a raw activity payload for the given provider.
func (r *Registry) Activity(provider string, raw map[string]any) (domain.Activity, error) {
	v, err := r.Convert(KindActivity, provider, raw)
	if err != nil {
		return domain.Activity{}, err
	}

	return v.(domain.Activity), nil
}

// Status converts a raw status payload for the given provider.
func (r *Registry) Status(provider string, raw map[string]any) (domain.Status, error) {
	v, err := r.Convert(KindStatus, provider, raw)
	if err != nil {
		return domain.Status{}, err
	}

	return v.(domain.Status), nil
}

// User converts a raw user payload for the given provider.
func (r *Registry) User(provider string, raw map[string]any) (domain.ProviderUser, error) {
	v, err := r.Convert(KindUser, provider, raw)
	if err != nil {
		return domain.ProviderUser{}, err
	}

	return v.(domain.ProviderUser), nil
}

// Member converts a raw project-member payload for the given provider.
func (r *Registry) Member(provider string, raw map[string]any) (domain.ProjectMember, error) {
	v, err := r.Convert(KindMember, provider, raw)
	if err != nil {
		return domain.ProjectMember{}, err
	}

	return v.(domain.ProjectMember), nil
}

// WikiPage converts a raw wiki-page payload for the given provider.
func (r *Registry) WikiPage(provider string, raw map[string]any) (domain.WikiPage, error) {
	v, err := r.Convert(KindWikiPage, provider, raw)
	if err != nil {
		return domain.WikiPage{}, err
	}

	return v.(domain.WikiPage), nil
}
