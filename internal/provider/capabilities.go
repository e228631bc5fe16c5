package provider

// Capabilities describes provider-level behavior the domain services
// need to know about, independent of which ports exist.
type Capabilities struct {
	// Name is the adapter's provider key.
	Name string

	// RequiresActivity means logging time must carry an activity id.
	RequiresActivity bool

	// SupportsProjectHierarchy means projects form a parent tree.
	SupportsProjectHierarchy bool

	// SupportsTags means issues carry free-form tags.
	SupportsTags bool

	// MaxDailyHours bounds the hours accepted for one spent-at date.
	MaxDailyHours float64
}

// Adapter is the minimal contract every provider adapter satisfies.
// Everything else is an optional port discovered through BindPorts.
type Adapter interface {
	Provider() string
	Capabilities() Capabilities
}

// Ports is the capability descriptor for one adapter instance: each
// field is non-nil exactly when the adapter implements that port. It
// is computed once per construction so the assembler never repeats
// runtime type inspection at dispatch time.
type Ports struct {
	Projects    ProjectPort
	IssueRead   IssueReadPort
	IssueWrite  IssueWritePort
	TimeRead    TimeEntryReadPort
	TimeWrite   TimeEntryWritePort
	Activities  ActivityPort
	Statuses    StatusPort
	Attachments AttachmentPort
	User        UserPort
	Members     MemberPort
	Wiki        WikiPort
}

// BindPorts inspects the adapter's implemented interfaces once and
// returns the resulting descriptor.
func BindPorts(a Adapter) Ports {
	var p Ports
	if v, ok := a.(ProjectPort); ok {
		p.Projects = v
	}
	if v, ok := a.(IssueReadPort); ok {
		p.IssueRead = v
	}
	if v, ok := a.(IssueWritePort); ok {
		p.IssueWrite = v
	}
	if v, ok := a.(TimeEntryReadPort); ok {
		p.TimeRead = v
	}
	if v, ok := a.(TimeEntryWritePort); ok {
		p.TimeWrite = v
	}
	if v, ok := a.(ActivityPort); ok {
		p.Activities = v
	}
	if v, ok := a.(StatusPort); ok {
		p.Statuses = v
	}
	if v, ok := a.(AttachmentPort); ok {
		p.Attachments = v
	}
	if v, ok := a.(UserPort); ok {
		p.User = v
	}
	if v, ok := a.(MemberPort); ok {
		p.Members = v
	}
	if v, ok := a.(WikiPort); ok {
		p.Wiki = v
	}

	return p
}
