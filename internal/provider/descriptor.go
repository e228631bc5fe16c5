package provider

// Field describes one credential field an adapter needs.
type Field struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Required  bool   `json:"required"`
	Sensitive bool   `json:"sensitive,omitempty"`
}

// Descriptor is the registration/discovery metadata for one provider:
// its key, a human label, and the org-level and user-level credential
// fields a deployment must supply before an adapter can be built.
type Descriptor struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	OrgFields  []Field `json:"org_fields"`
	UserFields []Field `json:"user_fields"`
}
