// Package provider defines the capability contracts a tracker adapter
// may implement and the descriptor metadata used for discovery.
//
// An adapter is polymorphic over capability sets, not a single
// monolithic interface: a concrete adapter implements exactly the port
// subset its backing service supports, and absence of a port is the
// single source of truth for capability detection. BindPorts performs
// that detection once at construction; the protocol layer consults the
// resulting Ports struct, never type identity.
package provider
