package common

// --------------------------------------------------------------------------
// Server Roles
// --------------------------------------------------------------------------

// Role is the cluster role of a server process
type Role uint8

const (
	RoleUndefined Role = iota
	RoleCoordinator
	RoleDataServer
	RoleAgent
	RoleSingle
)

// String returns the string representation of a Role.
func (r Role) String() string {
	switch r {
	case RoleCoordinator:
		return "coordinator"
	case RoleDataServer:
		return "dataserver"
	case RoleAgent:
		return "agent"
	case RoleSingle:
		return "single"
	default:
		return "undefined"
	}
}

// --------------------------------------------------------------------------
// Identity Provider
// --------------------------------------------------------------------------

// IIdentityProvider exposes the cluster identity of the running process.
// The dispatch layer stamps this identity onto outgoing requests so the
// receiver knows which server originated an operation. Implementations
// must be safe for concurrent use.
type IIdentityProvider interface {
	// Role returns the cluster role of this process
	Role() Role
	// ServerID returns the cluster-wide id of this process. May be empty
	// if the process has not (yet) registered with the cluster.
	ServerID() string
}

// RequestSource derives the request-source header value from an identity.
// Coordinators and data servers report their plain server id, agents report
// a role-qualified id. The second return value is false if no identity is
// available and the header should be omitted.
func RequestSource(identity IIdentityProvider) (string, bool) {
	if identity == nil {
		return "", false
	}
	id := identity.ServerID()
	if id == "" {
		return "", false
	}
	switch identity.Role() {
	case RoleCoordinator, RoleDataServer:
		return id, true
	case RoleAgent:
		return "AGENT-" + id, true
	default:
		return "", false
	}
}

// --------------------------------------------------------------------------
// Static Identity
// --------------------------------------------------------------------------

// StaticIdentity is a fixed IIdentityProvider, used by tooling and tests
type StaticIdentity struct {
	ServerRole Role
	ID         string
}

func (s StaticIdentity) Role() Role       { return s.ServerRole }
func (s StaticIdentity) ServerID() string { return s.ID }
