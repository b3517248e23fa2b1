package domain

// Role differentiates the callers recognised by the portal.
type Role string

const (
	RoleStudent       Role = "student"
	RoleHiringManager Role = "hiring_manager"
	RoleAdmin         Role = "admin"
)

// Valid reports whether r is a recognised role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleHiringManager, RoleAdmin:
		return true
	}
	return false
}

// ActorSystem identifies transitions performed by the archival sweep.
const ActorSystem = "system"

// Principal is the verified identity carried by a bearer token.
type Principal struct {
	ID       string
	Role     Role
	Verified bool
}

// SystemPrincipal returns the actor used for sweep-induced transitions.
func SystemPrincipal() Principal {
	return Principal{ID: ActorSystem}
}

// VerificationStatus is the externally owned hiring-manager verification state.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationSuspended  VerificationStatus = "suspended"
)

// HiringManager is read from the external verification directory.
type HiringManager struct {
	ID                 string
	VerificationStatus VerificationStatus
}
