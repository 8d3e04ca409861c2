package auth

// Role is the access class of an authenticated user.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
)

func (r Role) String() string {
	return string(r)
}

// IsStaff reports whether the role belongs to the triage class, i.e. admin or
// staff. Only this class may mutate or delete issues.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleStaff
}

func (r Role) IsValid() bool {
	return r == RoleCitizen || r == RoleAdmin || r == RoleStaff
}

// ParseRole maps s to a role, falling back to citizen for anything unknown.
func ParseRole(s string) Role {
	role := Role(s)
	if role.IsValid() {
		return role
	}
	return RoleCitizen
}

// Principal is an authenticated actor. It is produced by the token
// middleware and passed explicitly into every service operation; the service
// never reads identity from ambient request state.
type Principal struct {
	ID   string
	Role Role
}
