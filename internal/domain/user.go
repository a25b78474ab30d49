package domain

import "time"

// Role is the marketplace role stored on a profile.
type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// In reports whether r is a member of allowed.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// ParseRole converts a stored role string, degrading unknown values to RoleUser.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.IsValid() {
		return RoleUser
	}
	return r
}

// User is the identity resolved from a session. Its lifecycle belongs to the auth service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Principal is an authenticated user together with the role looked up for them.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsCreator reports whether the principal may use creator tools.
func (p *Principal) IsCreator() bool {
	return p != nil && p.Role.In(RoleCreator, RoleAdmin)
}

// Profile is the per-user record holding display data and the role.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username"`
	FullName  *string   `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
