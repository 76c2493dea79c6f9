package user

// Role is the member's role inside an agency, carried in the access token.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"  // Platform operator
	RoleAgencyOwner Role = "AGENCY_OWNER" // Agency owner - full access
	RoleAdmin       Role = "ADMIN"        // Runs day-to-day operations
	RoleCreator     Role = "CREATOR"      // Live-streaming creator, paid by payroll
	RoleInvestor    Role = "INVESTOR"     // Read-only financial view
)

// ParseRole accepts only the known role literals.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAgencyOwner, RoleAdmin, RoleCreator, RoleInvestor:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// Claims is the identity extracted from a verified access token.
type Claims struct {
	UserID   string
	AgencyID string
	Role     Role
}
