package auth

// Access roles. Admins are managers who run a team; everyone else is an
// employee. Custom roles ("Sales Rep") are free-text labels on team members
// and live in the team package, not here.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)
