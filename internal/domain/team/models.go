package team

import "time"

type Member struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	JobTitle   string     `json:"job_title"`
	CustomRole string     `json:"custom_role"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login"`
}

// MemberPatch is a sparse update; nil fields are left untouched.
type MemberPatch struct {
	JobTitle   *string
	CustomRole *string
	IsActive   *bool
}

// Role is a custom role label with its current headcount.
type Role struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}
