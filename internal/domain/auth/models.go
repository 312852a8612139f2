package auth

import "time"

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         string     `json:"role"`
	JobTitle     string     `json:"job_title"`
	CustomRole   string     `json:"custom_role"`
	ManagerID    string     `json:"manager_id,omitempty"`
	MFAEnabled   bool       `json:"-"`
	IsActive     bool       `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"-"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
