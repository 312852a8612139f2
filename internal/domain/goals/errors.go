package goals

import "errors"

var (
	ErrNotFound        = errors.New("goal not found")
	ErrForbidden       = errors.New("access denied")
	ErrUnknownAssignee = errors.New("assigned user not found")
	ErrNoRoleMembers   = errors.New("no team members hold that role")
)
