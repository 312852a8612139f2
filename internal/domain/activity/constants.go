package activity

const (
	TypeGoalCreated     = "goal_created"
	TypeProgressUpdated = "progress_updated"
	TypeStatusChanged   = "status_changed"
)

// DefaultFeedLimit bounds a feed page when the client does not ask for one.
const DefaultFeedLimit = 50

// MaxFeedLimit caps what a client may request in one page.
const MaxFeedLimit = 100
