package activity

import "time"

// Metadata carries the event-specific payload rendered inline in the feed.
// Stored as JSONB; absent fields are omitted on the wire.
type Metadata struct {
	ProgressPercentage *float64 `json:"progress_percentage,omitempty"`
	HasComment         bool     `json:"has_comment,omitempty"`
	Comment            string   `json:"comment,omitempty"`
	PreviousStatus     string   `json:"previous_status,omitempty"`
	NewStatus          string   `json:"new_status,omitempty"`
}

type Item struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GoalID      string    `json:"goal_id"`
	GoalTitle   string    `json:"goal_title"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	TeamOwnerID string    `json:"-"`
	Metadata    Metadata  `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}

// Feed is the assembled response for the activity list endpoint.
type Feed struct {
	Activities  []Item `json:"activities"`
	UnreadCount int    `json:"unread_count"`
}
