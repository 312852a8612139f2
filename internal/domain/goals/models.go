package goals

import "time"

type Goal struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	GoalType           string     `json:"goal_type"`
	Comparison         string     `json:"comparison"`
	TargetValue        float64    `json:"target_value"`
	CurrentValue       float64    `json:"current_value"`
	ProgressPercentage float64    `json:"progress_percentage"`
	Unit               string     `json:"unit"`
	CycleType          string     `json:"cycle_type"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Status             string     `json:"status"`
	AssignedTo         []string   `json:"assigned_to"`
	AssignedBy         string     `json:"assigned_by"`
	AssignedRole       string     `json:"assigned_role,omitempty"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	LastUpdated        time.Time  `json:"last_updated"`

	// Latest comment snapshot, surfaced on list views so the UI does not
	// need a second request per goal.
	LatestComment          string     `json:"latest_comment"`
	LatestCommentUser      string     `json:"latest_comment_user"`
	LatestCommentTimestamp *time.Time `json:"latest_comment_timestamp"`
}

type ProgressEntry struct {
	ID            string    `json:"id"`
	GoalID        string    `json:"goal_id"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name,omitempty"`
	PreviousValue float64   `json:"previous_value"`
	NewValue      float64   `json:"new_value"`
	Status        string    `json:"status"`
	Comment       string    `json:"comment,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type CreateInput struct {
	Title       string
	Description string
	GoalType    string
	Comparison  string
	TargetValue float64
	Unit        string
	CycleType   string
	StartDate   time.Time
	EndDate     time.Time
	AssignedTo  []string
}

// UpdateInput is a sparse patch; nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	TargetValue *float64
	Unit        *string
	EndDate     *time.Time
	IsActive    *bool
}
