package analytics

import "goalspark/internal/domain/activity"

// Snapshot is the full dashboard payload, computed in one pass over the
// team's goals, members and recent activity.
type Snapshot struct {
	TeamOverview        Overview              `json:"team_overview"`
	PerformanceTrends   []TrendPoint          `json:"performance_trends"`
	GoalCompletionStats CompletionStats       `json:"goal_completion_stats"`
	EmployeePerformance []EmployeePerformance `json:"employee_performance"`
	StatusDistribution  StatusDistribution    `json:"status_distribution"`
	RecentActivities    []activity.Item       `json:"recent_activities"`
}

type Overview struct {
	TotalGoals       int     `json:"total_goals"`
	ActiveGoals      int     `json:"active_goals"`
	CompletedGoals   int     `json:"completed_goals"`
	TotalEmployees   int     `json:"total_employees"`
	CompletionRate   float64 `json:"completion_rate"`
	AvgProgress      float64 `json:"avg_progress"`
	PerformanceScore float64 `json:"performance_score"`
}

// TrendPoint is one month's bucket; goals land in the month their
// deadline falls in.
type TrendPoint struct {
	Month           string  `json:"month"`
	GoalsCompleted  int     `json:"goals_completed"`
	CompletionRate  float64 `json:"completion_rate"`
	AverageProgress float64 `json:"average_progress"`
}

// CompletionStats groups goals by declared status, each bucket carrying
// its share of the total.
type CompletionStats struct {
	OnTrack     int     `json:"on_track"`
	AtRisk      int     `json:"at_risk"`
	OffTrack    int     `json:"off_track"`
	OnTrackPct  float64 `json:"on_track_pct"`
	AtRiskPct   float64 `json:"at_risk_pct"`
	OffTrackPct float64 `json:"off_track_pct"`
}

type EmployeePerformance struct {
	UserID           string             `json:"user_id"`
	Name             string             `json:"name"`
	GoalsAssigned    int                `json:"goals_assigned"`
	GoalsCompleted   int                `json:"goals_completed"`
	CompletionRate   float64            `json:"completion_rate"`
	AverageProgress  float64            `json:"average_progress"`
	PerformanceScore float64            `json:"performance_score"`
	StatusBreakdown  StatusDistribution `json:"status_distribution"`
}

type StatusDistribution struct {
	OnTrack  int `json:"on_track"`
	AtRisk   int `json:"at_risk"`
	OffTrack int `json:"off_track"`
}
