// Package advisor suggests a comment prompt for a progress report based on
// the status the reporter is about to declare.
package advisor

import (
	"fmt"
	"hash/fnv"
	"time"

	"goalspark/internal/domain/goals"
)

type Suggestion struct {
	Prompt            string  `json:"prompt"`
	Status            string  `json:"status"`
	GoalTitle         string  `json:"goal_title"`
	AdditionalContext Context `json:"additional_context"`
}

type Context struct {
	CurrentProgress    string  `json:"current_progress"`
	ProgressPercentage float64 `json:"progress_percentage"`
	TimeRemaining      string  `json:"time_remaining"`
}

var promptsByStatus = map[string][]string{
	goals.StatusOnTrack: {
		"What moved the needle this week?",
		"Anything you did differently that others could borrow?",
		"What is the next milestone you are aiming for?",
	},
	goals.StatusAtRisk: {
		"What is slowing you down right now?",
		"What would help you get back on pace?",
		"Is there a blocker your manager should know about?",
	},
	goals.StatusOffTrack: {
		"What changed since the goal was set?",
		"What support do you need to recover?",
		"Should the target or timeline be revisited?",
	},
}

// SuggestPrompt picks a prompt for the declared status and packs the goal
// context the UI shows beside the comment box. The mapping is
// deterministic: the same goal and status always yield the same prompt,
// while different goals rotate through the pool. Unknown statuses fall
// back to the on-track prompts.
func SuggestPrompt(goal goals.Goal, status string, now time.Time) Suggestion {
	prompts, ok := promptsByStatus[status]
	if !ok {
		status = goals.StatusOnTrack
		prompts = promptsByStatus[status]
	}
	pct := goals.ProgressPercent(goal.Comparison, goal.TargetValue, goal.CurrentValue)
	return Suggestion{
		Prompt:    prompts[promptIndex(goal.ID, len(prompts))],
		Status:    status,
		GoalTitle: goal.Title,
		AdditionalContext: Context{
			CurrentProgress:    fmt.Sprintf("%g of %g %s", goal.CurrentValue, goal.TargetValue, goal.Unit),
			ProgressPercentage: pct,
			TimeRemaining:      TimeRemaining(goal.EndDate, now),
		},
	}
}

func promptIndex(goalID string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(goalID))
	return int(h.Sum32() % uint32(n))
}

// TimeRemaining renders the distance to the deadline the way the feed
// shows it. Dates compare on calendar days, not elapsed hours.
func TimeRemaining(endDate, now time.Time) string {
	end := endDate.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	days := int(end.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return "Overdue"
	case days == 0:
		return "Due today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
