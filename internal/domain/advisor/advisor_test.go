package advisor

import (
	"testing"
	"time"

	"goalspark/internal/domain/goals"
)

func sampleGoal() goals.Goal {
	return goals.Goal{
		Title:        "Close deals",
		Comparison:   goals.ComparisonGreaterThan,
		TargetValue:  10,
		CurrentValue: 4,
		Unit:         "deals",
		EndDate:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestSuggestPromptMatchesStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, status := range goals.Statuses {
		got := SuggestPrompt(sampleGoal(), status, now)
		if got.Status != status {
			t.Errorf("status = %q, want %q", got.Status, status)
		}
		if got.Prompt == "" {
			t.Errorf("empty prompt for %q", status)
		}
		found := false
		for _, p := range promptsByStatus[status] {
			if p == got.Prompt {
				found = true
			}
		}
		if !found {
			t.Errorf("prompt %q not in the %q pool", got.Prompt, status)
		}
	}
}

func TestSuggestPromptDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	goal := sampleGoal()
	goal.ID = "3f6c1d2e-goal"

	for _, status := range goals.Statuses {
		first := SuggestPrompt(goal, status, now)
		for i := 0; i < 10; i++ {
			if got := SuggestPrompt(goal, status, now); got.Prompt != first.Prompt {
				t.Fatalf("prompt changed between identical calls: %q vs %q", got.Prompt, first.Prompt)
			}
		}
	}
}

func TestPromptIndexStable(t *testing.T) {
	for _, id := range []string{"", "a", "3f6c1d2e-goal", "another-goal"} {
		idx := promptIndex(id, 3)
		if idx < 0 || idx > 2 {
			t.Fatalf("index %d out of range for id %q", idx, id)
		}
		if promptIndex(id, 3) != idx {
			t.Errorf("index for %q not stable", id)
		}
	}
}

func TestSuggestPromptContext(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got := SuggestPrompt(sampleGoal(), goals.StatusOnTrack, now)

	if got.GoalTitle != "Close deals" {
		t.Errorf("goal_title = %q", got.GoalTitle)
	}
	if got.AdditionalContext.CurrentProgress != "4 of 10 deals" {
		t.Errorf("current_progress = %q", got.AdditionalContext.CurrentProgress)
	}
	if got.AdditionalContext.ProgressPercentage != 40 {
		t.Errorf("progress_percentage = %v, want 40", got.AdditionalContext.ProgressPercentage)
	}
	if got.AdditionalContext.TimeRemaining != "14 days left" {
		t.Errorf("time_remaining = %q", got.AdditionalContext.TimeRemaining)
	}
}

func TestSuggestPromptUnknownStatusFallsBack(t *testing.T) {
	got := SuggestPrompt(sampleGoal(), "paused", time.Now())
	if got.Status != goals.StatusOnTrack {
		t.Errorf("status = %q, want fallback to on_track", got.Status)
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want string
	}{
		{"overdue", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "Overdue"},
		{"due today", time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC), "Due today"},
		{"tomorrow", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), "1 day left"},
		{"later", time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), "10 days left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeRemaining(tt.end, now); got != tt.want {
				t.Errorf("TimeRemaining = %q, want %q", got, tt.want)
			}
		})
	}
}
