package shared

import (
	"testing"
	"time"
)

func TestDateOrder(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantIssue bool
	}{
		{"start before end", day, day.AddDate(0, 0, 7), false},
		{"equal dates rejected", day, day, true},
		{"end before start", day.AddDate(0, 0, 7), day, true},
		{"zero start skipped", time.Time{}, day, false},
		{"zero end skipped", day, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.DateOrder("start_date", tt.start, "end_date", tt.end)
			if v.HasIssues() != tt.wantIssue {
				t.Errorf("HasIssues = %v, want %v", v.HasIssues(), tt.wantIssue)
			}
		})
	}
}

func TestEnumIgnoresCaseAndBlank(t *testing.T) {
	allowed := []string{"on_track", "at_risk", "off_track"}

	v := NewValidator()
	v.Enum("status", "On_Track", allowed, "unknown status")
	v.Enum("status", "", allowed, "unknown status")
	if v.HasIssues() {
		t.Errorf("issues = %+v, want none", v.Issues())
	}

	v.Enum("status", "paused", allowed, "unknown status")
	if !v.HasIssues() {
		t.Error("expected an issue for an unknown value")
	}
}
