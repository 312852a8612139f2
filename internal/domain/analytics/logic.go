package analytics

import (
	"math"
	"time"

	"goalspark/internal/domain/activity"
	"goalspark/internal/domain/goals"
	"goalspark/internal/domain/team"
)

// trendMonths is the trailing window of the performance trend chart,
// including the current month.
const trendMonths = 4

// recentActivityLimit caps the dashboard's activity strip.
const recentActivityLimit = 15

// ComputeDashboard assembles the snapshot from already-loaded data. It is
// pure: no clock reads, no storage. An empty team yields a snapshot of
// zeros, never an error.
func ComputeDashboard(goalList []goals.Goal, feed []activity.Item, members []team.Member, now time.Time, score ScoreFunc) Snapshot {
	if score == nil {
		score = DefaultScore
	}

	snap := Snapshot{
		PerformanceTrends:   trendPoints(goalList, now),
		GoalCompletionStats: completionStats(goalList),
		EmployeePerformance: employeePerformance(goalList, members, score),
		RecentActivities:    recentActivities(feed),
	}

	var progressSum float64
	assignees := map[string]struct{}{}
	for _, g := range goalList {
		snap.TeamOverview.TotalGoals++
		if g.IsActive && !g.EndDate.Before(now) {
			snap.TeamOverview.ActiveGoals++
		}
		if completed(g) {
			snap.TeamOverview.CompletedGoals++
		}
		progressSum += g.ProgressPercentage
		for _, id := range g.AssignedTo {
			assignees[id] = struct{}{}
		}

		switch g.Status {
		case goals.StatusOnTrack:
			snap.StatusDistribution.OnTrack++
		case goals.StatusAtRisk:
			snap.StatusDistribution.AtRisk++
		case goals.StatusOffTrack:
			snap.StatusDistribution.OffTrack++
		}
	}
	snap.TeamOverview.TotalEmployees = len(assignees)

	if len(goalList) > 0 {
		snap.TeamOverview.AvgProgress = round1(progressSum / float64(len(goalList)))
		snap.TeamOverview.CompletionRate = round1(100 * float64(snap.TeamOverview.CompletedGoals) / float64(len(goalList)))
		snap.TeamOverview.PerformanceScore = round1(score(snap.TeamOverview.CompletionRate, snap.TeamOverview.AvgProgress))
	}
	return snap
}

func completed(g goals.Goal) bool {
	return g.ProgressPercentage >= 100
}

func completionStats(goalList []goals.Goal) CompletionStats {
	var stats CompletionStats
	for _, g := range goalList {
		switch g.Status {
		case goals.StatusOnTrack:
			stats.OnTrack++
		case goals.StatusAtRisk:
			stats.AtRisk++
		case goals.StatusOffTrack:
			stats.OffTrack++
		}
	}
	total := stats.OnTrack + stats.AtRisk + stats.OffTrack
	if total == 0 {
		return stats
	}
	stats.OnTrackPct = round1(100 * float64(stats.OnTrack) / float64(total))
	stats.AtRiskPct = round1(100 * float64(stats.AtRisk) / float64(total))
	// The buckets must sum to exactly 100 after rounding.
	stats.OffTrackPct = round1(100 - stats.OnTrackPct - stats.AtRiskPct)
	return stats
}

// trendPoints buckets goals by the month their deadline falls in, over
// the trailing window ending at now's month.
func trendPoints(goalList []goals.Goal, now time.Time) []TrendPoint {
	type bucket struct {
		completed int
		sum       float64
		count     int
	}
	buckets := make([]bucket, trendMonths)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)

	for _, g := range goalList {
		idx := monthsBetween(start, g.EndDate)
		if idx < 0 || idx >= trendMonths {
			continue
		}
		buckets[idx].count++
		buckets[idx].sum += g.ProgressPercentage
		if completed(g) {
			buckets[idx].completed++
		}
	}

	points := make([]TrendPoint, trendMonths)
	for i := range buckets {
		month := start.AddDate(0, i, 0)
		points[i] = TrendPoint{Month: month.Format("Jan"), GoalsCompleted: buckets[i].completed}
		if buckets[i].count > 0 {
			points[i].CompletionRate = round1(100 * float64(buckets[i].completed) / float64(buckets[i].count))
			points[i].AverageProgress = round1(buckets[i].sum / float64(buckets[i].count))
		}
	}
	return points
}

func monthsBetween(start, t time.Time) int {
	return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
}

func employeePerformance(goalList []goals.Goal, members []team.Member, score ScoreFunc) []EmployeePerformance {
	perf := make([]EmployeePerformance, 0, len(members))
	for _, m := range members {
		row := EmployeePerformance{UserID: m.ID, Name: m.FirstName + " " + m.LastName}
		var progressSum float64
		for _, g := range goalList {
			if !assignedTo(g, m.ID) {
				continue
			}
			row.GoalsAssigned++
			progressSum += g.ProgressPercentage
			if completed(g) {
				row.GoalsCompleted++
			}
			switch g.Status {
			case goals.StatusOnTrack:
				row.StatusBreakdown.OnTrack++
			case goals.StatusAtRisk:
				row.StatusBreakdown.AtRisk++
			case goals.StatusOffTrack:
				row.StatusBreakdown.OffTrack++
			}
		}
		if row.GoalsAssigned > 0 {
			row.CompletionRate = round1(100 * float64(row.GoalsCompleted) / float64(row.GoalsAssigned))
			row.AverageProgress = round1(progressSum / float64(row.GoalsAssigned))
			row.PerformanceScore = round1(score(row.CompletionRate, row.AverageProgress))
		}
		perf = append(perf, row)
	}
	return perf
}

func assignedTo(g goals.Goal, userID string) bool {
	for _, id := range g.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

func recentActivities(feed []activity.Item) []activity.Item {
	if len(feed) > recentActivityLimit {
		feed = feed[:recentActivityLimit]
	}
	out := make([]activity.Item, len(feed))
	copy(out, feed)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
