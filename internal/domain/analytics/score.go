package analytics

// ScoreFunc folds a completion rate and an average progress percentage
// (both 0-100) into one performance score.
type ScoreFunc func(completionRate, averageProgress float64) float64

// DefaultScore weighs completion and progress equally.
func DefaultScore(completionRate, averageProgress float64) float64 {
	return 0.5*completionRate + 0.5*averageProgress
}
