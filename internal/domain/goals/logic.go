package goals

import (
	"errors"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("status must be one of on_track, at_risk, off_track")
	ErrCommentRequired = errors.New("comment required when status is not on_track")
	ErrNegativeValue   = errors.New("reported value must not be negative")
)

type Evaluation struct {
	ProgressPercentage float64
	Status             string
	Comment            string
}

// Evaluate validates a reported progress update and computes its completion
// percentage. The declared status is taken as-is and never derived from the
// percentage; percentage and status are independent signals.
func Evaluate(comparison string, targetValue, newValue float64, declaredStatus, comment string) (Evaluation, error) {
	if newValue < 0 {
		return Evaluation{}, ErrNegativeValue
	}
	if !ValidStatus(declaredStatus) {
		return Evaluation{}, ErrInvalidStatus
	}
	comment = strings.TrimSpace(comment)
	if declaredStatus != StatusOnTrack && comment == "" {
		return Evaluation{}, ErrCommentRequired
	}
	return Evaluation{
		ProgressPercentage: ProgressPercent(comparison, targetValue, newValue),
		Status:             declaredStatus,
		Comment:            comment,
	}, nil
}

// ProgressPercent maps a current value onto [0,100] for the goal's
// comparison mode. Overshoot is accepted on the value itself but the
// percentage is always clamped.
func ProgressPercent(comparison string, target, current float64) float64 {
	if target <= 0 {
		return 0
	}
	switch comparison {
	case ComparisonLessThan:
		// Lower is better; at or under target counts as fully met.
		if current <= 0 {
			return 100
		}
		return clampPercent(target / current * 100)
	case ComparisonEqualTo:
		// Percentage falls off with distance from the target.
		diff := current - target
		if diff < 0 {
			diff = -diff
		}
		return clampPercent(100 - diff/target*100)
	default:
		return clampPercent(current / target * 100)
	}
}

func clampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
