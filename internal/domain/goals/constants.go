package goals

const (
	StatusOnTrack  = "on_track"
	StatusAtRisk   = "at_risk"
	StatusOffTrack = "off_track"

	TypeTarget     = "target"
	TypePercentage = "percentage"
	TypeRevenue    = "revenue"
	TypeCustom     = "custom"

	CycleWeekly    = "weekly"
	CycleBiweekly  = "biweekly"
	CycleMonthly   = "monthly"
	CycleQuarterly = "quarterly"

	ComparisonGreaterThan = "greater_than"
	ComparisonLessThan    = "less_than"
	ComparisonEqualTo     = "equal_to"
)

var Statuses = []string{StatusOnTrack, StatusAtRisk, StatusOffTrack}

var GoalTypes = []string{TypeTarget, TypePercentage, TypeRevenue, TypeCustom}

var Cycles = []string{CycleWeekly, CycleBiweekly, CycleMonthly, CycleQuarterly}

var Comparisons = []string{ComparisonGreaterThan, ComparisonLessThan, ComparisonEqualTo}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
