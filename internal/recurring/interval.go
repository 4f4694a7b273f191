package recurring

import (
	"fmt"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
)

// NextRunDate advances a scheduled date by exactly one interval unit.
// Month and year arithmetic follow time.AddDate's normalization rule:
// overflowed days roll into the next month, so 2024-01-31 plus one month is
// 2024-03-02. The rule is pinned by tests; changing it would shift every
// existing schedule.
func NextRunDate(t time.Time, interval string) (time.Time, error) {
	switch interval {
	case model.IntervalWeekly:
		return t.AddDate(0, 0, 7), nil
	case model.IntervalMonthly:
		return t.AddDate(0, 1, 0), nil
	case model.IntervalYearly:
		return t.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown interval: %q", interval)
	}
}

// ValidInterval reports whether s names a supported interval.
func ValidInterval(s string) bool {
	switch s {
	case model.IntervalWeekly, model.IntervalMonthly, model.IntervalYearly:
		return true
	}
	return false
}
