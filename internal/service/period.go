package service

import (
	"fmt"
	"time"

	"hotelops/internal/models"
)

// periodStart returns the beginning of the reporting window that contains
// now. Windows are anchored to the calendar in now's location: midnight for
// daily, Monday for weekly, the first of the month, January 1st for yearly.
func periodStart(period string, now time.Time) (time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case models.PeriodDaily:
		return midnight, nil
	case models.PeriodWeekly:
		weekday := int(midnight.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday
		}
		return midnight.AddDate(0, 0, -(weekday - 1)), nil
	case models.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case models.PeriodYearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}
