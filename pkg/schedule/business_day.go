package schedule

import "time"

// Direction of a business-day search.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// IsBusinessDay reports whether the date falls on Monday through Friday.
// There is no holiday table; weekends are the only non-business days.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NearestBusinessDay returns t itself when it already is a business day,
// otherwise it moves one calendar day at a time in the given direction until
// a business day is found.
func NearestBusinessDay(t time.Time, dir Direction) time.Time {
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, int(dir))
	}
	return t
}

// firstBusinessDayOfMonth is day 1 advanced forward over a possible weekend.
func firstBusinessDayOfMonth(year int, month time.Month) time.Time {
	return NearestBusinessDay(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), Forward)
}

// lastBusinessDayOfMonth is the last calendar day moved backward over a
// possible weekend.
func lastBusinessDayOfMonth(year int, month time.Month) time.Time {
	return NearestBusinessDay(lastDayOfMonth(year, month), Backward)
}

// nthBusinessDayOfMonth counts business days forward from day 1, inclusive of
// day 1 when it is a business day. n is 1-based.
func nthBusinessDayOfMonth(year int, month time.Month, n int) time.Time {
	t := firstBusinessDayOfMonth(year, month)
	for i := 1; i < n; i++ {
		t = NearestBusinessDay(t.AddDate(0, 0, 1), Forward)
	}
	return t
}

// businessDaysBack steps backward n business days from t. t must already be a
// business day; n=0 returns t unchanged.
func businessDaysBack(t time.Time, n int) time.Time {
	for i := 0; i < n; i++ {
		t = NearestBusinessDay(t.AddDate(0, 0, -1), Backward)
	}
	return t
}

// lastDayOfMonth handles 28/29/30/31 via the day-zero-of-next-month trick.
func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return lastDayOfMonth(year, month).Day()
}
