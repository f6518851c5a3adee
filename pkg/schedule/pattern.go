package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayOfMonthPattern selects a concrete day within a given month. It is a
// closed set of variants; Resolve type-switches over all of them, so adding a
// variant is a single-point, compiler-checked change.
type DayOfMonthPattern interface {
	dayOfMonthPattern()
}

// FixedDay resolves to the given calendar day, clamped to the month's length.
type FixedDay struct {
	Day int
}

// EndOfMonth resolves to the last calendar day of the month.
type EndOfMonth struct{}

// EndOfMonthMinus resolves to the last calendar day minus Days calendar days.
// The result may fall into the previous month; that is accepted, not clamped.
type EndOfMonthMinus struct {
	Days int
}

// NthWeekday resolves to the Week-th occurrence (1-based) of Weekday. Months
// without that many occurrences resolve to nothing.
type NthWeekday struct {
	Week    int
	Weekday time.Weekday
}

// LastWeekday resolves to the final occurrence of Weekday in the month.
type LastWeekday struct {
	Weekday time.Weekday
}

// FirstBusinessDay resolves to day 1 advanced over a possible weekend.
type FirstBusinessDay struct{}

// LastBusinessDay resolves to the last day moved back over a possible weekend.
type LastBusinessDay struct{}

// NthBusinessDay resolves to the N-th business day (1-based) counting from
// day 1.
type NthBusinessDay struct {
	N int
}

// LastBusinessDayMinus resolves to the last business day stepped back Days
// business days.
type LastBusinessDayMinus struct {
	Days int
}

func (FixedDay) dayOfMonthPattern()             {}
func (EndOfMonth) dayOfMonthPattern()           {}
func (EndOfMonthMinus) dayOfMonthPattern()      {}
func (NthWeekday) dayOfMonthPattern()           {}
func (LastWeekday) dayOfMonthPattern()          {}
func (FirstBusinessDay) dayOfMonthPattern()     {}
func (LastBusinessDay) dayOfMonthPattern()      {}
func (NthBusinessDay) dayOfMonthPattern()       {}
func (LastBusinessDayMinus) dayOfMonthPattern() {}

// Resolve turns a pattern into a concrete date within (or, for the minus
// variants, relative to) the given month. The second return value is false
// when the month has no such date, e.g. no 5th Wednesday.
func Resolve(p DayOfMonthPattern, year int, month time.Month) (time.Time, bool) {
	switch v := p.(type) {
	case FixedDay:
		day := v.Day
		if day < 1 {
			day = 1
		}
		if max := daysInMonth(year, month); day > max {
			day = max
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	case EndOfMonth:
		return lastDayOfMonth(year, month), true
	case EndOfMonthMinus:
		return lastDayOfMonth(year, month).AddDate(0, 0, -v.Days), true
	case NthWeekday:
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		offset := (int(v.Weekday) - int(first.Weekday()) + 7) % 7
		day := 1 + offset + 7*(v.Week-1)
		if day > daysInMonth(year, month) {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	case LastWeekday:
		t := lastDayOfMonth(year, month)
		for t.Weekday() != v.Weekday {
			t = t.AddDate(0, 0, -1)
		}
		return t, true
	case FirstBusinessDay:
		return firstBusinessDayOfMonth(year, month), true
	case LastBusinessDay:
		return lastBusinessDayOfMonth(year, month), true
	case NthBusinessDay:
		return nthBusinessDayOfMonth(year, month, v.N), true
	case LastBusinessDayMinus:
		return businessDaysBack(lastBusinessDayOfMonth(year, month), v.Days), true
	default:
		panic(fmt.Sprintf("unknown day-of-month pattern %T", p))
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// FormatPattern renders a pattern as the compact string kept in the database
// and exchanged with the frontend. A nil pattern renders as "".
func FormatPattern(p DayOfMonthPattern) string {
	switch v := p.(type) {
	case nil:
		return ""
	case FixedDay:
		return fmt.Sprintf("fixed:%d", v.Day)
	case EndOfMonth:
		return "eom"
	case EndOfMonthMinus:
		return fmt.Sprintf("eom-%d", v.Days)
	case NthWeekday:
		return fmt.Sprintf("nth-weekday:%d:%s", v.Week, strings.ToLower(v.Weekday.String()))
	case LastWeekday:
		return fmt.Sprintf("last-weekday:%s", strings.ToLower(v.Weekday.String()))
	case FirstBusinessDay:
		return "first-business-day"
	case LastBusinessDay:
		return "last-business-day"
	case NthBusinessDay:
		return fmt.Sprintf("nth-business-day:%d", v.N)
	case LastBusinessDayMinus:
		return fmt.Sprintf("last-business-day-%d", v.Days)
	default:
		panic(fmt.Sprintf("unknown day-of-month pattern %T", p))
	}
}

// ParsePattern is the inverse of FormatPattern. "" parses to nil, meaning the
// recurrence falls back to its anchor's day of month.
func ParsePattern(s string) (DayOfMonthPattern, error) {
	if s == "" {
		return nil, nil
	}
	switch {
	case s == "eom":
		return EndOfMonth{}, nil
	case s == "first-business-day":
		return FirstBusinessDay{}, nil
	case s == "last-business-day":
		return LastBusinessDay{}, nil
	case strings.HasPrefix(s, "fixed:"):
		day, err := strconv.Atoi(strings.TrimPrefix(s, "fixed:"))
		if err != nil || day < 1 || day > 31 {
			return nil, fmt.Errorf("invalid fixed day pattern %q", s)
		}
		return FixedDay{Day: day}, nil
	case strings.HasPrefix(s, "eom-"):
		days, err := strconv.Atoi(strings.TrimPrefix(s, "eom-"))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid end-of-month pattern %q", s)
		}
		return EndOfMonthMinus{Days: days}, nil
	case strings.HasPrefix(s, "nth-weekday:"):
		parts := strings.Split(strings.TrimPrefix(s, "nth-weekday:"), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid nth-weekday pattern %q", s)
		}
		week, err := strconv.Atoi(parts[0])
		if err != nil || week < 1 || week > 5 {
			return nil, fmt.Errorf("invalid nth-weekday pattern %q", s)
		}
		wd, ok := weekdayNames[parts[1]]
		if !ok {
			return nil, fmt.Errorf("invalid weekday in pattern %q", s)
		}
		return NthWeekday{Week: week, Weekday: wd}, nil
	case strings.HasPrefix(s, "last-weekday:"):
		wd, ok := weekdayNames[strings.TrimPrefix(s, "last-weekday:")]
		if !ok {
			return nil, fmt.Errorf("invalid weekday in pattern %q", s)
		}
		return LastWeekday{Weekday: wd}, nil
	case strings.HasPrefix(s, "nth-business-day:"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "nth-business-day:"))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid nth-business-day pattern %q", s)
		}
		return NthBusinessDay{N: n}, nil
	case strings.HasPrefix(s, "last-business-day-"):
		days, err := strconv.Atoi(strings.TrimPrefix(s, "last-business-day-"))
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid last-business-day pattern %q", s)
		}
		return LastBusinessDayMinus{Days: days}, nil
	default:
		return nil, fmt.Errorf("unknown day-of-month pattern %q", s)
	}
}
