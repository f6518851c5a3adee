package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurrence is the scheduling slice of an obligation definition: everything
// the generator needs, nothing it does not.
type Recurrence struct {
	// Anchor is the first occurrence's date. When a completed occurrence
	// exists the caller re-anchors here with that occurrence's actual date.
	Anchor         time.Time
	IntervalMonths int
	LeadTimeMonths int
	// Pattern may be nil, in which case the anchor's own day of month is
	// used, clamped to each month's length.
	Pattern    DayOfMonthPattern
	Adjustment AdjustmentPolicy
	Amount     decimal.Decimal
}

// Entry is one projected occurrence. Saving is true when the date falls
// within the recurrence's lead time of the reference date, compared at month
// granularity.
type Entry struct {
	Date   time.Time
	Amount decimal.Decimal
	Saving bool
}

// effectivePattern is the pattern the generator resolves with: the
// recurrence's own, or the anchor's day of month when none is set.
func (r Recurrence) effectivePattern() DayOfMonthPattern {
	if r.Pattern == nil {
		return FixedDay{Day: r.Anchor.Day()}
	}
	return r.Pattern
}

// ResolvesAnchorMonth reports whether the recurrence yields a date in its own
// anchor month. When false, Generate skips that month entirely and its first
// entry already belongs to a later interval step.
func (r Recurrence) ResolvesAnchorMonth() bool {
	_, ok := Resolve(r.effectivePattern(), r.Anchor.Year(), r.Anchor.Month())
	return ok
}

// Generate projects occurrences from the recurrence anchor forward, stepping
// IntervalMonths at a time, until the resolved date would exceed
// referenceDate + horizonMonths. Months where the pattern resolves to no date
// (e.g. no 5th Friday) are skipped and the recurrence continues at the next
// step. Every entry carries the recurrence's current amount.
func Generate(rec Recurrence, referenceDate time.Time, horizonMonths int) []Entry {
	pattern := rec.effectivePattern()

	horizonEnd := referenceDate.AddDate(0, horizonMonths, 0)

	var entries []Entry
	for step := 0; ; step++ {
		year, month := monthAt(rec.Anchor, step*rec.IntervalMonths)
		if time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).After(horizonEnd) {
			break
		}
		date, ok := Resolve(pattern, year, month)
		if !ok {
			continue
		}
		date = Adjust(date, rec.Adjustment)
		if date.After(horizonEnd) {
			break
		}
		entries = append(entries, Entry{
			Date:   date,
			Amount: rec.Amount,
			Saving: WithinLeadTime(referenceDate, date, rec.LeadTimeMonths),
		})
	}
	return entries
}

// monthAt returns the year and month `offset` months after t's month.
// Computed on a month index rather than AddDate, which would overflow
// Jan 31 + 1 month into March.
func monthAt(t time.Time, offset int) (int, time.Month) {
	idx := t.Year()*12 + int(t.Month()) - 1 + offset
	return idx / 12, time.Month(idx%12 + 1)
}

// WithinLeadTime reports whether a due date falls inside the lead-time window
// of the reference date. The comparison is at month granularity: a due date in
// the reference month itself is always within the window.
func WithinLeadTime(referenceDate, dueDate time.Time, leadTimeMonths int) bool {
	return monthsBetween(referenceDate, dueDate) <= leadTimeMonths
}

// monthsBetween is the month-granularity distance from `from` to `to`.
// Negative when `to` lies in an earlier month.
func monthsBetween(from, to time.Time) int {
	return (to.Year()*12 + int(to.Month())) - (from.Year()*12 + int(from.Month()))
}
