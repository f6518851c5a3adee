package obligation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonaeru/sonaeru/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func entry(year int, month time.Month, day int, amount int64, saving bool) schedule.Entry {
	return schedule.Entry{Date: date(year, month, day), Amount: decimal.NewFromInt(amount), Saving: saving}
}

func pendingOccurrence(id int, year int, month time.Month, day int, amount int64, status Status) Occurrence {
	return Occurrence{
		Id:             id,
		DefinitionId:   1,
		ScheduledDate:  date(year, month, day),
		ExpectedAmount: decimal.NewFromInt(amount),
		Status:         status,
	}
}

func annualRecurrence(year int, month time.Month, day int) schedule.Recurrence {
	return schedule.Recurrence{
		Anchor:         date(year, month, day),
		IntervalMonths: 12,
		LeadTimeMonths: 3,
		Amount:         decimal.NewFromInt(150000),
	}
}

func TestSynchronize(t *testing.T) {
	t.Run("should create every fresh entry for an empty occurrence set", func(t *testing.T) {
		// given
		fresh := []schedule.Entry{
			entry(2025, time.March, 15, 150000, true),
			entry(2026, time.March, 15, 150000, false),
		}

		// when
		diff := Synchronize(1, annualRecurrence(2025, time.March, 15), nil, fresh)

		// then
		require.Len(t, diff.Creates, 2)
		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Deletes)
		assert.Equal(t, date(2025, time.March, 15), diff.Creates[0].ScheduledDate)
		assert.Equal(t, StatusSaving, diff.Creates[0].Status)
		assert.Equal(t, StatusPlanned, diff.Creates[1].Status)
		assert.Equal(t, 1, diff.Creates[0].DefinitionId)
	})

	t.Run("should produce an empty diff when nothing changed", func(t *testing.T) {
		// given
		existing := []Occurrence{
			pendingOccurrence(10, 2025, time.March, 15, 150000, StatusSaving),
			pendingOccurrence(11, 2026, time.March, 15, 150000, StatusPlanned),
		}
		fresh := []schedule.Entry{
			entry(2025, time.March, 15, 150000, true),
			entry(2026, time.March, 15, 150000, false),
		}

		// when
		diff := Synchronize(1, annualRecurrence(2025, time.March, 15), existing, fresh)

		// then
		assert.True(t, diff.Empty())
	})

	t.Run("should update pending occurrences in place when the amount changes", func(t *testing.T) {
		// given
		existing := []Occurrence{
			pendingOccurrence(10, 2025, time.March, 15, 150000, StatusSaving),
			pendingOccurrence(11, 2026, time.March, 15, 150000, StatusPlanned),
		}
		fresh := []schedule.Entry{
			entry(2025, time.March, 15, 180000, true),
			entry(2026, time.March, 15, 180000, false),
		}

		// when
		diff := Synchronize(1, annualRecurrence(2025, time.March, 15), existing, fresh)

		// then
		require.Len(t, diff.Updates, 2)
		assert.Empty(t, diff.Creates)
		assert.Empty(t, diff.Deletes)
		assert.Equal(t, 10, diff.Updates[0].Id)
		assert.True(t, diff.Updates[0].ExpectedAmount.Equal(decimal.NewFromInt(180000)))
	})

	t.Run("should delete surplus pending occurrences when the horizon shrinks", func(t *testing.T) {
		// given
		existing := []Occurrence{
			pendingOccurrence(10, 2025, time.March, 15, 150000, StatusSaving),
			pendingOccurrence(11, 2026, time.March, 15, 150000, StatusPlanned),
		}
		fresh := []schedule.Entry{
			entry(2025, time.March, 15, 150000, true),
		}

		// when
		diff := Synchronize(1, annualRecurrence(2025, time.March, 15), existing, fresh)

		// then
		assert.Empty(t, diff.Creates)
		assert.Empty(t, diff.Updates)
		assert.Equal(t, []int{11}, diff.Deletes)
	})

	t.Run("should never touch completed occurrences", func(t *testing.T) {
		// given a completed occurrence and a projection re-anchored at its
		// actual date: the leading fresh entry is its baseline slot
		actualDate := date(2025, time.March, 20)
		actualAmount := decimal.NewFromInt(149000)
		completed := Occurrence{
			Id:             10,
			DefinitionId:   1,
			ScheduledDate:  date(2025, time.March, 15),
			ExpectedAmount: decimal.NewFromInt(150000),
			Status:         StatusCompleted,
			ActualDate:     &actualDate,
			ActualAmount:   &actualAmount,
		}
		existing := []Occurrence{
			completed,
			pendingOccurrence(11, 2026, time.March, 15, 150000, StatusPlanned),
		}
		fresh := []schedule.Entry{
			entry(2025, time.March, 20, 150000, true),
			entry(2026, time.March, 20, 150000, false),
		}

		// when
		diff := Synchronize(1, annualRecurrence(2025, time.March, 20), existing, fresh)

		// then the baseline slot is discarded and the pending occurrence
		// shifts to the re-anchored date
		require.Len(t, diff.Updates, 1)
		assert.Empty(t, diff.Creates)
		assert.Empty(t, diff.Deletes)
		assert.Equal(t, 11, diff.Updates[0].Id)
		assert.Equal(t, date(2026, time.March, 20), diff.Updates[0].ScheduledDate)
	})

	t.Run("should keep the leading entry when the pattern skips the re-anchor month", func(t *testing.T) {
		// given a monthly 5th-Friday recurrence whose January occurrence was
		// completed on February 10th: February through April 2025 have no 5th
		// Friday, so the re-anchored projection starts with the genuine next
		// occurrence in May
		actualDate := date(2025, time.February, 10)
		actualAmount := decimal.NewFromInt(20000)
		completed := Occurrence{
			Id:             10,
			DefinitionId:   1,
			ScheduledDate:  date(2025, time.January, 31),
			ExpectedAmount: decimal.NewFromInt(20000),
			Status:         StatusCompleted,
			ActualDate:     &actualDate,
			ActualAmount:   &actualAmount,
		}
		existing := []Occurrence{
			completed,
			pendingOccurrence(11, 2025, time.May, 30, 20000, StatusSaving),
		}
		rec := schedule.Recurrence{
			Anchor:         actualDate,
			IntervalMonths: 1,
			LeadTimeMonths: 3,
			Pattern:        schedule.NthWeekday{Week: 5, Weekday: time.Friday},
			Amount:         decimal.NewFromInt(20000),
		}
		fresh := schedule.Generate(rec, actualDate, 7)
		require.Len(t, fresh, 2)
		require.Equal(t, date(2025, time.May, 30), fresh[0].Date)
		require.Equal(t, date(2025, time.August, 29), fresh[1].Date)

		// when
		diff := Synchronize(1, rec, existing, fresh)

		// then the May occurrence stays in place and August is created
		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Deletes)
		require.Len(t, diff.Creates, 1)
		assert.Equal(t, date(2025, time.August, 29), diff.Creates[0].ScheduledDate)
	})

	t.Run("should update the status when an occurrence enters the lead-time window", func(t *testing.T) {
		// given
		existing := []Occurrence{
			pendingOccurrence(10, 2025, time.March, 15, 150000, StatusPlanned),
		}
		fresh := []schedule.Entry{
			entry(2025, time.March, 15, 150000, true),
		}

		// when
		diff := Synchronize(1, annualRecurrence(2025, time.March, 15), existing, fresh)

		// then
		require.Len(t, diff.Updates, 1)
		assert.Equal(t, StatusSaving, diff.Updates[0].Status)
	})

	t.Run("should be idempotent after applying its own diff", func(t *testing.T) {
		// given
		fresh := []schedule.Entry{
			entry(2025, time.March, 15, 150000, true),
			entry(2026, time.March, 15, 150000, false),
		}
		rec := annualRecurrence(2025, time.March, 15)
		first := Synchronize(1, rec, nil, fresh)
		applied := make([]Occurrence, 0, len(first.Creates))
		for i, occ := range first.Creates {
			occ.Id = i + 1
			applied = append(applied, occ)
		}

		// when
		second := Synchronize(1, rec, applied, fresh)

		// then
		assert.True(t, second.Empty())
	})
}

func TestRecurrenceFor(t *testing.T) {
	t.Run("should anchor at the first due date without completions", func(t *testing.T) {
		// given
		def := Definition{
			FirstDueDate:   date(2025, time.March, 15),
			IntervalMonths: 12,
			LeadTimeMonths: 3,
			Amount:         decimal.NewFromInt(150000),
		}

		// when
		rec := recurrenceFor(def, nil)

		// then
		assert.Equal(t, date(2025, time.March, 15), rec.Anchor)
		assert.Equal(t, 12, rec.IntervalMonths)
	})

	t.Run("should re-anchor at the latest completion's actual date", func(t *testing.T) {
		// given two completions, the later one paid five days late
		firstActual := date(2024, time.March, 15)
		firstAmount := decimal.NewFromInt(150000)
		lateActual := date(2025, time.March, 20)
		lateAmount := decimal.NewFromInt(151000)
		def := Definition{
			FirstDueDate:   date(2024, time.March, 15),
			IntervalMonths: 12,
			Amount:         decimal.NewFromInt(150000),
		}
		existing := []Occurrence{
			{Id: 1, ScheduledDate: date(2024, time.March, 15), Status: StatusCompleted, ActualDate: &firstActual, ActualAmount: &firstAmount},
			{Id: 2, ScheduledDate: date(2025, time.March, 15), Status: StatusCompleted, ActualDate: &lateActual, ActualAmount: &lateAmount},
			pendingOccurrence(3, 2026, time.March, 15, 150000, StatusPlanned),
		}

		// when
		rec := recurrenceFor(def, existing)

		// then
		assert.Equal(t, date(2025, time.March, 20), rec.Anchor)
	})
}
