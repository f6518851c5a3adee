package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("should project an annual obligation over a 24 month horizon", func(t *testing.T) {
		rec := Recurrence{
			Anchor:         date(2025, time.March, 1),
			IntervalMonths: 12,
			LeadTimeMonths: 3,
			Amount:         decimal.NewFromInt(150000),
		}

		entries := Generate(rec, date(2025, time.January, 1), 24)

		require.Len(t, entries, 2)
		assert.Equal(t, date(2025, time.March, 1), entries[0].Date)
		assert.True(t, entries[0].Saving, "first due date is within lead time")
		assert.Equal(t, date(2026, time.March, 1), entries[1].Date)
		assert.False(t, entries[1].Saving)
		assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(150000)))
	})

	t.Run("should fall back to the anchor day clamped per month", func(t *testing.T) {
		rec := Recurrence{
			Anchor:         date(2025, time.January, 31),
			IntervalMonths: 1,
			Amount:         decimal.NewFromInt(1000),
		}

		entries := Generate(rec, date(2025, time.January, 1), 3)

		require.True(t, len(entries) >= 3)
		assert.Equal(t, date(2025, time.January, 31), entries[0].Date)
		assert.Equal(t, date(2025, time.February, 28), entries[1].Date)
		assert.Equal(t, date(2025, time.March, 31), entries[2].Date)
	})

	t.Run("should skip months where the pattern does not resolve", func(t *testing.T) {
		rec := Recurrence{
			Anchor:         date(2025, time.January, 1),
			IntervalMonths: 1,
			Pattern:        NthWeekday{Week: 5, Weekday: time.Friday},
			Amount:         decimal.NewFromInt(500),
		}

		entries := Generate(rec, date(2025, time.January, 1), 5)

		// Only January and May 2025 have five Fridays within the horizon.
		require.Len(t, entries, 2)
		assert.Equal(t, date(2025, time.January, 31), entries[0].Date)
		assert.Equal(t, date(2025, time.May, 30), entries[1].Date)
	})

	t.Run("should apply the adjustment policy after pattern resolution", func(t *testing.T) {
		rec := Recurrence{
			Anchor:         date(2025, time.November, 15), // a Saturday
			IntervalMonths: 12,
			Adjustment:     AdjustNextBusinessDay,
			Amount:         decimal.NewFromInt(9800),
		}

		entries := Generate(rec, date(2025, time.November, 1), 1)

		require.Len(t, entries, 1)
		assert.Equal(t, date(2025, time.November, 17), entries[0].Date)
	})

	t.Run("should not step over month ends when the anchor is day 31", func(t *testing.T) {
		rec := Recurrence{
			Anchor:         date(2025, time.January, 31),
			IntervalMonths: 1,
			Amount:         decimal.NewFromInt(100),
		}

		entries := Generate(rec, date(2025, time.January, 1), 2)

		// Stepping via naive date addition would have skipped February.
		require.True(t, len(entries) >= 2)
		assert.Equal(t, time.February, entries[1].Date.Month())
	})

	t.Run("should mark entries within lead time as saving at month granularity", func(t *testing.T) {
		rec := Recurrence{
			Anchor:         date(2025, time.April, 28),
			IntervalMonths: 6,
			LeadTimeMonths: 2,
			Amount:         decimal.NewFromInt(30000),
		}

		entries := Generate(rec, date(2025, time.February, 3), 12)

		require.Len(t, entries, 2)
		assert.True(t, entries[0].Saving)  // April, 2 months out
		assert.False(t, entries[1].Saving) // October
	})
}
