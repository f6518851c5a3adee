package savings

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonaeru/sonaeru/pkg/obligation"
)

// Balance is the savings ledger of one definition. Saved and Paid only ever
// grow through the accumulator; the balance itself is always derived, never
// stored.
type Balance struct {
	DefinitionId int
	Saved        decimal.Decimal
	Paid         decimal.Decimal
	// LastYear and LastMonth record the most recent monthly tick, making the
	// tick idempotent per calendar month.
	LastYear  int
	LastMonth time.Month
}

func (b Balance) Amount() decimal.Decimal {
	return b.Saved.Sub(b.Paid)
}

// Shortfall reports that more was paid out than had been saved.
func (b Balance) Shortfall() bool {
	return b.Amount().IsNegative()
}

// MonthlyContribution computes the amount one monthly tick adds for a
// definition. The even strategy splits the obligation amount over the
// contribution months before the next due date: the recurrence interval minus
// the lead time, floored at one month.
func MonthlyContribution(def obligation.Definition) decimal.Decimal {
	switch def.Strategy {
	case obligation.StrategyEven:
		months := def.IntervalMonths - def.LeadTimeMonths
		if months < 1 {
			months = 1
		}
		return def.Amount.DivRound(decimal.NewFromInt(int64(months)), 2)
	case obligation.StrategyFixed:
		return def.CustomMonthlyAmount
	default:
		return decimal.Zero
	}
}
