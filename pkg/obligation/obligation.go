package obligation

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonaeru/sonaeru/pkg/schedule"
)

// Status is an occurrence's lifecycle state. Pending occurrences move between
// planned and saving as the lead-time window approaches; completed is terminal
// until explicitly reverted.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusSaving    Status = "saving"
	StatusCompleted Status = "completed"
)

// SavingStrategy governs the monthly contribution toward a definition.
type SavingStrategy string

const (
	// StrategyEven splits the amount evenly over the contribution months
	// before the next due date.
	StrategyEven SavingStrategy = "even"
	// StrategyFixed contributes a user-chosen monthly amount.
	StrategyFixed SavingStrategy = "fixed"
	// StrategyNone disables saving for the definition.
	StrategyNone SavingStrategy = "none"
)

// Definition is a recurring obligation template. Its occurrences are derived
// from it by the schedule generator and kept consistent by the synchronization
// engine; callers never create occurrences directly.
type Definition struct {
	Id             int
	Name           string
	Amount         decimal.Decimal
	IntervalMonths int
	// FirstDueDate anchors the recurrence. Once an occurrence has been
	// completed, generation re-anchors at the latest completion's actual date
	// instead.
	FirstDueDate   time.Time
	LeadTimeMonths int
	// Pattern is nil when the definition simply recurs on FirstDueDate's day
	// of month.
	Pattern             schedule.DayOfMonthPattern
	Adjustment          schedule.AdjustmentPolicy
	Strategy            SavingStrategy
	CustomMonthlyAmount decimal.Decimal
	CategoryId          *int
}

// Occurrence is one projected or completed instance of a definition. The
// definition is referenced by id, never by pointer. ActualDate, ActualAmount
// and TransactionId are set together when the occurrence is completed and
// cleared together when it is reverted.
type Occurrence struct {
	Id             int
	DefinitionId   int
	ScheduledDate  time.Time
	ExpectedAmount decimal.Decimal
	Status         Status
	ActualDate     *time.Time
	ActualAmount   *decimal.Decimal
	TransactionId  *int
}

func (o Occurrence) Completed() bool {
	return o.Status == StatusCompleted
}

// statusFor maps the generator's saving flag onto a pending status.
func statusFor(saving bool) Status {
	if saving {
		return StatusSaving
	}
	return StatusPlanned
}
