package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// OccurrenceCompletedEvent fires after an occurrence has been marked
	// completed and persisted. The savings balance records the payment side
	// from this event.
	OccurrenceCompletedEvent EventType = "obligation.occurrence.completed"
	// OccurrenceRevertedEvent fires when a completed occurrence is reverted
	// back to a pending status; the previously recorded payment is undone.
	OccurrenceRevertedEvent EventType = "obligation.occurrence.reverted"
	// DefinitionDeletedEvent fires after a definition and its occurrences
	// were removed, so dependent records (savings balance) can be cleaned up.
	DefinitionDeletedEvent EventType = "obligation.definition.deleted"
)

type OccurrenceCompleted struct {
	DefinitionId int
	OccurrenceId int
	ActualDate   time.Time
	ActualAmount decimal.Decimal
}

type OccurrenceReverted struct {
	DefinitionId int
	OccurrenceId int
	// ActualAmount is the amount that had been recorded as paid and must be
	// reversed on the savings balance.
	ActualAmount decimal.Decimal
}

type DefinitionDeleted struct {
	DefinitionId int
}
