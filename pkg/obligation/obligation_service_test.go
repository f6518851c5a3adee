package obligation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonaeru/sonaeru/internal/event_bus"
	"github.com/sonaeru/sonaeru/internal/test_utils"
	"github.com/sonaeru/sonaeru/internal/utils"
	"github.com/sonaeru/sonaeru/pkg/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = test_utils.ContextWithUser()

var obligationRepoStub = NewStubObligationRepo()
var categoryRepoStub = category.NewStubCategoryRepo()

var service Service
var bus *event_bus.EventBus
var clock *utils.MockClock

func setup(t *testing.T) func() {
	clock = &utils.MockClock{FixedNow: time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)}
	bus = event_bus.NewEventBus()
	categoryService := category.NewCategoryService(categoryRepoStub)
	service = NewObligationService(obligationRepoStub, categoryService, bus, clock, 24, 90)
	return func() {
		t.Log("Teardown after test")
		obligationRepoStub.Cleanup()
		categoryRepoStub.Cleanup()
	}
}

func annualTax() Definition {
	return Definition{
		Name:           "Property tax",
		Amount:         decimal.NewFromInt(150000),
		IntervalMonths: 12,
		FirstDueDate:   date(2025, time.March, 15),
		LeadTimeMonths: 3,
		Strategy:       StrategyEven,
	}
}

func TestServiceImpl_CreateDefinition(t *testing.T) {
	t.Run("should project occurrences over the horizon on creation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateDefinition(ctx, annualTax())

		// then exactly two occurrences fit a 24 month horizon from January 1st
		require.NoError(t, err)
		require.NotZero(t, created.Id)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		require.Len(t, occurrences, 2)
		assert.Equal(t, date(2025, time.March, 15), occurrences[0].ScheduledDate)
		assert.Equal(t, StatusSaving, occurrences[0].Status)
		assert.Equal(t, date(2026, time.March, 15), occurrences[1].ScheduledDate)
		assert.Equal(t, StatusPlanned, occurrences[1].Status)
	})

	t.Run("should collect all field violations at once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		def := annualTax()
		def.Name = "  "
		def.Amount = decimal.Zero
		def.IntervalMonths = 0

		// when
		_, err := service.CreateDefinition(ctx, def)

		// then
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Violations, 3)
		definitions, listErr := service.ListDefinitions(ctx)
		require.NoError(t, listErr)
		assert.Empty(t, definitions)
	})

	t.Run("should require a custom amount for the fixed strategy", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		def := annualTax()
		def.Strategy = StrategyFixed
		def.CustomMonthlyAmount = decimal.Zero

		// when
		_, err := service.CreateDefinition(ctx, def)

		// then
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "customMonthlyAmount", validationErr.Violations[0].Field)
	})

	t.Run("should reject a missing category reference", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		missing := 999
		def := annualTax()
		def.CategoryId = &missing

		// when
		_, err := service.CreateDefinition(ctx, def)

		// then
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestServiceImpl_SynchronizeOccurrences(t *testing.T) {
	t.Run("should be idempotent without intervening changes", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)

		// when
		summary, err := service.SynchronizeOccurrences(ctx, created.Id, 0)

		// then
		require.NoError(t, err)
		assert.Equal(t, SyncSummary{}, summary)
	})

	t.Run("should extend the projection for a larger horizon", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)

		// when
		summary, err := service.SynchronizeOccurrences(ctx, created.Id, 36)

		// then
		require.NoError(t, err)
		assert.Equal(t, SyncSummary{Created: 1}, summary)
	})
}

func TestServiceImpl_UpdateDefinition(t *testing.T) {
	t.Run("should update pending occurrences when the amount changes", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		created.Amount = decimal.NewFromInt(180000)

		// when
		summary, err := service.UpdateDefinition(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, SyncSummary{Updated: 2}, summary)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		for _, occ := range occurrences {
			assert.True(t, occ.ExpectedAmount.Equal(decimal.NewFromInt(180000)))
		}
	})

	t.Run("should report not found for a foreign definition", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		def := annualTax()
		def.Id = 42

		// when
		_, err := service.UpdateDefinition(ctx, def)

		// then
		assert.ErrorIs(t, err, ErrDefinitionNotFound)
	})
}

func TestServiceImpl_MarkOccurrenceCompleted(t *testing.T) {
	t.Run("should shift future occurrences by the realized offset", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given an occurrence paid five days late
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)

		var completedEvents []event_bus.OccurrenceCompleted
		unsubscribe := event_bus.SubscribeTyped(bus, event_bus.OccurrenceCompletedEvent,
			func(e event_bus.EventT[event_bus.OccurrenceCompleted]) error {
				completedEvents = append(completedEvents, e.Data)
				return nil
			})
		defer unsubscribe()

		// when
		summary, err := service.MarkOccurrenceCompleted(ctx, occurrences[0].Id,
			date(2025, time.March, 20), decimal.NewFromInt(149000), nil)

		// then the second occurrence moved from the 15th to the 20th
		require.NoError(t, err)
		assert.Equal(t, SyncSummary{Updated: 1}, summary)
		occurrences, err = service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		require.Len(t, occurrences, 2)
		assert.Equal(t, StatusCompleted, occurrences[0].Status)
		require.NotNil(t, occurrences[0].ActualDate)
		assert.Equal(t, date(2025, time.March, 20), *occurrences[0].ActualDate)
		assert.Equal(t, date(2026, time.March, 20), occurrences[1].ScheduledDate)

		require.Len(t, completedEvents, 1)
		assert.Equal(t, occurrences[0].Id, completedEvents[0].OccurrenceId)
		assert.True(t, completedEvents[0].ActualAmount.Equal(decimal.NewFromInt(149000)))
	})

	t.Run("should reject an actual date far from the scheduled date", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)

		// when the actual date is more than 90 days out
		_, err = service.MarkOccurrenceCompleted(ctx, occurrences[0].Id,
			date(2025, time.July, 1), decimal.NewFromInt(150000), nil)

		// then
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		occurrences, listErr := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, listErr)
		assert.Equal(t, StatusSaving, occurrences[0].Status)
		assert.Nil(t, occurrences[0].ActualDate)
	})

	t.Run("should reject completing an already completed occurrence", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		_, err = service.MarkOccurrenceCompleted(ctx, occurrences[0].Id,
			date(2025, time.March, 15), decimal.NewFromInt(150000), nil)
		require.NoError(t, err)

		// when
		_, err = service.MarkOccurrenceCompleted(ctx, occurrences[0].Id,
			date(2025, time.March, 16), decimal.NewFromInt(150000), nil)

		// then
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestServiceImpl_UpdateOccurrence(t *testing.T) {
	t.Run("should revert a completed occurrence and restore the schedule", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a completed occurrence that shifted the schedule
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		_, err = service.MarkOccurrenceCompleted(ctx, occurrences[0].Id,
			date(2025, time.March, 20), decimal.NewFromInt(149000), nil)
		require.NoError(t, err)

		var revertedEvents []event_bus.OccurrenceReverted
		unsubscribe := event_bus.SubscribeTyped(bus, event_bus.OccurrenceRevertedEvent,
			func(e event_bus.EventT[event_bus.OccurrenceReverted]) error {
				revertedEvents = append(revertedEvents, e.Data)
				return nil
			})
		defer unsubscribe()

		// when
		summary, err := service.UpdateOccurrence(ctx, occurrences[0].Id, StatusPlanned, nil, nil, nil)

		// then the occurrence is pending again and the schedule is back on
		// its original dates
		require.NoError(t, err)
		require.NotNil(t, summary)
		occurrences, err = service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		require.Len(t, occurrences, 2)
		assert.Equal(t, StatusSaving, occurrences[0].Status)
		assert.Nil(t, occurrences[0].ActualDate)
		assert.Nil(t, occurrences[0].ActualAmount)
		assert.Equal(t, date(2026, time.March, 15), occurrences[1].ScheduledDate)

		require.Len(t, revertedEvents, 1)
		assert.True(t, revertedEvents[0].ActualAmount.Equal(decimal.NewFromInt(149000)))
	})

	t.Run("should not re-synchronize when only the pending status changes", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)

		// when
		summary, err := service.UpdateOccurrence(ctx, occurrences[1].Id, StatusSaving, nil, nil, nil)

		// then
		require.NoError(t, err)
		assert.Nil(t, summary)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)

		// when
		_, err = service.UpdateOccurrence(ctx, occurrences[0].Id, Status("bogus"), nil, nil, nil)

		// then nothing was persisted
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "status", validationErr.Violations[0].Field)
		occurrences, err = service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, StatusSaving, occurrences[0].Status)
	})

	t.Run("should require actuals when completing through a status change", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)
		occurrences, err := service.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)

		// when
		_, err = service.UpdateOccurrence(ctx, occurrences[0].Id, StatusCompleted, nil, nil, nil)

		// then
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestServiceImpl_DeleteDefinition(t *testing.T) {
	t.Run("should cascade to occurrences and notify subscribers", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateDefinition(ctx, annualTax())
		require.NoError(t, err)

		var deletedEvents []event_bus.DefinitionDeleted
		unsubscribe := event_bus.SubscribeTyped(bus, event_bus.DefinitionDeletedEvent,
			func(e event_bus.EventT[event_bus.DefinitionDeleted]) error {
				deletedEvents = append(deletedEvents, e.Data)
				return nil
			})
		defer unsubscribe()

		// when
		err = service.DeleteDefinition(ctx, created.Id)

		// then
		require.NoError(t, err)
		_, err = service.GetDefinition(ctx, created.Id)
		assert.ErrorIs(t, err, ErrDefinitionNotFound)
		require.Len(t, deletedEvents, 1)
		assert.Equal(t, created.Id, deletedEvents[0].DefinitionId)
	})
}
