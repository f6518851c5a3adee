package savings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonaeru/sonaeru/internal/event_bus"
	"github.com/sonaeru/sonaeru/internal/test_utils"
	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = test_utils.ContextWithUser()

var savingsRepoStub = NewStubSavingsRepo()
var obligationRepoStub = obligation.NewStubObligationRepo()

var service Service

func setup(t *testing.T) func() {
	service = NewSavingsService(savingsRepoStub, obligationRepoStub)
	return func() {
		t.Log("Teardown after test")
		savingsRepoStub.Cleanup()
		obligationRepoStub.Cleanup()
	}
}

func storeDefinition(t *testing.T, def obligation.Definition) int {
	t.Helper()
	id, err := obligationRepoStub.StoreDefinition(ctx, test_utils.TestUser.Id, def)
	require.NoError(t, err)
	return id
}

func yearlyEven(amount int64, intervalMonths, leadTimeMonths int) obligation.Definition {
	return obligation.Definition{
		Name:           "Car inspection",
		Amount:         decimal.NewFromInt(amount),
		IntervalMonths: intervalMonths,
		LeadTimeMonths: leadTimeMonths,
		FirstDueDate:   time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		Strategy:       obligation.StrategyEven,
	}
}

func TestMonthlyContribution(t *testing.T) {
	t.Run("should split evenly over the contribution months", func(t *testing.T) {
		// given interval 12 and lead time 3, nine contribution months remain
		def := yearlyEven(90000, 12, 3)

		// when
		contribution := MonthlyContribution(def)

		// then
		assert.True(t, contribution.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("should floor the contribution months at one", func(t *testing.T) {
		// given a lead time covering the whole interval
		def := yearlyEven(60000, 6, 6)

		// when
		contribution := MonthlyContribution(def)

		// then
		assert.True(t, contribution.Equal(decimal.NewFromInt(60000)))
	})

	t.Run("should use the custom amount for the fixed strategy", func(t *testing.T) {
		// given
		def := yearlyEven(90000, 12, 3)
		def.Strategy = obligation.StrategyFixed
		def.CustomMonthlyAmount = decimal.NewFromInt(7500)

		// when
		contribution := MonthlyContribution(def)

		// then
		assert.True(t, contribution.Equal(decimal.NewFromInt(7500)))
	})

	t.Run("should contribute nothing when saving is disabled", func(t *testing.T) {
		// given
		def := yearlyEven(90000, 12, 3)
		def.Strategy = obligation.StrategyNone

		// when
		contribution := MonthlyContribution(def)

		// then
		assert.True(t, contribution.IsZero())
	})
}

func TestServiceImpl_ApplyMonthlyTick(t *testing.T) {
	t.Run("should accumulate twelve even contributions into the yearly amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given 60,000 over 12 months with no lead time: 5,000 a month
		definitionId := storeDefinition(t, yearlyEven(60000, 12, 0))

		// when a year of ticks runs
		for i := 0; i < 12; i++ {
			year, month := 2025, time.Month(i+1)
			require.NoError(t, service.ApplyMonthlyTick(ctx, year, month))
		}

		// then
		balance, err := service.GetBalance(ctx, definitionId)
		require.NoError(t, err)
		assert.True(t, balance.Saved.Equal(decimal.NewFromInt(60000)))
		assert.True(t, balance.Amount().Equal(decimal.NewFromInt(60000)))
		assert.False(t, balance.Shortfall())
	})

	t.Run("should skip a month that was already ticked", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		definitionId := storeDefinition(t, yearlyEven(60000, 12, 0))
		require.NoError(t, service.ApplyMonthlyTick(ctx, 2025, time.January))

		// when the same month ticks again
		require.NoError(t, service.ApplyMonthlyTick(ctx, 2025, time.January))

		// then only one contribution was recorded
		balance, err := service.GetBalance(ctx, definitionId)
		require.NoError(t, err)
		assert.True(t, balance.Saved.Equal(decimal.NewFromInt(5000)))
	})
}

func TestServiceImpl_Payments(t *testing.T) {
	t.Run("should keep balance equal to saved minus paid through a payment history", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a year of saving
		definitionId := storeDefinition(t, yearlyEven(60000, 12, 0))
		for i := 0; i < 12; i++ {
			require.NoError(t, service.ApplyMonthlyTick(ctx, 2025, time.Month(i+1)))
		}

		// when the obligation is partly paid
		balance, err := service.RecordPayment(ctx, definitionId, decimal.NewFromInt(50000))

		// then
		require.NoError(t, err)
		assert.True(t, balance.Amount().Equal(decimal.NewFromInt(10000)))
		assert.False(t, balance.Shortfall())

		// when another year of saving and a payment drain the balance exactly
		for i := 0; i < 12; i++ {
			require.NoError(t, service.ApplyMonthlyTick(ctx, 2026, time.Month(i+1)))
		}
		balance, err = service.RecordPayment(ctx, definitionId, decimal.NewFromInt(70000))

		// then saved 120,000 and paid 120,000 cancel out
		require.NoError(t, err)
		assert.True(t, balance.Amount().IsZero())
		assert.False(t, balance.Shortfall())

		// when anything beyond the cumulative saved is paid
		balance, err = service.RecordPayment(ctx, definitionId, decimal.NewFromInt(1000))

		// then the balance goes negative and flags a shortfall
		require.NoError(t, err)
		assert.True(t, balance.Amount().Equal(decimal.NewFromInt(-1000)))
		assert.True(t, balance.Shortfall())
	})

	t.Run("should undo a payment on revert", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		definitionId := storeDefinition(t, yearlyEven(60000, 12, 0))
		require.NoError(t, service.ApplyMonthlyTick(ctx, 2025, time.January))
		_, err := service.RecordPayment(ctx, definitionId, decimal.NewFromInt(5000))
		require.NoError(t, err)

		// when
		balance, err := service.RevertPayment(ctx, definitionId, decimal.NewFromInt(5000))

		// then
		require.NoError(t, err)
		assert.True(t, balance.Paid.IsZero())
		assert.True(t, balance.Amount().Equal(decimal.NewFromInt(5000)))
	})
}

func TestServiceImpl_RegisterSubscriptions(t *testing.T) {
	t.Run("should record and reverse payments through occurrence events", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		definitionId := storeDefinition(t, yearlyEven(60000, 12, 0))
		bus := event_bus.NewEventBus()
		service.(*ServiceImpl).RegisterSubscriptions(bus)

		// when an occurrence completes
		err := bus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrenceCompletedEvent, event_bus.OccurrenceCompleted{
			DefinitionId: definitionId,
			OccurrenceId: 1,
			ActualDate:   time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			ActualAmount: decimal.NewFromInt(60000),
		}))

		// then the payment side moved
		require.NoError(t, err)
		balance, err := service.GetBalance(ctx, definitionId)
		require.NoError(t, err)
		assert.True(t, balance.Paid.Equal(decimal.NewFromInt(60000)))

		// when the completion is reverted
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrenceRevertedEvent, event_bus.OccurrenceReverted{
			DefinitionId: definitionId,
			OccurrenceId: 1,
			ActualAmount: decimal.NewFromInt(60000),
		}))

		// then the payment is gone again
		require.NoError(t, err)
		balance, err = service.GetBalance(ctx, definitionId)
		require.NoError(t, err)
		assert.True(t, balance.Paid.IsZero())
	})

	t.Run("should drop the balance when the definition is deleted", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		definitionId := storeDefinition(t, yearlyEven(60000, 12, 0))
		require.NoError(t, service.ApplyMonthlyTick(ctx, 2025, time.January))
		bus := event_bus.NewEventBus()
		service.(*ServiceImpl).RegisterSubscriptions(bus)

		// when
		err := bus.Publish(event_bus.NewEvent(ctx, event_bus.DefinitionDeletedEvent, event_bus.DefinitionDeleted{
			DefinitionId: definitionId,
		}))

		// then
		require.NoError(t, err)
		balances, err := service.ListBalances(ctx)
		require.NoError(t, err)
		assert.Empty(t, balances)
	})
}
