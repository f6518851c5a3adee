package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonaeru/sonaeru/internal/event_bus"
	"github.com/sonaeru/sonaeru/internal/test_utils"
	"github.com/sonaeru/sonaeru/internal/utils"
	"github.com/sonaeru/sonaeru/pkg/category"
	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/sonaeru/sonaeru/pkg/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = test_utils.ContextWithUser()

var obligationRepoStub = obligation.NewStubObligationRepo()
var transactionRepoStub = transaction.NewStubTransactionRepo()
var categoryRepoStub = category.NewStubCategoryRepo()

var obligationService obligation.Service
var transactionService transaction.Service
var service Service

func setup(t *testing.T) func() {
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)}
	obligationService = obligation.NewObligationService(
		obligationRepoStub,
		category.NewCategoryService(categoryRepoStub),
		event_bus.NewEventBus(),
		clock,
		24,
		90,
	)
	transactionService = transaction.NewTransactionService(transactionRepoStub)
	service = NewReconcileService(obligationService, transactionService, 90)
	return func() {
		t.Log("Teardown after test")
		obligationRepoStub.Cleanup()
		transactionRepoStub.Cleanup()
		categoryRepoStub.Cleanup()
	}
}

func TestServiceImpl_Candidates(t *testing.T) {
	t.Run("should rank transactions inside the window around the scheduled date", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given an occurrence due March 15th and three ledger entries, one of
		// them far outside the window
		created, err := obligationService.CreateDefinition(ctx, obligation.Definition{
			Name:           "Property tax",
			Amount:         decimal.NewFromInt(150000),
			IntervalMonths: 12,
			FirstDueDate:   date(2025, time.March, 15),
			LeadTimeMonths: 3,
			Strategy:       obligation.StrategyEven,
		})
		require.NoError(t, err)
		occurrences, err := obligationService.ListOccurrences(ctx, created.Id)
		require.NoError(t, err)

		exact, err := transactionService.Record(ctx, transaction.Transaction{
			Date: date(2025, time.March, 15), Amount: decimal.NewFromInt(-150000), Label: "city tax office",
		})
		require.NoError(t, err)
		later, err := transactionService.Record(ctx, transaction.Transaction{
			Date: date(2025, time.April, 14), Amount: decimal.NewFromInt(-170000), Label: "insurance",
		})
		require.NoError(t, err)
		_, err = transactionService.Record(ctx, transaction.Transaction{
			Date: date(2025, time.September, 1), Amount: decimal.NewFromInt(-150000), Label: "out of window",
		})
		require.NoError(t, err)

		// when
		candidates, err := service.Candidates(ctx, occurrences[0].Id)

		// then the exact match leads and the out-of-window entry is absent
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, exact.Id, candidates[0].Transaction.Id)
		assert.Equal(t, later.Id, candidates[1].Transaction.Id)
		assert.Greater(t, candidates[0].Score, candidates[1].Score)
	})

	t.Run("should report a missing occurrence", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Candidates(ctx, 999)

		// then
		assert.ErrorIs(t, err, obligation.ErrOccurrenceNotFound)
	})
}
