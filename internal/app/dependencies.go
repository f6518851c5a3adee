package app

import (
	"database/sql"

	"github.com/sonaeru/sonaeru/internal/config"
	"github.com/sonaeru/sonaeru/internal/event_bus"
	"github.com/sonaeru/sonaeru/internal/scheduler"
	"github.com/sonaeru/sonaeru/internal/utils"
	"github.com/sonaeru/sonaeru/pkg/category"
	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/sonaeru/sonaeru/pkg/reconcile"
	"github.com/sonaeru/sonaeru/pkg/savings"
	"github.com/sonaeru/sonaeru/pkg/transaction"
	"github.com/sonaeru/sonaeru/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	CategoryService category.Service
	CategoryHandler *category.Handler

	TransactionService transaction.Service
	TransactionHandler *transaction.Handler

	ObligationRepo    obligation.Repo
	ObligationService obligation.Service
	ObligationHandler *obligation.Handler

	SavingsService savings.Service
	SavingsHandler *savings.Handler

	ReconcileService reconcile.Service
	ReconcileHandler *reconcile.Handler

	Scheduler *scheduler.Scheduler
}

// BuildDependencies initializes and wires all application services and
// handlers, including the event subscriptions between them.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.CategoryService = category.NewCategoryService(category.NewCategoryRepo(db))
	deps.CategoryHandler = category.NewCategoryHandler(deps.CategoryService)

	deps.TransactionService = transaction.NewTransactionService(transaction.NewTransactionRepo(db))
	deps.TransactionHandler = transaction.NewTransactionHandler(deps.TransactionService)

	deps.ObligationRepo = obligation.NewObligationRepo(db)
	deps.ObligationService = obligation.NewObligationService(
		deps.ObligationRepo,
		deps.CategoryService,
		deps.EventBus,
		deps.Clock,
		cfg.Schedule.HorizonMonths,
		cfg.Reconcile.WindowDays,
	)
	deps.ObligationHandler = obligation.NewObligationHandler(deps.ObligationService)

	savingsService := savings.NewSavingsService(savings.NewSavingsRepo(db), deps.ObligationRepo)
	savingsService.RegisterSubscriptions(deps.EventBus)
	deps.SavingsService = savingsService
	deps.SavingsHandler = savings.NewSavingsHandler(deps.SavingsService, deps.Clock)

	deps.ReconcileService = reconcile.NewReconcileService(
		deps.ObligationService,
		deps.TransactionService,
		cfg.Reconcile.WindowDays,
	)
	deps.ReconcileHandler = reconcile.NewReconcileHandler(deps.ReconcileService)

	deps.Scheduler = scheduler.NewScheduler(deps.SavingsService, deps.Clock, cfg.Schedule.MonthlyTickCron)

	return deps
}
