package obligation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sonaeru/sonaeru/internal/event_bus"
	"github.com/sonaeru/sonaeru/internal/utils"
	"github.com/sonaeru/sonaeru/pkg/category"
	"github.com/sonaeru/sonaeru/pkg/schedule"
	"github.com/sonaeru/sonaeru/pkg/user"
)

type Service interface {
	CreateDefinition(ctx context.Context, def Definition) (Definition, error)
	GetDefinition(ctx context.Context, id int) (Definition, error)
	ListDefinitions(ctx context.Context) ([]Definition, error)
	UpdateDefinition(ctx context.Context, def Definition) (SyncSummary, error)
	DeleteDefinition(ctx context.Context, id int) error
	ListOccurrences(ctx context.Context, definitionId int) ([]Occurrence, error)
	GetOccurrence(ctx context.Context, occurrenceId int) (Occurrence, error)
	// SynchronizeOccurrences regenerates the projection and persists the diff.
	// A non-positive horizon falls back to the configured default.
	SynchronizeOccurrences(ctx context.Context, definitionId int, horizonMonths int) (SyncSummary, error)
	MarkOccurrenceCompleted(ctx context.Context, occurrenceId int, actualDate time.Time, actualAmount decimal.Decimal, transactionId *int) (SyncSummary, error)
	// UpdateOccurrence changes an occurrence's status. It re-synchronizes the
	// definition's projection only when the completion state toggles and
	// returns a nil summary otherwise.
	UpdateOccurrence(ctx context.Context, occurrenceId int, status Status, actualDate *time.Time, actualAmount *decimal.Decimal, transactionId *int) (*SyncSummary, error)
}

type ServiceImpl struct {
	repo            Repo
	categoryService category.Service
	eventBus        *event_bus.EventBus
	clock           utils.Clock
	horizonMonths   int
	maxDriftDays    int

	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

func NewObligationService(
	repo Repo,
	categoryService category.Service,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
	horizonMonths int,
	maxDriftDays int,
) *ServiceImpl {
	return &ServiceImpl{
		repo:            repo,
		categoryService: categoryService,
		eventBus:        eventBus,
		clock:           clock,
		horizonMonths:   horizonMonths,
		maxDriftDays:    maxDriftDays,
		locks:           map[int]*sync.Mutex{},
	}
}

// lockDefinition serializes all mutating operations on one definition.
// Operations on different definitions proceed in parallel.
func (s *ServiceImpl) lockDefinition(id int) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (s *ServiceImpl) CreateDefinition(ctx context.Context, def Definition) (Definition, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.validate(ctx, def); err != nil {
		return Definition{}, err
	}
	id, err := s.repo.StoreDefinition(ctx, userId, def)
	if err != nil {
		return Definition{}, err
	}
	def.Id = id

	unlock := s.lockDefinition(def.Id)
	defer unlock()
	if _, err := s.synchronize(ctx, userId, def, s.horizonMonths); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func (s *ServiceImpl) GetDefinition(ctx context.Context, id int) (Definition, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetDefinition(ctx, userId, id)
}

func (s *ServiceImpl) ListDefinitions(ctx context.Context) ([]Definition, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListDefinitions(ctx, userId)
}

func (s *ServiceImpl) UpdateDefinition(ctx context.Context, def Definition) (SyncSummary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := s.validate(ctx, def); err != nil {
		return SyncSummary{}, err
	}

	unlock := s.lockDefinition(def.Id)
	defer unlock()
	updated, err := s.repo.UpdateDefinition(ctx, userId, def)
	if err != nil {
		return SyncSummary{}, err
	}
	if !updated {
		return SyncSummary{}, ErrDefinitionNotFound
	}
	return s.synchronize(ctx, userId, def, s.horizonMonths)
}

func (s *ServiceImpl) DeleteDefinition(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	unlock := s.lockDefinition(id)
	defer unlock()
	deleted, err := s.repo.DeleteDefinition(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrDefinitionNotFound
	}
	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.DefinitionDeletedEvent, event_bus.DefinitionDeleted{
		DefinitionId: id,
	}))
	if err != nil {
		log.Errorf("definition %d deleted but a subscriber failed: %v", id, err)
	}
	return nil
}

func (s *ServiceImpl) ListOccurrences(ctx context.Context, definitionId int) ([]Occurrence, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListOccurrences(ctx, userId, definitionId)
}

func (s *ServiceImpl) GetOccurrence(ctx context.Context, occurrenceId int) (Occurrence, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Occurrence{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetOccurrence(ctx, userId, occurrenceId)
}

func (s *ServiceImpl) SynchronizeOccurrences(ctx context.Context, definitionId int, horizonMonths int) (SyncSummary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if horizonMonths <= 0 {
		horizonMonths = s.horizonMonths
	}
	def, err := s.repo.GetDefinition(ctx, userId, definitionId)
	if err != nil {
		return SyncSummary{}, err
	}
	unlock := s.lockDefinition(definitionId)
	defer unlock()
	return s.synchronize(ctx, userId, def, horizonMonths)
}

func (s *ServiceImpl) MarkOccurrenceCompleted(
	ctx context.Context,
	occurrenceId int,
	actualDate time.Time,
	actualAmount decimal.Decimal,
	transactionId *int,
) (SyncSummary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	occ, err := s.repo.GetOccurrence(ctx, userId, occurrenceId)
	if err != nil {
		return SyncSummary{}, err
	}

	unlock := s.lockDefinition(occ.DefinitionId)
	defer unlock()
	return s.complete(ctx, userId, occ, actualDate, actualAmount, transactionId)
}

func (s *ServiceImpl) UpdateOccurrence(
	ctx context.Context,
	occurrenceId int,
	status Status,
	actualDate *time.Time,
	actualAmount *decimal.Decimal,
	transactionId *int,
) (*SyncSummary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	switch status {
	case StatusPlanned, StatusSaving, StatusCompleted:
	default:
		return nil, &ValidationError{Violations: []FieldViolation{
			{"status", "must be one of planned, saving, completed"},
		}}
	}
	occ, err := s.repo.GetOccurrence(ctx, userId, occurrenceId)
	if err != nil {
		return nil, err
	}

	unlock := s.lockDefinition(occ.DefinitionId)
	defer unlock()

	switch {
	case status == StatusCompleted && !occ.Completed():
		if actualDate == nil || actualAmount == nil {
			return nil, &ValidationError{Violations: []FieldViolation{
				{"actualDate", "is required to complete an occurrence"},
				{"actualAmount", "is required to complete an occurrence"},
			}}
		}
		summary, err := s.complete(ctx, userId, occ, *actualDate, *actualAmount, transactionId)
		if err != nil {
			return nil, err
		}
		return &summary, nil
	case status != StatusCompleted && occ.Completed():
		summary, err := s.revert(ctx, userId, occ)
		if err != nil {
			return nil, err
		}
		return &summary, nil
	default:
		occ.Status = status
		if _, err := s.repo.UpdateOccurrence(ctx, userId, occ); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// complete marks the occurrence completed, records the payment through the
// event bus, and re-synchronizes the projection anchored at the actual date.
// The caller holds the definition lock.
func (s *ServiceImpl) complete(
	ctx context.Context,
	userId int,
	occ Occurrence,
	actualDate time.Time,
	actualAmount decimal.Decimal,
	transactionId *int,
) (SyncSummary, error) {
	if occ.Completed() {
		return SyncSummary{}, &ValidationError{Violations: []FieldViolation{
			{"status", "occurrence is already completed"},
		}}
	}
	if err := validateCompletion(occ.ScheduledDate, actualDate, actualAmount, s.maxDriftDays); err != nil {
		return SyncSummary{}, err
	}

	actualDate = utils.DateOnly(actualDate)
	occ.Status = StatusCompleted
	occ.ActualDate = &actualDate
	occ.ActualAmount = &actualAmount
	occ.TransactionId = transactionId
	updated, err := s.repo.UpdateOccurrence(ctx, userId, occ)
	if err != nil {
		return SyncSummary{}, err
	}
	if !updated {
		return SyncSummary{}, ErrOccurrenceNotFound
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrenceCompletedEvent, event_bus.OccurrenceCompleted{
		DefinitionId: occ.DefinitionId,
		OccurrenceId: occ.Id,
		ActualDate:   actualDate,
		ActualAmount: actualAmount,
	}))
	if err != nil {
		log.Errorf("occurrence %d completed but a subscriber failed: %v", occ.Id, err)
	}

	def, err := s.repo.GetDefinition(ctx, userId, occ.DefinitionId)
	if err != nil {
		return SyncSummary{}, err
	}
	return s.synchronize(ctx, userId, def, s.horizonMonths)
}

// revert clears the actuals of a completed occurrence, restores its pending
// status per the lead-time rule, reverses the recorded payment, and
// re-synchronizes. The caller holds the definition lock.
func (s *ServiceImpl) revert(ctx context.Context, userId int, occ Occurrence) (SyncSummary, error) {
	paidAmount := decimal.Zero
	if occ.ActualAmount != nil {
		paidAmount = *occ.ActualAmount
	}

	def, err := s.repo.GetDefinition(ctx, userId, occ.DefinitionId)
	if err != nil {
		return SyncSummary{}, err
	}
	referenceDate := utils.DateOnly(s.clock.Now())
	occ.Status = statusFor(schedule.WithinLeadTime(referenceDate, occ.ScheduledDate, def.LeadTimeMonths))
	occ.ActualDate = nil
	occ.ActualAmount = nil
	occ.TransactionId = nil
	updated, err := s.repo.UpdateOccurrence(ctx, userId, occ)
	if err != nil {
		return SyncSummary{}, err
	}
	if !updated {
		return SyncSummary{}, ErrOccurrenceNotFound
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrenceRevertedEvent, event_bus.OccurrenceReverted{
		DefinitionId: occ.DefinitionId,
		OccurrenceId: occ.Id,
		ActualAmount: paidAmount,
	}))
	if err != nil {
		log.Errorf("occurrence %d reverted but a subscriber failed: %v", occ.Id, err)
	}
	return s.synchronize(ctx, userId, def, s.horizonMonths)
}

// synchronize regenerates the projection and applies the diff atomically.
// The caller holds the definition lock.
func (s *ServiceImpl) synchronize(ctx context.Context, userId int, def Definition, horizonMonths int) (SyncSummary, error) {
	existing, err := s.repo.ListOccurrences(ctx, userId, def.Id)
	if err != nil {
		return SyncSummary{}, err
	}
	referenceDate := utils.DateOnly(s.clock.Now())
	rec := recurrenceFor(def, existing)
	fresh := schedule.Generate(rec, referenceDate, horizonMonths)
	diff := Synchronize(def.Id, rec, existing, fresh)
	if diff.Empty() {
		return SyncSummary{}, nil
	}
	if err := s.repo.ApplyDiff(ctx, userId, def.Id, diff); err != nil {
		return SyncSummary{}, err
	}
	summary := diff.Summary()
	log.Debugf("synchronized definition %d: %d created, %d updated, %d removed",
		def.Id, summary.Created, summary.Updated, summary.Removed)
	return summary, nil
}

func (s *ServiceImpl) validate(ctx context.Context, def Definition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}
	if def.CategoryId != nil {
		exists, err := s.categoryService.Exists(ctx, *def.CategoryId)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCategoryNotFound
		}
	}
	return nil
}
