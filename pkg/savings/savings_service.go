package savings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sonaeru/sonaeru/internal/event_bus"
	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/sonaeru/sonaeru/pkg/user"
)

// DefinitionSource is the slice of the obligation repository the accumulator
// needs for its monthly tick.
type DefinitionSource interface {
	ListAllDefinitions(ctx context.Context) ([]obligation.Definition, error)
}

type Service interface {
	// ApplyMonthlyTick adds one monthly contribution to every definition's
	// balance. A definition already ticked for the given month is skipped, so
	// the tick can be re-run safely.
	ApplyMonthlyTick(ctx context.Context, year int, month time.Month) error
	RecordPayment(ctx context.Context, definitionId int, amount decimal.Decimal) (Balance, error)
	RevertPayment(ctx context.Context, definitionId int, amount decimal.Decimal) (Balance, error)
	GetBalance(ctx context.Context, definitionId int) (Balance, error)
	ListBalances(ctx context.Context) ([]Balance, error)
}

type ServiceImpl struct {
	repo        Repo
	definitions DefinitionSource
}

func NewSavingsService(repo Repo, definitions DefinitionSource) *ServiceImpl {
	return &ServiceImpl{repo: repo, definitions: definitions}
}

// RegisterSubscriptions wires the savings ledger to the obligation lifecycle:
// completions record the payment side, reverts undo it, deleted definitions
// drop their balance.
func (s *ServiceImpl) RegisterSubscriptions(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.OccurrenceCompletedEvent,
		func(e event_bus.EventT[event_bus.OccurrenceCompleted]) error {
			_, err := s.RecordPayment(e.Context(), e.Data.DefinitionId, e.Data.ActualAmount)
			return err
		})
	event_bus.SubscribeTyped(bus, event_bus.OccurrenceRevertedEvent,
		func(e event_bus.EventT[event_bus.OccurrenceReverted]) error {
			_, err := s.RevertPayment(e.Context(), e.Data.DefinitionId, e.Data.ActualAmount)
			return err
		})
	event_bus.SubscribeTyped(bus, event_bus.DefinitionDeletedEvent,
		func(e event_bus.EventT[event_bus.DefinitionDeleted]) error {
			return s.repo.Delete(e.Context(), e.Data.DefinitionId)
		})
}

func (s *ServiceImpl) ApplyMonthlyTick(ctx context.Context, year int, month time.Month) error {
	definitions, err := s.definitions.ListAllDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("could not list definitions for monthly tick: %w", err)
	}
	ticked := 0
	for _, def := range definitions {
		balance, err := s.balanceFor(ctx, def.Id)
		if err != nil {
			return err
		}
		if balance.LastYear == year && balance.LastMonth == month {
			continue
		}
		balance.Saved = balance.Saved.Add(MonthlyContribution(def))
		balance.LastYear = year
		balance.LastMonth = month
		if err := s.repo.Upsert(ctx, balance); err != nil {
			return err
		}
		ticked++
	}
	log.Infof("monthly savings tick %d-%02d: %d of %d definitions updated", year, month, ticked, len(definitions))
	return nil
}

func (s *ServiceImpl) RecordPayment(ctx context.Context, definitionId int, amount decimal.Decimal) (Balance, error) {
	balance, err := s.balanceFor(ctx, definitionId)
	if err != nil {
		return Balance{}, err
	}
	balance.Paid = balance.Paid.Add(amount)
	if err := s.repo.Upsert(ctx, balance); err != nil {
		return Balance{}, err
	}
	if balance.Shortfall() {
		log.Warnf("definition %d paid %s beyond its savings, balance is %s",
			definitionId, amount.String(), balance.Amount().String())
	}
	return balance, nil
}

func (s *ServiceImpl) RevertPayment(ctx context.Context, definitionId int, amount decimal.Decimal) (Balance, error) {
	balance, err := s.balanceFor(ctx, definitionId)
	if err != nil {
		return Balance{}, err
	}
	balance.Paid = balance.Paid.Sub(amount)
	if balance.Paid.IsNegative() {
		log.Warnf("reverting %s on definition %d would make the paid total negative, clamping to zero",
			amount.String(), definitionId)
		balance.Paid = decimal.Zero
	}
	if err := s.repo.Upsert(ctx, balance); err != nil {
		return Balance{}, err
	}
	return balance, nil
}

func (s *ServiceImpl) GetBalance(ctx context.Context, definitionId int) (Balance, error) {
	return s.balanceFor(ctx, definitionId)
}

func (s *ServiceImpl) ListBalances(ctx context.Context) ([]Balance, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListForUser(ctx, userId)
}

// balanceFor returns the definition's balance, lazily starting a zeroed one
// when none exists yet.
func (s *ServiceImpl) balanceFor(ctx context.Context, definitionId int) (Balance, error) {
	balance, err := s.repo.Get(ctx, definitionId)
	if errors.Is(err, ErrBalanceNotFound) {
		return Balance{
			DefinitionId: definitionId,
			Saved:        decimal.Zero,
			Paid:         decimal.Zero,
		}, nil
	}
	return balance, err
}
