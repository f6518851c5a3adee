package reconcile

import (
	"context"
	"fmt"

	"github.com/sonaeru/sonaeru/pkg/obligation"
	"github.com/sonaeru/sonaeru/pkg/transaction"
)

type Service interface {
	// Candidates returns the ledger transactions around an occurrence's
	// scheduled date, scored and ordered best first.
	Candidates(ctx context.Context, occurrenceId int) ([]Candidate, error)
}

type ServiceImpl struct {
	obligations  obligation.Service
	transactions transaction.Service
	windowDays   int
}

func NewReconcileService(obligations obligation.Service, transactions transaction.Service, windowDays int) *ServiceImpl {
	return &ServiceImpl{
		obligations:  obligations,
		transactions: transactions,
		windowDays:   windowDays,
	}
}

func (s *ServiceImpl) Candidates(ctx context.Context, occurrenceId int) ([]Candidate, error) {
	occ, err := s.obligations.GetOccurrence(ctx, occurrenceId)
	if err != nil {
		return nil, err
	}
	from := occ.ScheduledDate.AddDate(0, 0, -s.windowDays)
	to := occ.ScheduledDate.AddDate(0, 0, s.windowDays)
	transactions, err := s.transactions.ListInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("could not load candidate transactions: %w", err)
	}
	return Rank(occ, transactions, s.windowDays), nil
}
