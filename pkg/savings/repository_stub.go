package savings

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	data map[int]Balance
}

func NewStubSavingsRepo() *RepositoryStub {
	return &RepositoryStub{data: map[int]Balance{}}
}

func (s *RepositoryStub) Cleanup() {
	s.data = map[int]Balance{}
}

func (s *RepositoryStub) Get(ctx context.Context, definitionId int) (Balance, error) {
	balance, ok := s.data[definitionId]
	if !ok {
		return Balance{}, ErrBalanceNotFound
	}
	return balance, nil
}

func (s *RepositoryStub) Upsert(ctx context.Context, balance Balance) error {
	s.data[balance.DefinitionId] = balance
	return nil
}

// ListForUser ignores ownership; the stub serves single-user tests.
func (s *RepositoryStub) ListForUser(ctx context.Context, userId int) ([]Balance, error) {
	var balances []Balance
	for _, balance := range s.data {
		balances = append(balances, balance)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].DefinitionId < balances[j].DefinitionId })
	return balances, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, definitionId int) error {
	delete(s.data, definitionId)
	return nil
}
