package transaction

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	nextId int
	data   map[int]Transaction
}

func NewStubTransactionRepo() *RepositoryStub {
	return &RepositoryStub{data: map[int]Transaction{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.data = map[int]Transaction{}
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, tx Transaction) (int, error) {
	s.nextId++
	tx.Id = s.nextId
	s.data[tx.Id] = tx
	return tx.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	tx, ok := s.data[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *RepositoryStub) ListInWindow(ctx context.Context, userId int, from, to time.Time) ([]Transaction, error) {
	var transactions []Transaction
	for _, tx := range s.data {
		if !tx.Date.Before(from) && !tx.Date.After(to) {
			transactions = append(transactions, tx)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Id < transactions[j].Id
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})
	return transactions, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}
