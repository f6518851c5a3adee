package category

import (
	"context"
)

type RepositoryStub struct {
	nextId int
	data   map[int]Category
}

func NewStubCategoryRepo() *RepositoryStub {
	return &RepositoryStub{data: map[int]Category{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.data = map[int]Category{}
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, category Category) (int, error) {
	s.nextId++
	category.Id = s.nextId
	s.data[category.Id] = category
	return category.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (Category, error) {
	category, ok := s.data[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return category, nil
}

func (s *RepositoryStub) GetAll(ctx context.Context, userId int) ([]Category, error) {
	categories := make([]Category, 0, len(s.data))
	for _, category := range s.data {
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *RepositoryStub) Exists(ctx context.Context, userId int, id int) (bool, error) {
	_, ok := s.data[id]
	return ok, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, category Category) (bool, error) {
	if _, ok := s.data[category.Id]; !ok {
		return false, nil
	}
	s.data[category.Id] = category
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}
