package obligation

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextDefinitionId int
	nextOccurrenceId int
	definitions      map[int]Definition
	occurrences      map[int]Occurrence
	owners           map[int]int
}

func NewStubObligationRepo() *RepositoryStub {
	stub := &RepositoryStub{}
	stub.Cleanup()
	return stub
}

func (s *RepositoryStub) Cleanup() {
	s.nextDefinitionId = 0
	s.nextOccurrenceId = 0
	s.definitions = map[int]Definition{}
	s.occurrences = map[int]Occurrence{}
	s.owners = map[int]int{}
}

func (s *RepositoryStub) StoreDefinition(ctx context.Context, userId int, def Definition) (int, error) {
	s.nextDefinitionId++
	def.Id = s.nextDefinitionId
	s.definitions[def.Id] = def
	s.owners[def.Id] = userId
	return def.Id, nil
}

func (s *RepositoryStub) GetDefinition(ctx context.Context, userId int, id int) (Definition, error) {
	def, ok := s.definitions[id]
	if !ok || s.owners[id] != userId {
		return Definition{}, ErrDefinitionNotFound
	}
	return def, nil
}

func (s *RepositoryStub) ListDefinitions(ctx context.Context, userId int) ([]Definition, error) {
	var definitions []Definition
	for id, def := range s.definitions {
		if s.owners[id] == userId {
			definitions = append(definitions, def)
		}
	}
	sort.Slice(definitions, func(i, j int) bool { return definitions[i].Id < definitions[j].Id })
	return definitions, nil
}

func (s *RepositoryStub) ListAllDefinitions(ctx context.Context) ([]Definition, error) {
	var definitions []Definition
	for _, def := range s.definitions {
		definitions = append(definitions, def)
	}
	sort.Slice(definitions, func(i, j int) bool { return definitions[i].Id < definitions[j].Id })
	return definitions, nil
}

func (s *RepositoryStub) UpdateDefinition(ctx context.Context, userId int, def Definition) (bool, error) {
	if _, ok := s.definitions[def.Id]; !ok || s.owners[def.Id] != userId {
		return false, nil
	}
	s.definitions[def.Id] = def
	return true, nil
}

func (s *RepositoryStub) DeleteDefinition(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.definitions[id]; !ok || s.owners[id] != userId {
		return false, nil
	}
	delete(s.definitions, id)
	delete(s.owners, id)
	for occId, occ := range s.occurrences {
		if occ.DefinitionId == id {
			delete(s.occurrences, occId)
		}
	}
	return true, nil
}

func (s *RepositoryStub) ListOccurrences(ctx context.Context, userId int, definitionId int) ([]Occurrence, error) {
	var occurrences []Occurrence
	for _, occ := range s.occurrences {
		if occ.DefinitionId == definitionId && s.owners[definitionId] == userId {
			occurrences = append(occurrences, occ)
		}
	}
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].ScheduledDate.Equal(occurrences[j].ScheduledDate) {
			return occurrences[i].Id < occurrences[j].Id
		}
		return occurrences[i].ScheduledDate.Before(occurrences[j].ScheduledDate)
	})
	return occurrences, nil
}

func (s *RepositoryStub) GetOccurrence(ctx context.Context, userId int, occurrenceId int) (Occurrence, error) {
	occ, ok := s.occurrences[occurrenceId]
	if !ok || s.owners[occ.DefinitionId] != userId {
		return Occurrence{}, ErrOccurrenceNotFound
	}
	return occ, nil
}

func (s *RepositoryStub) UpdateOccurrence(ctx context.Context, userId int, occ Occurrence) (bool, error) {
	existing, ok := s.occurrences[occ.Id]
	if !ok || s.owners[existing.DefinitionId] != userId {
		return false, nil
	}
	s.occurrences[occ.Id] = occ
	return true, nil
}

func (s *RepositoryStub) ApplyDiff(ctx context.Context, userId int, definitionId int, diff Diff) error {
	if s.owners[definitionId] != userId {
		return ErrDefinitionNotFound
	}
	for _, occ := range diff.Creates {
		s.nextOccurrenceId++
		occ.Id = s.nextOccurrenceId
		occ.DefinitionId = definitionId
		s.occurrences[occ.Id] = occ
	}
	for _, occ := range diff.Updates {
		s.occurrences[occ.Id] = occ
	}
	for _, id := range diff.Deletes {
		delete(s.occurrences, id)
	}
	return nil
}
