package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type PersonnelStore struct {
	mu     sync.RWMutex
	people map[int64]types.Personnel
}

func NewPersonnelStore(seed ...types.Personnel) *PersonnelStore {
	s := &PersonnelStore{people: make(map[int64]types.Personnel, len(seed))}
	for _, p := range seed {
		s.people[p.UserID] = p
	}
	return s
}

func (s *PersonnelStore) PersonnelExists(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.people[userID]
	return ok, nil
}

func (s *PersonnelStore) InsertPersonnel(_ context.Context, p types.Personnel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[p.UserID]; ok {
		return nil
	}
	s.people[p.UserID] = p
	return nil
}

// Get returns the stored row for userID.  Test-only helper.
func (s *PersonnelStore) Get(userID int64) (types.Personnel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[userID]
	return p, ok
}

var _ store.PersonnelStore = (*PersonnelStore)(nil)
