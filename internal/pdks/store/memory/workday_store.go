package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type workdayKey struct {
	userID int64
	date   string
}

// WorkdayStore keeps canonical records in memory. It deliberately does
// not implement store.ConditionalWorkdayStore, so the reconciler takes
// its find-then-write path against it.
type WorkdayStore struct {
	mu     sync.RWMutex
	nextID int64
	byKey  map[workdayKey]int64
	byID   map[int64]types.WorkdayRecord
}

func NewWorkdayStore() *WorkdayStore {
	return &WorkdayStore{
		byKey: make(map[workdayKey]int64),
		byID:  make(map[int64]types.WorkdayRecord),
	}
}

func keyOf(userID int64, workday time.Time) workdayKey {
	return workdayKey{userID, workday.Format(types.DateLayout)}
}

func (s *WorkdayStore) FindWorkday(_ context.Context, userID int64, workday time.Time) (store.WorkdayLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[keyOf(userID, workday)]
	if !ok {
		return store.WorkdayLookup{}, nil
	}
	return store.WorkdayLookup{Found: true, Record: copyRecord(s.byID[id])}, nil
}

func (s *WorkdayStore) InsertWorkday(_ context.Context, rec types.WorkdayRecord) error {
	k := keyOf(rec.UserID, rec.WorkdayDate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[k]; ok {
		return store.ErrDuplicateWorkday
	}
	s.nextID++
	rec.ID = s.nextID
	s.byKey[k] = rec.ID
	s.byID[rec.ID] = copyRecord(rec)
	return nil
}

func (s *WorkdayStore) UpdateWorkdayTimes(_ context.Context, id int64, entry time.Time, exit *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok || rec.AdminLocked {
		return false, nil
	}
	rec.EntryTime = entry
	rec.ExitTime = copyTime(exit)
	rec.AdminLocked = false
	s.byID[id] = rec
	return true, nil
}

func (s *WorkdayStore) LatestEntryTime(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest time.Time
		found  bool
	)
	for _, rec := range s.byID {
		if !found || rec.EntryTime.After(latest) {
			latest = rec.EntryTime
			found = true
		}
	}
	return latest, found, nil
}

// SetLocked flips admin_locked the way an administrator would.
// Test-only helper.
func (s *WorkdayStore) SetLocked(userID int64, workday time.Time, locked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[keyOf(userID, workday)]
	if !ok {
		return false
	}
	rec := s.byID[id]
	rec.AdminLocked = locked
	s.byID[id] = rec
	return true
}

// Records returns a copy of every record.  Test-only helper.
func (s *WorkdayStore) Records() []types.WorkdayRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.WorkdayRecord, 0, len(s.byID))
	for id := int64(1); id <= s.nextID; id++ {
		if rec, ok := s.byID[id]; ok {
			out = append(out, copyRecord(rec))
		}
	}
	return out
}

func copyRecord(r types.WorkdayRecord) types.WorkdayRecord {
	r.ExitTime = copyTime(r.ExitTime)
	return r
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

var _ store.WorkdayStore = (*WorkdayStore)(nil)
