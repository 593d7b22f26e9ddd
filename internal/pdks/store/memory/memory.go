// Package memory holds in-memory stores for tests, dry runs and dev.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type punchKey struct {
	userID int64
	ts     string
}

// RawPunchStore is an in-memory append-only punch log. Rows keep their
// textual timestamp so range filtering behaves like the SQL backends.
type RawPunchStore struct {
	mu      sync.RWMutex
	keys    map[punchKey]struct{}
	rows    []types.RawPunchRow
	punches []types.Punch
}

func NewRawPunchStore() *RawPunchStore {
	return &RawPunchStore{keys: make(map[punchKey]struct{})}
}

func (s *RawPunchStore) PunchExists(_ context.Context, userID int64, ts time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[punchKey{userID, ts.Format(types.TimestampLayout)}]
	return ok, nil
}

func (s *RawPunchStore) InsertPunch(_ context.Context, p types.Punch) error {
	p.Timestamp = types.WallClock(p.Timestamp)
	uid, ts := p.Key()
	k := punchKey{uid, ts}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[k]; ok {
		return store.ErrDuplicatePunch
	}
	s.keys[k] = struct{}{}
	s.rows = append(s.rows, types.RawPunchRow{UserID: uid, Timestamp: ts})
	s.punches = append(s.punches, p)
	return nil
}

func (s *RawPunchStore) ListPunchesAfter(_ context.Context, after *time.Time) ([]types.RawPunchRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cutoff string
	if after != nil {
		cutoff = after.Format(types.TimestampLayout)
	}

	out := make([]types.RawPunchRow, 0, len(s.rows))
	for _, r := range s.rows {
		if after != nil && r.Timestamp <= cutoff {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// Punches returns a copy of all punches stored through InsertPunch.
// Test-only helper.
func (s *RawPunchStore) Punches() []types.Punch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Punch, len(s.punches))
	copy(out, s.punches)
	return out
}

// PlantRow appends a row verbatim so tests can seed malformed
// timestamps that InsertPunch would never produce.
func (s *RawPunchStore) PlantRow(userID int64, ts string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[punchKey{userID, ts}] = struct{}{}
	s.rows = append(s.rows, types.RawPunchRow{UserID: userID, Timestamp: ts})
}

var _ store.RawPunchStore = (*RawPunchStore)(nil)
