package device

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// Static is an in-memory terminal for tests and dry runs. It is its own
// Dialer; every Dial returns the same session.
type Static struct {
	mu         sync.Mutex
	users      map[int64]string
	punches    []types.Punch
	dialErr    error
	listErr    error
	clearErr   error
	clearCalls int
	closed     int
}

func NewStatic(users map[int64]string, punches []types.Punch) *Static {
	u := make(map[int64]string, len(users))
	for k, v := range users {
		u[k] = v
	}
	return &Static{users: u, punches: append([]types.Punch(nil), punches...)}
}

// FailDial makes subsequent Dial calls return err wrapped as unreachable.
func (s *Static) FailDial(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialErr = err
}

// FailList makes Users and Attendance return err.
func (s *Static) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailClear makes ClearAttendance return err.
func (s *Static) FailClear(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearErr = err
}

// AddPunches appends punches as if the terminal had recorded them.
func (s *Static) AddPunches(p ...types.Punch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.punches = append(s.punches, p...)
}

func (s *Static) Dial(_ context.Context) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialErr != nil {
		return nil, Unreachable(s.dialErr)
	}
	return s, nil
}

func (s *Static) Users(_ context.Context) (map[int64]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, Unreachable(s.listErr)
	}
	out := make(map[int64]string, len(s.users))
	for k, v := range s.users {
		out[k] = v
	}
	return out, nil
}

func (s *Static) Attendance(_ context.Context) ([]types.Punch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, Unreachable(s.listErr)
	}
	return append([]types.Punch(nil), s.punches...), nil
}

func (s *Static) ClearAttendance(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.punches = nil
	return nil
}

func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// ClearCalls reports how many times ClearAttendance ran.
func (s *Static) ClearCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearCalls
}

// Closed reports how many sessions were closed.
func (s *Static) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
