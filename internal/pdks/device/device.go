// Package device defines the terminal capability the sync pass consumes.
// The vendor protocol lives behind a bridge; see httpdevice.
package device

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// ErrUnreachable wraps every failure to reach or talk to the terminal.
// It aborts the current pass.
var ErrUnreachable = xerrors.New("device unreachable")

type Dialer interface {
	Dial(ctx context.Context) (Device, error)
}

// Device is one open session with a terminal.
type Device interface {
	// Users maps terminal user ids to display names.
	Users(ctx context.Context) (map[int64]string, error)
	// Attendance returns every punch still held by the terminal.
	Attendance(ctx context.Context) ([]types.Punch, error)
	// ClearAttendance erases the terminal's punch log. Destructive.
	ClearAttendance(ctx context.Context) error
	Close() error
}
