package store

import (
	"context"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type PersonnelStore interface {
	PersonnelExists(ctx context.Context, userID int64) (bool, error)
	InsertPersonnel(ctx context.Context, p types.Personnel) error
}
