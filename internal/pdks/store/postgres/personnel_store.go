package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type PersonnelStore struct {
	q Querier
}

func NewPersonnelStore(q Querier) *PersonnelStore {
	return &PersonnelStore{q: q}
}

func (s *PersonnelStore) PersonnelExists(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.q.QueryRow(ctx, `SELECT 1 FROM personnel WHERE user_id = $1`, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, xerrors.Errorf("PersonnelExists query: %w", err)
	}
	return true, nil
}

func (s *PersonnelStore) InsertPersonnel(ctx context.Context, p types.Personnel) error {
	hire := p.HireDate
	if hire.IsZero() {
		hire = time.Now().UTC()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO personnel (user_id, first_name, last_name, hire_date, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.FirstName, p.LastName, hire, p.Active,
	)
	if err != nil {
		return xerrors.Errorf("InsertPersonnel %d: %w", p.UserID, err)
	}
	return nil
}

var _ store.PersonnelStore = (*PersonnelStore)(nil)
