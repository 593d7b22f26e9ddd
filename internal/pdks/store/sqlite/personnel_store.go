package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"golang.org/x/xerrors"

	dbpkg "github.com/BrandonDHaskell/pdks-sync/internal/db"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type PersonnelStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPersonnelStore(db *sql.DB, writer *dbpkg.Worker) *PersonnelStore {
	return &PersonnelStore{db: db, writer: writer}
}

func (s *PersonnelStore) PersonnelExists(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM personnel WHERE user_id = ?;`, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, xerrors.Errorf("PersonnelExists query: %w", err)
	}
	return true, nil
}

// InsertPersonnel creates the row if user_id is free. An existing row,
// active or not, is never touched.
func (s *PersonnelStore) InsertPersonnel(ctx context.Context, p types.Personnel) error {
	hire := p.HireDate
	if hire.IsZero() {
		hire = time.Now().UTC()
	}
	var active int
	if p.Active {
		active = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO personnel(
  user_id, first_name, last_name, hire_date, active, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?);
`, p.UserID, strings.TrimSpace(p.FirstName), strings.TrimSpace(p.LastName),
			formatDate(hire), active, nowMs()); err != nil {
			return xerrors.Errorf("InsertPersonnel %d: %w", p.UserID, err)
		}
		return nil
	})
}

var _ store.PersonnelStore = (*PersonnelStore)(nil)
