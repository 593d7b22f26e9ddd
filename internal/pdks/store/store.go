package store

import "golang.org/x/xerrors"

var (
	// ErrDuplicatePunch is returned by InsertPunch when the (user_id,
	// timestamp) uniqueness constraint rejects the row.
	ErrDuplicatePunch = xerrors.New("punch already stored")

	// ErrDuplicateWorkday is returned by InsertWorkday when a record for
	// the same (user_id, workday_date) already exists.
	ErrDuplicateWorkday = xerrors.New("workday record already exists")
)
