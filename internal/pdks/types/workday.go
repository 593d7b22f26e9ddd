package types

import "time"

// WorkdayRecord is the reconciled attendance of one employee on one
// workday. ExitTime is nil until a second retained punch exists.
type WorkdayRecord struct {
	ID          int64
	UserID      int64
	WorkdayDate time.Time // midnight UTC
	EntryTime   time.Time
	ExitTime    *time.Time
	AdminLocked bool
}

// Date returns the workday in DateLayout form.
func (r WorkdayRecord) Date() string {
	return r.WorkdayDate.Format(DateLayout)
}

// Personnel is an employee identity keyed by the terminal user id.
type Personnel struct {
	UserID    int64
	FirstName string
	LastName  string
	HireDate  time.Time
	Active    bool
}
