package types

import "time"

// TimestampLayout is the wall-clock form terminals report and the raw
// store keys on. Punch times carry no zone; they are held in time.UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout formats workday dates.
const DateLayout = "2006-01-02"

// Punch is one physical clock event read from a terminal.
type Punch struct {
	UserID       int64
	Name         string // display name from the terminal user list, may be empty
	Timestamp    time.Time
	DeviceUID    *int
	StatusCode   *int
	VerifyMethod *int // punch/verify flag; diagnostic only
}

// Key returns the formatted dedup key (user_id, timestamp).
func (p Punch) Key() (int64, string) {
	return p.UserID, p.Timestamp.Format(TimestampLayout)
}

// RawPunchRow is a raw store row as read back for reconciliation. The
// timestamp is kept in its stored textual form and parsed by the caller.
type RawPunchRow struct {
	UserID    int64
	Timestamp string
}

// WallClock normalises t to second precision in time.UTC without
// shifting the wall-clock reading.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// ParseTimestamp parses a stored or bridge-reported punch timestamp.
// It accepts the canonical layout plus the ISO forms older rows used.
func ParseTimestamp(s string) (time.Time, error) {
	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", time.RFC3339} {
		t, err = time.Parse(layout, s)
		if err == nil {
			return WallClock(t), nil
		}
	}
	return time.Time{}, err
}
