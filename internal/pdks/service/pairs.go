package service

import (
	"sort"
	"time"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// BucketKey identifies one employee on one workday.
type BucketKey struct {
	UserID  int64
	Workday time.Time
}

// Bucket holds the punches of one BucketKey in ascending order.
type Bucket struct {
	Key     BucketKey
	Punches []time.Time
}

// RowError is a raw row that could not be parsed.
type RowError struct {
	Row types.RawPunchRow
	Err error
}

// GroupBuckets parses rows and groups them by (user, workday). Buckets
// come back ordered by workday, then user id. Unparseable rows are
// returned separately and otherwise ignored.
func GroupBuckets(rows []types.RawPunchRow, dayStartHour int) ([]Bucket, []RowError) {
	var (
		index   = make(map[BucketKey]int)
		buckets []Bucket
		bad     []RowError
	)
	for _, row := range rows {
		ts, err := types.ParseTimestamp(row.Timestamp)
		if err != nil {
			bad = append(bad, RowError{Row: row, Err: err})
			continue
		}
		key := BucketKey{UserID: row.UserID, Workday: AssignWorkday(ts, dayStartHour)}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Punches = append(buckets[i].Punches, ts)
	}

	for i := range buckets {
		p := buckets[i].Punches
		sort.Slice(p, func(a, b int) bool { return p[a].Before(p[b]) })
	}
	sort.Slice(buckets, func(a, b int) bool {
		ka, kb := buckets[a].Key, buckets[b].Key
		if !ka.Workday.Equal(kb.Workday) {
			return ka.Workday.Before(kb.Workday)
		}
		return ka.UserID < kb.UserID
	})
	return buckets, bad
}

// Pair turns a debounced bucket into its canonical candidate: the first
// punch is the entry, the last one the exit. A lone punch has no exit.
// Punches in between are discarded. filtered must be non-empty.
func Pair(key BucketKey, filtered []time.Time) types.WorkdayRecord {
	rec := types.WorkdayRecord{
		UserID:      key.UserID,
		WorkdayDate: key.Workday,
		EntryTime:   filtered[0],
	}
	if len(filtered) > 1 {
		exit := filtered[len(filtered)-1]
		rec.ExitTime = &exit
	}
	return rec
}

// Direction is a best-effort guess at what a punch meant.
type Direction string

const (
	DirectionIn      Direction = "in"
	DirectionOut     Direction = "out"
	DirectionUnknown Direction = "unknown"
)

// DirectionHint classifies a punch for logs. It never affects pairing.
// The terminal flag wins when it is 0 (in) or 1 (out); otherwise the
// hour decides.
func DirectionHint(p types.Punch) Direction {
	if p.VerifyMethod != nil {
		switch *p.VerifyMethod {
		case 0:
			return DirectionIn
		case 1:
			return DirectionOut
		}
	}
	if p.Timestamp.IsZero() {
		return DirectionUnknown
	}
	switch h := p.Timestamp.Hour(); {
	case h >= 6 && h <= 12:
		return DirectionIn
	case h >= 16:
		return DirectionOut
	default:
		return DirectionIn
	}
}
