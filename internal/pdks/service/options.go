package service

import "time"

const (
	DefaultDayStartHour = 5
	DefaultMinInterval  = 300 * time.Second
)

// Options carries the tunables of a sync pass. Construct it from
// config.Config and pass it in; nothing in this package reads the
// environment.
type Options struct {
	// DayStartHour is the hour a new workday begins. Punches earlier
	// than this belong to the previous calendar date.
	DayStartHour int

	// MinInterval is the debounce window between retained punches.
	MinInterval time.Duration

	// AutoCreatePersonnel inserts a personnel row for every terminal
	// user that has none.
	AutoCreatePersonnel bool

	// ClearDeviceData erases the terminal log after ingestion.
	ClearDeviceData bool
}

// withDefaults fills zero or out-of-range values.
func (o Options) withDefaults() Options {
	if o.DayStartHour < 0 || o.DayStartHour > 23 {
		o.DayStartHour = DefaultDayStartHour
	}
	if o.MinInterval < 0 {
		o.MinInterval = DefaultMinInterval
	}
	return o
}
