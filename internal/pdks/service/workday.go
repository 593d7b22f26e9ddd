package service

import "time"

// AssignWorkday returns the workday ts belongs to, as midnight UTC.
// A punch before dayStartHour counts toward the previous date, so a
// night shift ending at 02:00 stays on the day it started.
func AssignWorkday(ts time.Time, dayStartHour int) time.Time {
	d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	if ts.Hour() < dayStartHour {
		return d.AddDate(0, 0, -1)
	}
	return d
}
