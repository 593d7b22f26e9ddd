package service

import "time"

// Debounce drops punches that land within minInterval of the last
// retained punch. sorted must be ascending. The comparison is always
// against the last kept punch, not the last seen one, so a burst of
// taps every few seconds collapses to the first tap.
func Debounce(sorted []time.Time, minInterval time.Duration) []time.Time {
	if len(sorted) == 0 {
		return nil
	}
	out := make([]time.Time, 1, len(sorted))
	out[0] = sorted[0]
	last := sorted[0]
	for _, ts := range sorted[1:] {
		if ts.Sub(last) >= minInterval {
			out = append(out, ts)
			last = ts
		}
	}
	return out
}
