package ops

import "time"

// secondsToDuration converts a config value in seconds. Negative values map to
// zero, which the diff treats as unbounded.
func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
