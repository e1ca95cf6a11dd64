package expire

import (
	"fmt"
	"math"
	"time"
)

// Cutoff returns the instant before which objects are considered expired,
// days calendar days before now. Objects modified exactly at the cutoff are kept.
func Cutoff(now time.Time, days uint64) (time.Time, error) {
	if days > math.MaxInt32 {
		return time.Time{}, fmt.Errorf("%d days: %w", days, ErrInvalidRetention)
	}
	cutoff := now.UTC().AddDate(0, 0, -int(days))
	if cutoff.Year() < 1 {
		return time.Time{}, fmt.Errorf("%d days: %w", days, ErrInvalidRetention)
	}
	return cutoff, nil
}

// Expired reports whether an object last modified at ts predates cutoff.
func Expired(ts, cutoff time.Time) bool {
	return ts.Before(cutoff)
}
