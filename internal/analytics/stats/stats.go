// Package stats implements the five-number summary and recency maths
// shared by the analytics aggregators.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/spitfire8790/landiqr/internal/analytics/domain"
)

// FiveNumber is [min, Q1, median, Q3, max].
type FiveNumber [5]float64

// Quartiles computes the five-number summary of an unordered set of
// values. Quantile index is floor(p * (n-1)) over the sorted slice —
// nearest-rank with floor interpolation, not linear interpolation.
// Empty input yields the all-zero tuple.
func Quartiles(values []float64) FiveNumber {
	if len(values) == 0 {
		return FiveNumber{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	at := func(p float64) float64 {
		idx := int(math.Floor(p * float64(n-1)))
		return sorted[idx]
	}
	return FiveNumber{sorted[0], at(0.25), at(0.5), at(0.75), sorted[n-1]}
}

// QuartilesInt is Quartiles over integer day counts.
func QuartilesInt(values []int) FiveNumber {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return Quartiles(floats)
}

// Median returns the floor-index median of integer day counts, with the
// no-activity sentinel substituted for an empty slice.
func Median(values []int) int {
	if len(values) == 0 {
		return domain.NoActivityDays
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	return sorted[int(math.Floor(0.5*float64(len(sorted)-1)))]
}

// DaysSince computes whole calendar days between now and the given
// date, clamping future dates to zero. Nil date yields nil: "days since
// last seen" is undefined, not zero, when there was no sighting.
func DaysSince(date *time.Time, now time.Time) *int {
	if date == nil {
		return nil
	}
	days := int(midnight(now).Sub(midnight(*date)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

// RecencyDays maps a last-seen date onto the bounded recency scale used
// by the OrgStats path: the sentinel when no activity exists, otherwise
// the day count capped at the sentinel.
func RecencyDays(lastSeen *time.Time, now time.Time) int {
	days := DaysSince(lastSeen, now)
	if days == nil {
		return domain.NoActivityDays
	}
	if *days > domain.NoActivityDays {
		return domain.NoActivityDays
	}
	return *days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
