package dataset

import (
	"fmt"
	"time"
)

// MemoryCases is a CaseProvider backed by a fixed daily series. It serves a
// single region and ignores category filtering; counts are already daily
// (not cumulative). Used by tests and synthetic scenarios.
type MemoryCases struct {
	Region string
	Start  time.Time
	Daily  []int
}

// Cases returns the slice of the stored series covering [from-buffer, to].
func (m *MemoryCases) Cases(from, to time.Time, region string, categories []string, buffer int) ([]int, error) {
	if region != m.Region {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	start := Day(from).AddDate(0, 0, -buffer)
	lo := daysBetween(Day(m.Start), start)
	hi := daysBetween(Day(m.Start), Day(to))
	if lo < 0 || hi >= len(m.Daily) {
		return nil, fmt.Errorf("%w: [%s, %s] with buffer %d",
			ErrWindowOutOfRange, from.Format(time.DateOnly), to.Format(time.DateOnly), buffer)
	}
	return append([]int(nil), m.Daily[lo:hi+1]...), nil
}

// MinDate returns the first stored day.
func (m *MemoryCases) MinDate() time.Time { return Day(m.Start) }

// MaxDate returns the last stored day.
func (m *MemoryCases) MaxDate() time.Time {
	return Day(m.Start).AddDate(0, 0, len(m.Daily)-1)
}

// MemoryOccupancy is an OccupancyProvider backed by a fixed daily series for
// a single region; the bed-type selector is validated but both types serve
// the same series.
type MemoryOccupancy struct {
	Region string
	Start  time.Time
	Daily  []int
}

// Occupancy returns the slice of the stored series covering [from, to].
func (m *MemoryOccupancy) Occupancy(from, to time.Time, region string, bedType BedType) ([]int, error) {
	if bedType != BedNormal && bedType != BedICU {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBedType, bedType)
	}
	if region != m.Region {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	lo := daysBetween(Day(m.Start), Day(from))
	hi := daysBetween(Day(m.Start), Day(to))
	if hi < lo {
		// A window clamped to the data horizon can end before it starts;
		// there is no observed occupancy to serve then.
		return nil, nil
	}
	if lo < 0 || hi >= len(m.Daily) {
		return nil, fmt.Errorf("%w: [%s, %s]",
			ErrWindowOutOfRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return append([]int(nil), m.Daily[lo:hi+1]...), nil
}

// MinDate returns the first stored day.
func (m *MemoryOccupancy) MinDate() time.Time { return Day(m.Start) }

// MaxDate returns the last stored day.
func (m *MemoryOccupancy) MaxDate() time.Time {
	return Day(m.Start).AddDate(0, 0, len(m.Daily)-1)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
