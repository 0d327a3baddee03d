// Package dataset defines the contracts the forecasting core uses to obtain
// daily case counts and hospital-bed occupancy. Implementations live in
// infra/loader; the core only depends on these interfaces.
package dataset

import (
	"errors"
	"time"
)

// BedType selects which bed capacity an occupancy series refers to.
type BedType string

const (
	// BedNormal selects regular ward beds.
	BedNormal BedType = "normal"
	// BedICU selects intensive-care beds.
	BedICU BedType = "ICU"
)

var (
	// ErrUnknownRegion is returned when the requested region is not present
	// in the data set.
	ErrUnknownRegion = errors.New("dataset: unknown region")
	// ErrUnknownBedType is returned for a bed-type selector other than
	// BedNormal or BedICU.
	ErrUnknownBedType = errors.New("dataset: unknown bed type")
	// ErrWindowOutOfRange is returned when the requested window is not fully
	// covered by the data set.
	ErrWindowOutOfRange = errors.New("dataset: window outside available data range")
	// ErrMissingDay is returned when a data set has a gap inside the
	// requested window.
	ErrMissingDay = errors.New("dataset: missing calendar day in window")
)

// CaseProvider serves daily new-case counts.
type CaseProvider interface {
	// Cases returns one entry per calendar day covering
	// [from-buffer, to], aggregated over the given case categories.
	// Counts are the day-over-day difference of the cumulative input;
	// categories missing on a day contribute zero. The window, including
	// the buffer and the day preceding it (needed for differencing), must
	// lie inside [MinDate, MaxDate].
	Cases(from, to time.Time, region string, categories []string, buffer int) ([]int, error)

	// MinDate returns the earliest date present in the data set.
	MinDate() time.Time
	// MaxDate returns the latest date present in the data set.
	MaxDate() time.Time
}

// OccupancyProvider serves daily bed-occupancy counts.
type OccupancyProvider interface {
	// Occupancy returns one entry per calendar day covering [from, to] for
	// the given region and bed type.
	Occupancy(from, to time.Time, region string, bedType BedType) ([]int, error)

	// MinDate returns the earliest date present in the data set.
	MinDate() time.Time
	// MaxDate returns the latest date present in the data set.
	MaxDate() time.Time
}

// Day truncates t to midnight UTC. Providers and the model index all series
// by days normalized this way.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
