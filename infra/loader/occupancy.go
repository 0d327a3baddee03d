package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/lkirchmair/bedcast/core/dataset"
)

type bedCounts struct {
	normal int
	icu    int
}

// OccupancyData serves daily bed-occupancy counts from the hospitalization
// export (columns Meldedatum, Bundesland, NormalBettenBelCovid19,
// IntensivBettenBelCovid19; semicolon separated).
type OccupancyData struct {
	// beds: region -> day -> counts.
	beds    map[string]map[time.Time]bedCounts
	minDate time.Time
	maxDate time.Time
}

var _ dataset.OccupancyProvider = (*OccupancyData)(nil)

// LoadOccupancy reads the hospitalization export at path.
func LoadOccupancy(path string) (*OccupancyData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open occupancy data: %w", err)
	}
	defer f.Close()
	return ReadOccupancy(f)
}

// ReadOccupancy parses the hospitalization export from r.
func ReadOccupancy(r io.Reader) (*OccupancyData, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read occupancy header: %w", err)
	}
	col, err := columnIndex(header, "Meldedatum", "Bundesland",
		"NormalBettenBelCovid19", "IntensivBettenBelCovid19")
	if err != nil {
		return nil, err
	}

	o := &OccupancyData{beds: make(map[string]map[time.Time]bedCounts)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read occupancy row %d: %w", line, err)
		}
		day, err := parseDay(rec[col["Meldedatum"]])
		if err != nil {
			return nil, fmt.Errorf("occupancy row %d: %w", line, err)
		}
		normal, err := strconv.Atoi(rec[col["NormalBettenBelCovid19"]])
		if err != nil {
			return nil, fmt.Errorf("occupancy row %d: normal beds: %w", line, err)
		}
		icu, err := strconv.Atoi(rec[col["IntensivBettenBelCovid19"]])
		if err != nil {
			return nil, fmt.Errorf("occupancy row %d: icu beds: %w", line, err)
		}
		region := rec[col["Bundesland"]]

		byDay := o.beds[region]
		if byDay == nil {
			byDay = make(map[time.Time]bedCounts)
			o.beds[region] = byDay
		}
		byDay[day] = bedCounts{normal: normal, icu: icu}

		if o.minDate.IsZero() || day.Before(o.minDate) {
			o.minDate = day
		}
		if day.After(o.maxDate) {
			o.maxDate = day
		}
	}
	if len(o.beds) == 0 {
		return nil, fmt.Errorf("loader: empty occupancy data")
	}
	return o, nil
}

// Occupancy returns daily bed counts over [from, to] for the region and bed
// type, one entry per calendar day.
func (o *OccupancyData) Occupancy(from, to time.Time, region string, bedType dataset.BedType) ([]int, error) {
	if bedType != dataset.BedNormal && bedType != dataset.BedICU {
		return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownBedType, bedType)
	}
	from, to = dataset.Day(from), dataset.Day(to)
	byDay, ok := o.beds[region]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownRegion, region)
	}
	if from.Before(o.minDate) || to.After(o.maxDate) {
		return nil, fmt.Errorf("%w: [%s, %s] not inside [%s, %s]",
			dataset.ErrWindowOutOfRange,
			from.Format(time.DateOnly), to.Format(time.DateOnly),
			o.minDate.Format(time.DateOnly), o.maxDate.Format(time.DateOnly))
	}

	var out []int
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		counts, ok := byDay[day]
		if !ok {
			return nil, fmt.Errorf("%w: %s", dataset.ErrMissingDay, day.Format(time.DateOnly))
		}
		if bedType == dataset.BedICU {
			out = append(out, counts.icu)
		} else {
			out = append(out, counts.normal)
		}
	}
	return out, nil
}

// MinDate returns the earliest date in the data set.
func (o *OccupancyData) MinDate() time.Time { return o.minDate }

// MaxDate returns the latest date in the data set.
func (o *OccupancyData) MaxDate() time.Time { return o.maxDate }
