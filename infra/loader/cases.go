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

// dateLayouts are the timestamp formats seen in the exports, day first.
var dateLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006",
	"2006-01-02",
}

func parseDay(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dataset.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("loader: unparseable date %q", s)
}

// CaseData serves daily new-case counts from the age-group case export
// (columns Time, Bundesland, Altersgruppe, Anzahl; semicolon separated;
// Anzahl is the cumulative case count).
type CaseData struct {
	// cum: region -> day -> category -> cumulative count.
	cum     map[string]map[time.Time]map[string]int
	minDate time.Time
	maxDate time.Time
}

var _ dataset.CaseProvider = (*CaseData)(nil)

// LoadCases reads the case export at path.
func LoadCases(path string) (*CaseData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open case data: %w", err)
	}
	defer f.Close()
	return ReadCases(f)
}

// ReadCases parses the case export from r.
func ReadCases(r io.Reader) (*CaseData, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read case header: %w", err)
	}
	col, err := columnIndex(header, "Time", "Bundesland", "Altersgruppe", "Anzahl")
	if err != nil {
		return nil, err
	}

	c := &CaseData{cum: make(map[string]map[time.Time]map[string]int)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read case row %d: %w", line, err)
		}
		day, err := parseDay(rec[col["Time"]])
		if err != nil {
			return nil, fmt.Errorf("case row %d: %w", line, err)
		}
		count, err := strconv.Atoi(rec[col["Anzahl"]])
		if err != nil {
			return nil, fmt.Errorf("case row %d: count: %w", line, err)
		}
		region := rec[col["Bundesland"]]
		category := rec[col["Altersgruppe"]]

		byDay := c.cum[region]
		if byDay == nil {
			byDay = make(map[time.Time]map[string]int)
			c.cum[region] = byDay
		}
		byCat := byDay[day]
		if byCat == nil {
			byCat = make(map[string]int)
			byDay[day] = byCat
		}
		// Rows are summed: the export splits counts further (e.g. by sex).
		byCat[category] += count

		if c.minDate.IsZero() || day.Before(c.minDate) {
			c.minDate = day
		}
		if day.After(c.maxDate) {
			c.maxDate = day
		}
	}
	if len(c.cum) == 0 {
		return nil, fmt.Errorf("loader: empty case data")
	}
	return c, nil
}

// Cases returns daily new cases over [from-buffer, to] for the region,
// summed across the given age-group categories. Categories absent on a day
// contribute zero. Because the counts are differenced day over day, the day
// before the buffered window must also be available.
func (c *CaseData) Cases(from, to time.Time, region string, categories []string, buffer int) ([]int, error) {
	if buffer < 0 {
		return nil, fmt.Errorf("loader: negative buffer %d", buffer)
	}
	from, to = dataset.Day(from), dataset.Day(to)
	byDay, ok := c.cum[region]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownRegion, region)
	}
	start := from.AddDate(0, 0, -buffer)
	if start.AddDate(0, 0, -1).Before(c.minDate) || to.After(c.maxDate) {
		return nil, fmt.Errorf("%w: [%s, %s] with buffer %d not inside [%s, %s]",
			dataset.ErrWindowOutOfRange,
			from.Format(time.DateOnly), to.Format(time.DateOnly), buffer,
			c.minDate.Format(time.DateOnly), c.maxDate.Format(time.DateOnly))
	}

	cumAt := func(day time.Time) (int, error) {
		byCat, ok := byDay[day]
		if !ok {
			return 0, fmt.Errorf("%w: %s", dataset.ErrMissingDay, day.Format(time.DateOnly))
		}
		sum := 0
		for _, cat := range categories {
			sum += byCat[cat]
		}
		return sum, nil
	}

	prev, err := cumAt(start.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	var out []int
	for day := start; !day.After(to); day = day.AddDate(0, 0, 1) {
		cur, err := cumAt(day)
		if err != nil {
			return nil, err
		}
		delta := cur - prev
		if delta < 0 {
			// Cumulative corrections produce negative diffs; the model
			// requires non-negative daily counts.
			delta = 0
		}
		out = append(out, delta)
		prev = cur
	}
	return out, nil
}

// MinDate returns the earliest date in the data set.
func (c *CaseData) MinDate() time.Time { return c.minDate }

// MaxDate returns the latest date in the data set.
func (c *CaseData) MaxDate() time.Time { return c.maxDate }

// columnIndex maps the named columns to their positions in header.
func columnIndex(header []string, names ...string) (map[string]int, error) {
	col := make(map[string]int, len(names))
	for i, h := range header {
		col[h] = i
	}
	out := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := col[name]
		if !ok {
			return nil, fmt.Errorf("loader: missing column %q", name)
		}
		out[name] = i
	}
	return out, nil
}
