// Package export writes model output in JSON and CSV form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// WriteSeriesJSON writes a date-indexed occupancy series to w in JSON format.
func WriteSeriesJSON(w io.Writer, from time.Time, series []int) error {
	type entry struct {
		Date      string `json:"date"`
		Occupancy int    `json:"occupancy"`
	}
	entries := make([]entry, len(series))
	for i, v := range series {
		entries[i] = entry{Date: from.AddDate(0, 0, i).Format(time.DateOnly), Occupancy: v}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteSeriesCSV writes a date-indexed occupancy series to w in CSV format.
func WriteSeriesCSV(w io.Writer, from time.Time, series []int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "occupancy"}); err != nil {
		return err
	}
	for i, v := range series {
		rec := []string{
			from.AddDate(0, 0, i).Format(time.DateOnly),
			strconv.Itoa(v),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes any result value to w with indentation, for benchmark
// reports and calibration summaries.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
