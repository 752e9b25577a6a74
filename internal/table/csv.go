package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bizhours-exporter/internal/batch"
	"bizhours-exporter/internal/utils"
)

// Columns names the fields the driver reads and writes.
type Columns struct {
	ID     string
	Start  string
	End    string
	Output string
	Error  string
	// Location applies to timestamps without a zone; nil means UTC.
	Location *time.Location
}

type Table struct {
	Header []string
	Rows   [][]string
}

// Read loads a CSV document whose first row is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv has no header row")
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

func (t *Table) column(name string) (int, error) {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in header", name)
}

// Intervals maps every row to a batch.Interval. A row whose timestamps do
// not parse still yields an Interval, carrying the decode error.
func (t *Table) Intervals(cols Columns) ([]batch.Interval, error) {
	startIdx, err := t.column(cols.Start)
	if err != nil {
		return nil, err
	}
	endIdx, err := t.column(cols.End)
	if err != nil {
		return nil, err
	}
	idIdx, err := t.column(cols.ID)
	if err != nil {
		idIdx = -1
	}
	loc := cols.Location
	if loc == nil {
		loc = time.UTC
	}

	out := make([]batch.Interval, len(t.Rows))
	for i, row := range t.Rows {
		it := batch.Interval{ID: strconv.Itoa(i + 1)}
		if idIdx >= 0 && idIdx < len(row) && row[idIdx] != "" {
			it.ID = row[idIdx]
		}
		it.Start, it.Err = parseField(row, startIdx, cols.Start, loc)
		if it.Err == nil {
			it.End, it.Err = parseField(row, endIdx, cols.End, loc)
		}
		out[i] = it
	}
	return out, nil
}

func parseField(row []string, idx int, name string, loc *time.Location) (time.Time, error) {
	if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return time.Time{}, fmt.Errorf("%s: missing timestamp", name)
	}
	ts, err := utils.ParseDateFlexibleIn(strings.TrimSpace(row[idx]), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return ts, nil
}

// Write emits the original rows with the output and error columns appended.
// results must line up with t.Rows.
func Write(w io.Writer, t *Table, results []batch.Result, cols Columns) error {
	if len(results) != len(t.Rows) {
		return fmt.Errorf("have %d results for %d rows", len(results), len(t.Rows))
	}
	cw := csv.NewWriter(w)
	header := append(append([]string(nil), t.Header...), cols.Output, cols.Error)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		out := make([]string, 0, len(t.Header)+2)
		out = append(out, row...)
		for len(out) < len(t.Header) {
			out = append(out, "")
		}
		if r := results[i]; r.Err != nil {
			out = append(out, "", r.Err.Error())
		} else {
			out = append(out, strconv.Itoa(r.Hours), "")
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
