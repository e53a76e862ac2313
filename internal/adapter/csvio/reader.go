// Package csvio reads the raw Aadhaar activity CSVs and writes the pipeline's
// CSV artifacts.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// streamColumns maps each stream to its age-bracket column names, in the
// order the brackets are stored on domain.RawRow.
var streamColumns = map[domain.Stream][]string{
	domain.StreamEnrolment:   {"age_0_5", "age_5_17", "age_18_greater"},
	domain.StreamDemographic: {"demo_age_5_17", "demo_age_17_"},
	domain.StreamBiometric:   {"bio_age_5_17", "bio_age_17_"},
}

// ReadStream decodes one raw event CSV. Required columns are date, pincode,
// state, district, plus the stream's bracket columns; a missing column is a
// schema error that aborts the run. Rows with an unparseable date are kept
// with DateValid false; unparseable counts decode as zero.
func ReadStream(path string, stream domain.Stream) ([]domain.RawRow, error) {
	brackets, ok := streamColumns[stream]
	if !ok {
		return nil, fmt.Errorf("unknown stream %q", stream)
	}

	records, err := readAll(path)
	if err != nil {
		return nil, fmt.Errorf("read %s stream: %w", stream, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("read %s stream: %s is empty", stream, path)
	}

	colIdx := indexHeader(records[0])
	required := append([]string{"date", "pincode", "state", "district"}, brackets...)
	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("read %s stream: %s is missing column %q", stream, path, col)
		}
	}

	rows := make([]domain.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		date, valid := domain.ParseEventDate(get(rec, colIdx, "date"))
		row := domain.RawRow{
			Date:      date,
			DateValid: valid,
			Pincode:   get(rec, colIdx, "pincode"),
			State:     get(rec, colIdx, "state"),
			District:  get(rec, colIdx, "district"),
			Brackets:  make([]int64, len(brackets)),
		}
		for i, col := range brackets {
			row.Brackets[i] = parseCount(get(rec, colIdx, col))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadPincodeReference decodes the reference table. The file's first three
// columns are taken as (pincode, district, state) regardless of their header
// names, matching the legacy loader; normalization and pincode dedup happen
// in domain.NewRegionReference.
func ReadPincodeReference(path string) (*domain.RegionReference, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, fmt.Errorf("read pincode reference: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("read pincode reference: %s is empty", path)
	}
	if len(records[0]) < 3 {
		return nil, fmt.Errorf("read pincode reference: %s needs at least 3 columns", path)
	}

	entries := make([]domain.PincodeEntry, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			continue
		}
		entries = append(entries, domain.PincodeEntry{
			Pincode:  rec[0],
			District: rec[1],
			State:    rec[2],
		})
	}
	return domain.NewRegionReference(entries), nil
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return idx
}

func get(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseCount decodes a bracket count, zero on failure or negative input.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
