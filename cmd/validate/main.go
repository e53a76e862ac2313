// Command validate performs integrity checks over the pipeline's output
// artifacts: the district-week table and the weight justification. It
// verifies the column contract, score bounds, bracket round-trips,
// first-observation trend labels, risk-table consistency, and weight
// normalization, reporting pass/fail per phase.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -table data/ews_weekly_district_enhanced.csv \
//	  -weights data/weight_justification.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/csvio"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/analytics"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tablePath := flag.String("table", "", "path to the district-week output CSV")
	weightsPath := flag.String("weights", "", "path to the weight justification CSV")
	flag.Parse()

	if *tablePath == "" || *weightsPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*tablePath, *weightsPath))
}

type outputRow struct {
	week, state, district string
	risk                  domain.RiskCategory
	severity              float64
	trend                 domain.TrendLabel
	enrolTotal            int64
	demoTotal             int64
	bioTotal              int64
	brackets              []int64 // enrol 0-5, 5-17, 18+; demo 5-17, 18+; bio 5-17, 18+
	isAnomaly             bool
	quality               domain.QualityFlag
	completeness          float64
}

func run(tablePath, weightsPath string) int {
	rows, p := readTable(tablePath)
	phases := []*phase{p}
	if p.passed() {
		phases = append(phases,
			checkBounds(rows),
			checkRoundTrip(rows),
			checkFirstObservation(rows),
			checkRiskTable(rows),
			checkQuality(rows),
		)
	}
	phases = append(phases, checkWeights(weightsPath))

	failed := 0
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       %s\n", e)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed\n", len(phases))
	return 0
}

func readTable(path string) ([]outputRow, *phase) {
	p := &phase{name: "table schema"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return nil, p
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		p.errorf("read: %v", err)
		return nil, p
	}
	if len(records) < 1 {
		p.errorf("empty file")
		return nil, p
	}

	header := records[0]
	if len(header) != len(csvio.DistrictWeekHeader) {
		p.errorf("expected %d columns, got %d", len(csvio.DistrictWeekHeader), len(header))
		return nil, p
	}
	for i, want := range csvio.DistrictWeekHeader {
		if header[i] != want {
			p.errorf("column %d: expected %q, got %q", i, want, header[i])
		}
	}
	if !p.passed() {
		return nil, p
	}

	rows := make([]outputRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRow(rec)
		if err != nil {
			p.errorf("row %d: %v", i+2, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, p
}

func parseRow(rec []string) (outputRow, error) {
	var row outputRow
	var err error

	row.week, row.state, row.district = rec[0], rec[1], rec[2]
	row.risk = domain.RiskCategory(rec[3])
	if row.severity, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return row, fmt.Errorf("severity_score: %w", err)
	}
	row.trend = domain.TrendLabel(rec[5])

	ints := make([]int64, 0, 10)
	for _, col := range rec[7:17] {
		v, err := strconv.ParseInt(col, 10, 64)
		if err != nil {
			return row, fmt.Errorf("volume column: %w", err)
		}
		ints = append(ints, v)
	}
	row.enrolTotal, row.demoTotal, row.bioTotal = ints[0], ints[1], ints[2]
	row.brackets = ints[3:]

	if row.isAnomaly, err = strconv.ParseBool(rec[17]); err != nil {
		return row, fmt.Errorf("is_anomaly: %w", err)
	}
	row.quality = domain.QualityFlag(rec[18])
	if row.completeness, err = strconv.ParseFloat(rec[19], 64); err != nil {
		return row, fmt.Errorf("data_completeness: %w", err)
	}
	return row, nil
}

func checkBounds(rows []outputRow) *phase {
	p := &phase{name: "severity bounds"}
	for _, r := range rows {
		if r.severity < 0 || r.severity > 100 {
			p.errorf("%s/%s/%s: severity %v out of [0,100]", r.week, r.state, r.district, r.severity)
		}
	}
	return p
}

func checkRoundTrip(rows []outputRow) *phase {
	p := &phase{name: "bracket round-trip"}
	for _, r := range rows {
		enrol := r.brackets[0] + r.brackets[1] + r.brackets[2]
		demo := r.brackets[3] + r.brackets[4]
		bio := r.brackets[5] + r.brackets[6]
		if enrol != r.enrolTotal || demo != r.demoTotal || bio != r.bioTotal {
			p.errorf("%s/%s/%s: bracket sums (%d,%d,%d) != totals (%d,%d,%d)",
				r.week, r.state, r.district, enrol, demo, bio, r.enrolTotal, r.demoTotal, r.bioTotal)
		}
	}
	return p
}

func checkFirstObservation(rows []outputRow) *phase {
	p := &phase{name: "first observation trend"}
	firstWeek := make(map[string]string)
	firstTrend := make(map[string]domain.TrendLabel)
	for _, r := range rows {
		k := r.state + "|" + r.district
		if w, ok := firstWeek[k]; !ok || r.week < w {
			firstWeek[k] = r.week
			firstTrend[k] = r.trend
		}
	}
	for k, trend := range firstTrend {
		if trend != domain.TrendInsufficientData {
			p.errorf("%s: first week %s labeled %q, expected %q",
				k, firstWeek[k], trend, domain.TrendInsufficientData)
		}
	}
	return p
}

func checkRiskTable(rows []outputRow) *phase {
	p := &phase{name: "risk table consistency"}
	for _, r := range rows {
		want := analytics.ClassifyRisk(r.severity, r.trend, r.isAnomaly)
		if r.risk != want {
			p.errorf("%s/%s/%s: risk %q, decision table says %q",
				r.week, r.state, r.district, r.risk, want)
		}
	}
	return p
}

func checkQuality(rows []outputRow) *phase {
	p := &phase{name: "quality annotation"}
	for _, r := range rows {
		wantCompleteness := analytics.Completeness(r.enrolTotal, r.demoTotal, r.bioTotal)
		if math.Abs(wantCompleteness-r.completeness) > 1e-6 {
			p.errorf("%s/%s/%s: completeness %v, expected %v",
				r.week, r.state, r.district, r.completeness, wantCompleteness)
			continue
		}
		if want := analytics.QualityFor(r.completeness); r.quality != want {
			p.errorf("%s/%s/%s: quality %q, expected %q", r.week, r.state, r.district, r.quality, want)
		}
	}
	return p
}

func checkWeights(path string) *phase {
	p := &phase{name: "weight normalization"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return p
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		p.errorf("read: %v", err)
		return p
	}
	if len(records) != 4 {
		p.errorf("expected header plus 3 weight rows, got %d records", len(records))
		return p
	}

	var sum float64
	for _, rec := range records[1:] {
		w, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			p.errorf("weight for %s: %v", rec[0], err)
			continue
		}
		if w < 0 {
			p.errorf("weight for %s is negative: %v", rec[0], w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		p.errorf("weights sum to %v, expected 1.0", sum)
	}
	return p
}
