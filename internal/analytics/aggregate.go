package analytics

import (
	"sort"
	"time"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// AggregateReport carries the counts the weekly aggregator logs and exports.
type AggregateReport struct {
	DroppedInvalidDates map[domain.Stream]int
	DistrictWeeks       int
	Districts           int
	Weeks               int
}

type weekKey struct {
	week     string
	state    string
	district string
}

// AggregateWeekly buckets the three canonicalized streams into district-week
// records. Each stream's age brackets are summed per (week, state, district)
// and its total derived as the sum of the brackets; the streams are merged
// with an outer join so a district-week present in only one stream still
// appears, zero-filled everywhere else. Rows with an invalid date are
// excluded from bucketing and counted in the report.
func AggregateWeekly(enrol, demo, bio []domain.RawRow, anchor time.Weekday) ([]*domain.DistrictWeek, AggregateReport) {
	report := AggregateReport{DroppedInvalidDates: make(map[domain.Stream]int)}
	table := make(map[weekKey]*domain.DistrictWeek)

	get := func(row domain.RawRow) *domain.DistrictWeek {
		k := weekKey{
			week:     domain.WeekLabel(domain.WeekStart(row.Date, anchor)),
			state:    row.State,
			district: row.District,
		}
		dw, ok := table[k]
		if !ok {
			dw = &domain.DistrictWeek{Week: k.week, State: k.state, District: k.district}
			table[k] = dw
		}
		return dw
	}

	for _, row := range enrol {
		if !row.DateValid {
			report.DroppedInvalidDates[domain.StreamEnrolment]++
			continue
		}
		dw := get(row)
		dw.EnrolAge0To5 += bracket(row, 0)
		dw.EnrolAge5To17 += bracket(row, 1)
		dw.EnrolAge18Plus += bracket(row, 2)
	}
	for _, row := range demo {
		if !row.DateValid {
			report.DroppedInvalidDates[domain.StreamDemographic]++
			continue
		}
		dw := get(row)
		dw.DemoAge5To17 += bracket(row, 0)
		dw.DemoAge18Plus += bracket(row, 1)
	}
	for _, row := range bio {
		if !row.DateValid {
			report.DroppedInvalidDates[domain.StreamBiometric]++
			continue
		}
		dw := get(row)
		dw.BioAge5To17 += bracket(row, 0)
		dw.BioAge18Plus += bracket(row, 1)
	}

	rows := make([]*domain.DistrictWeek, 0, len(table))
	districts := make(map[[2]string]struct{})
	weeks := make(map[string]struct{})
	for _, dw := range table {
		dw.EnrolTotal = dw.EnrolAge0To5 + dw.EnrolAge5To17 + dw.EnrolAge18Plus
		dw.DemoTotal = dw.DemoAge5To17 + dw.DemoAge18Plus
		dw.BioTotal = dw.BioAge5To17 + dw.BioAge18Plus
		rows = append(rows, dw)
		districts[[2]string{dw.State, dw.District}] = struct{}{}
		weeks[dw.Week] = struct{}{}
	}

	// Sort by (state, district, week): the order the per-district stages
	// assume and the order the output table is written in. Week labels are
	// ISO dates, so lexicographic order is chronological.
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.State != b.State {
			return a.State < b.State
		}
		if a.District != b.District {
			return a.District < b.District
		}
		return a.Week < b.Week
	})

	report.DistrictWeeks = len(rows)
	report.Districts = len(districts)
	report.Weeks = len(weeks)
	return rows, report
}

// bracket returns the i-th age-bracket count, zero when the row has fewer
// brackets than the stream schema expects.
func bracket(row domain.RawRow, i int) int64 {
	if i >= len(row.Brackets) {
		return 0
	}
	v := row.Brackets[i]
	if v < 0 {
		return 0
	}
	return v
}
