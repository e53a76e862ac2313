package analytics

import (
	"sort"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// ScoreSeverity fills the per-stream intra-week percentile ranks and the
// weighted severity score for every row. Percentiles are computed within each
// week independently: a district's rank among all districts reporting that
// week, ascending, with ties sharing their average rank, expressed in
// (0, 100]. The severity score is the weight-vector-weighted sum of the three
// stream percentiles and therefore lies in [0, 100].
func ScoreSeverity(rows []*domain.DistrictWeek, w domain.WeightVector) {
	byWeek := make(map[string][]*domain.DistrictWeek)
	for _, dw := range rows {
		byWeek[dw.Week] = append(byWeek[dw.Week], dw)
	}

	for _, week := range byWeek {
		enrol := percentileRanks(week, domain.StreamEnrolment)
		demo := percentileRanks(week, domain.StreamDemographic)
		bio := percentileRanks(week, domain.StreamBiometric)
		for i, dw := range week {
			dw.EnrolPct = enrol[i]
			dw.DemoPct = demo[i]
			dw.BioPct = bio[i]
			dw.SeverityScore = dw.EnrolPct*w.Enrolment + dw.DemoPct*w.Demographic + dw.BioPct*w.Biometric
		}
	}
}

// percentileRanks returns the average-rank percentile of each row's stream
// total within the group, in group order.
func percentileRanks(group []*domain.DistrictWeek, s domain.Stream) []float64 {
	n := len(group)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return group[order[a]].StreamTotal(s) < group[order[b]].StreamTotal(s)
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && group[order[j+1]].StreamTotal(s) == group[order[i]].StreamTotal(s) {
			j++
		}
		// Ranks are 1-based; tied values share the average of their ranks.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	pcts := make([]float64, n)
	for i, r := range ranks {
		pcts[i] = r / float64(n) * 100
	}
	return pcts
}
