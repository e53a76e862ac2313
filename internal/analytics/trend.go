package analytics

import (
	"sort"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// ClassifyTrends assigns each row its severity trend label, per district in
// week order. For every district it computes the 4-week trailing moving
// average of severity (emitted from the second observation onward), the
// week-over-week change, and the momentum (second difference of severity),
// then classifies with a strict first-match-wins rule set. A district's
// first observation has no prior and is labeled insufficient_data.
func ClassifyTrends(rows []*domain.DistrictWeek) {
	byDistrict := make(map[[2]string][]*domain.DistrictWeek)
	for _, dw := range rows {
		k := [2]string{dw.State, dw.District}
		byDistrict[k] = append(byDistrict[k], dw)
	}

	for _, series := range byDistrict {
		sort.Slice(series, func(i, j int) bool { return series[i].Week < series[j].Week })
		classifySeries(series)
	}
}

func classifySeries(series []*domain.DistrictWeek) {
	var prevChange float64
	var prevChangeOK bool

	for i, dw := range series {
		// Trailing moving average over up to 4 observations including the
		// current one; undefined until two observations exist.
		if i >= 1 {
			start := i - 3
			if start < 0 {
				start = 0
			}
			var sum float64
			for _, w := range series[start : i+1] {
				sum += w.SeverityScore
			}
			dw.SeverityMA4 = sum / float64(i+1-start)
			dw.HasMA4 = true
		}

		if i == 0 {
			dw.Trend = domain.TrendInsufficientData
			continue
		}

		change := dw.SeverityScore - series[i-1].SeverityScore

		// Momentum is the change in the change; treated as zero on the
		// second observation where no prior change exists.
		var momentum float64
		if prevChangeOK {
			momentum = change - prevChange
		}

		dw.Trend = classifyTrend(change, momentum)
		prevChange = change
		prevChangeOK = true
	}
}

// classifyTrend applies the ordered trend rules; the first matching rule wins.
func classifyTrend(change, momentum float64) domain.TrendLabel {
	switch {
	case change > 5 && momentum > 0:
		return domain.TrendAcceleratingUp
	case change > 3:
		return domain.TrendRising
	case change > -3:
		return domain.TrendStable
	case change < -5 && momentum < 0:
		return domain.TrendAcceleratingDown
	default:
		return domain.TrendDeclining
	}
}
