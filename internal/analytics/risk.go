package analytics

import "github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"

// ClassifyRisk maps (severity score, trend, anomaly flag) to the four-tier
// risk category. The rule table is evaluated top-down, first match wins; it
// is deliberately an explicit decision table rather than a learned model so
// every boundary is auditable.
func ClassifyRisk(score float64, trend domain.TrendLabel, anomaly bool) domain.RiskCategory {
	upward := trend == domain.TrendAcceleratingUp || trend == domain.TrendRising

	switch {
	case score >= 90 || (anomaly && upward):
		return domain.RiskCritical
	case score >= 75 && upward:
		return domain.RiskEmerging
	case score >= 60 || (anomaly && trend != domain.TrendDeclining):
		return domain.RiskWatchlist
	default:
		return domain.RiskStable
	}
}

// DominantSignal returns the stream with the highest percentile rank. Ties
// resolve by the fixed stream priority: enrolment, then demographic, then
// biometric.
func DominantSignal(enrolPct, demoPct, bioPct float64) domain.SignalName {
	max := enrolPct
	if demoPct > max {
		max = demoPct
	}
	if bioPct > max {
		max = bioPct
	}
	switch {
	case max == enrolPct:
		return domain.SignalEnrolment
	case max == demoPct:
		return domain.SignalDemographic
	default:
		return domain.SignalBiometric
	}
}

// Completeness returns the percentage of the three stream totals that are
// strictly positive.
func Completeness(enrolTotal, demoTotal, bioTotal int64) float64 {
	n := 0
	if enrolTotal > 0 {
		n++
	}
	if demoTotal > 0 {
		n++
	}
	if bioTotal > 0 {
		n++
	}
	return float64(n) / 3 * 100
}

// QualityFor maps a completeness percentage to its quality flag.
func QualityFor(completeness float64) domain.QualityFlag {
	switch {
	case completeness == 100:
		return domain.QualityComplete
	case completeness >= 33:
		return domain.QualityPartial
	default:
		return domain.QualitySparse
	}
}

// Annotate applies risk classification, dominant-signal resolution, and
// quality annotation to every row. Each function is a pure per-record
// decision; Annotate is just the batch loop.
func Annotate(rows []*domain.DistrictWeek) {
	for _, dw := range rows {
		dw.RiskCategory = ClassifyRisk(dw.SeverityScore, dw.Trend, dw.IsAnomaly)
		dw.DominantSignal = DominantSignal(dw.EnrolPct, dw.DemoPct, dw.BioPct)
		dw.DataCompleteness = Completeness(dw.EnrolTotal, dw.DemoTotal, dw.BioTotal)
		dw.QualityFlag = QualityFor(dw.DataCompleteness)
	}
}
