package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		trend   domain.TrendLabel
		anomaly bool
		want    domain.RiskCategory
	}{
		{"high score alone", 95, domain.TrendStable, false, domain.RiskCritical},
		{"boundary 90", 90, domain.TrendDeclining, false, domain.RiskCritical},
		{"anomalous and rising", 40, domain.TrendRising, true, domain.RiskCritical},
		{"anomalous and accelerating up", 10, domain.TrendAcceleratingUp, true, domain.RiskCritical},
		{"high and rising", 80, domain.TrendRising, false, domain.RiskEmerging},
		{"boundary 75 accelerating", 75, domain.TrendAcceleratingUp, false, domain.RiskEmerging},
		{"high but flat", 80, domain.TrendStable, false, domain.RiskWatchlist},
		{"elevated score", 65, domain.TrendDeclining, true, domain.RiskWatchlist},
		{"boundary 60", 60, domain.TrendStable, false, domain.RiskWatchlist},
		{"anomalous non-declining", 20, domain.TrendStable, true, domain.RiskWatchlist},
		{"anomalous but declining", 20, domain.TrendDeclining, true, domain.RiskStable},
		{"quiet", 40, domain.TrendStable, false, domain.RiskStable},
		{"low and falling", 5, domain.TrendAcceleratingDown, false, domain.RiskStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.score, tt.trend, tt.anomaly))
		})
	}
}

func TestDominantSignal(t *testing.T) {
	tests := []struct {
		name              string
		enrol, demo, bio  float64
		want              domain.SignalName
	}{
		{"enrolment leads", 80, 40, 30, domain.SignalEnrolment},
		{"demographic leads", 20, 90, 30, domain.SignalDemographic},
		{"biometric leads", 20, 40, 95, domain.SignalBiometric},
		{"three-way tie prefers enrolment", 50, 50, 50, domain.SignalEnrolment},
		{"demo-bio tie prefers demographic", 10, 60, 60, domain.SignalDemographic},
		{"enrol-bio tie prefers enrolment", 70, 10, 70, domain.SignalEnrolment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DominantSignal(tt.enrol, tt.demo, tt.bio))
		})
	}
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 100.0, Completeness(1, 1, 1))
	assert.InDelta(t, 66.66666666666667, Completeness(1, 1, 0), 1e-9)
	assert.InDelta(t, 33.333333333333336, Completeness(0, 0, 5), 1e-9)
	assert.Equal(t, 0.0, Completeness(0, 0, 0))
}

func TestQualityFor(t *testing.T) {
	assert.Equal(t, domain.QualityComplete, QualityFor(100))
	assert.Equal(t, domain.QualityPartial, QualityFor(Completeness(1, 1, 0)))
	assert.Equal(t, domain.QualityPartial, QualityFor(Completeness(1, 0, 0)))
	assert.Equal(t, domain.QualitySparse, QualityFor(0))
}

func TestAnnotate(t *testing.T) {
	rows := []*domain.DistrictWeek{
		{
			Week: "2026-01-06", State: "S", District: "A",
			EnrolTotal: 100, DemoTotal: 50, BioTotal: 25,
			EnrolPct: 100, DemoPct: 100, BioPct: 100,
			SeverityScore: 100, Trend: domain.TrendInsufficientData,
		},
		{
			Week: "2026-01-06", State: "S", District: "B",
			EnrolTotal: 10, DemoTotal: 0, BioTotal: 0,
			EnrolPct: 50, DemoPct: 50, BioPct: 50,
			SeverityScore: 50, Trend: domain.TrendStable,
		},
	}

	Annotate(rows)

	assert.Equal(t, domain.RiskCritical, rows[0].RiskCategory)
	assert.Equal(t, domain.SignalEnrolment, rows[0].DominantSignal)
	assert.Equal(t, 100.0, rows[0].DataCompleteness)
	assert.Equal(t, domain.QualityComplete, rows[0].QualityFlag)

	assert.Equal(t, domain.RiskStable, rows[1].RiskCategory)
	assert.Equal(t, domain.SignalEnrolment, rows[1].DominantSignal)
	assert.Equal(t, domain.QualityPartial, rows[1].QualityFlag)
}
