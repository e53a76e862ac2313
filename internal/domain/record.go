package domain

import (
	"fmt"
	"time"
)

// Stream identifies one of the three source event logs.
type Stream string

const (
	StreamEnrolment   Stream = "enrolment"
	StreamDemographic Stream = "demographic"
	StreamBiometric   Stream = "biometric"
)

// Streams lists all source streams in their fixed priority order
// (enrolment first, then demographic, then biometric).
var Streams = []Stream{StreamEnrolment, StreamDemographic, StreamBiometric}

// RawRow is one event-log row after CSV decode and before canonicalization.
// Brackets holds the stream's age-bracket counts in column order:
// enrolment has three (0-5, 5-17, 18+), demographic and biometric have
// two (5-17, 18+). Rows with an unparseable date keep DateValid false and
// are excluded from weekly bucketing.
type RawRow struct {
	Date      time.Time
	DateValid bool
	Pincode   string
	State     string
	District  string
	Brackets  []int64
}

// TrendLabel is the ordinal week-over-week severity momentum class.
type TrendLabel string

const (
	TrendInsufficientData TrendLabel = "insufficient_data"
	TrendAcceleratingUp   TrendLabel = "accelerating_up"
	TrendRising           TrendLabel = "rising"
	TrendStable           TrendLabel = "stable"
	TrendAcceleratingDown TrendLabel = "accelerating_down"
	TrendDeclining        TrendLabel = "declining"
)

// RiskCategory is the final four-tier classification.
type RiskCategory string

const (
	RiskCritical  RiskCategory = "Critical"
	RiskEmerging  RiskCategory = "Emerging_Risk"
	RiskWatchlist RiskCategory = "Watchlist"
	RiskStable    RiskCategory = "Stable"
)

// SignalName labels the dominant source stream for a district-week.
type SignalName string

const (
	SignalEnrolment   SignalName = "Enrolment"
	SignalDemographic SignalName = "Demographic"
	SignalBiometric   SignalName = "Biometric"
)

// QualityFlag summarizes how many source streams reported volume.
type QualityFlag string

const (
	QualityComplete QualityFlag = "complete"
	QualityPartial  QualityFlag = "partial"
	QualitySparse   QualityFlag = "sparse"
)

// DistrictWeek is the central record, one per unique (week, state, district).
// Volumes are set by the weekly aggregator; the analytics fields are filled
// in progressively by the later pipeline stages.
type DistrictWeek struct {
	Week     string `json:"week"` // week-start date, YYYY-MM-DD
	State    string `json:"state"`
	District string `json:"district"`

	EnrolAge0To5   int64 `json:"enrol_age_0_5"`
	EnrolAge5To17  int64 `json:"enrol_age_5_17"`
	EnrolAge18Plus int64 `json:"enrol_age_18_plus"`
	EnrolTotal     int64 `json:"enrol_total"`

	DemoAge5To17  int64 `json:"demo_age_5_17"`
	DemoAge18Plus int64 `json:"demo_age_18_plus"`
	DemoTotal     int64 `json:"demo_total"`

	BioAge5To17  int64 `json:"bio_age_5_17"`
	BioAge18Plus int64 `json:"bio_age_18_plus"`
	BioTotal     int64 `json:"bio_total"`

	EnrolPct float64 `json:"enrol_total_pct"`
	DemoPct  float64 `json:"demo_total_pct"`
	BioPct   float64 `json:"bio_total_pct"`

	SeverityScore float64 `json:"severity_score"`
	SeverityMA4   float64 `json:"severity_score_ma4,omitempty"`
	HasMA4        bool    `json:"-"`

	AnomalyScore float64 `json:"anomaly_score"`
	IsAnomaly    bool    `json:"is_anomaly"`

	Trend            TrendLabel   `json:"severity_trend"`
	RiskCategory     RiskCategory `json:"risk_category"`
	DominantSignal   SignalName   `json:"dominant_signal"`
	DataCompleteness float64      `json:"data_completeness"` // percentage
	QualityFlag      QualityFlag  `json:"data_quality_flag"`
}

// Key returns the unique week|state|district identity of the record.
func (d *DistrictWeek) Key() string {
	return fmt.Sprintf("%s|%s|%s", d.Week, d.State, d.District)
}

// StreamTotal returns the total volume for the given stream.
func (d *DistrictWeek) StreamTotal(s Stream) int64 {
	switch s {
	case StreamEnrolment:
		return d.EnrolTotal
	case StreamDemographic:
		return d.DemoTotal
	case StreamBiometric:
		return d.BioTotal
	default:
		return 0
	}
}

// WeightVector holds the three normalized stream weights derived from
// cross-district dispersion. Components are non-negative and sum to 1.0.
type WeightVector struct {
	Enrolment   float64 `json:"enrolment"`
	Demographic float64 `json:"demographic"`
	Biometric   float64 `json:"biometric"`
	Rationale   string  `json:"rationale"`
}
