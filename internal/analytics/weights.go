package analytics

import (
	"math"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

const (
	weightRationale         = "Based on coefficient of variation"
	weightRationaleFallback = "Equal weights: all stream totals had zero dispersion"
)

// EstimateWeights derives the 3-way stream weight vector from the dispersion
// of the stream totals across the full table. Each stream's coefficient of
// variation (population standard deviation over mean, zero when the mean is
// zero) is normalized so the weights sum to 1.0: streams with more
// cross-district variance carry more discriminative signal. When every CV is
// zero the estimator falls back to equal thirds.
func EstimateWeights(rows []*domain.DistrictWeek) domain.WeightVector {
	cvs := make([]float64, len(domain.Streams))
	for i, s := range domain.Streams {
		values := make([]float64, len(rows))
		for j, dw := range rows {
			values[j] = float64(dw.StreamTotal(s))
		}
		cvs[i] = coefficientOfVariation(values)
	}

	total := cvs[0] + cvs[1] + cvs[2]
	if total == 0 {
		third := 1.0 / 3.0
		return domain.WeightVector{
			Enrolment:   third,
			Demographic: third,
			Biometric:   third,
			Rationale:   weightRationaleFallback,
		}
	}

	return domain.WeightVector{
		Enrolment:   cvs[0] / total,
		Demographic: cvs[1] / total,
		Biometric:   cvs[2] / total,
		Rationale:   weightRationale,
	}
}

// coefficientOfVariation returns the population standard deviation divided by
// the mean, or zero when the mean is zero or the slice is empty.
func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)))
	return std / mean
}
