package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

func volumeRows(totals ...[3]int64) []*domain.DistrictWeek {
	rows := make([]*domain.DistrictWeek, len(totals))
	for i, t := range totals {
		rows[i] = &domain.DistrictWeek{
			EnrolTotal: t[0],
			DemoTotal:  t[1],
			BioTotal:   t[2],
		}
	}
	return rows
}

func TestEstimateWeightsSumToOne(t *testing.T) {
	rows := volumeRows(
		[3]int64{10, 5, 1},
		[3]int64{90, 6, 1},
		[3]int64{20, 5, 1},
		[3]int64{400, 7, 1},
	)

	w := EstimateWeights(rows)

	assert.GreaterOrEqual(t, w.Enrolment, 0.0)
	assert.GreaterOrEqual(t, w.Demographic, 0.0)
	assert.GreaterOrEqual(t, w.Biometric, 0.0)
	assert.InDelta(t, 1.0, w.Enrolment+w.Demographic+w.Biometric, 1e-12)

	// Enrolment varies far more than the others, so it must dominate.
	assert.Greater(t, w.Enrolment, w.Demographic)
	assert.Greater(t, w.Demographic, w.Biometric)

	// Constant biometric totals have zero dispersion, hence zero weight.
	assert.Equal(t, 0.0, w.Biometric)
	assert.Equal(t, weightRationale, w.Rationale)
}

func TestEstimateWeightsZeroMeanGuard(t *testing.T) {
	// All-zero demographic totals: mean is zero, CV must be zero, not NaN.
	rows := volumeRows(
		[3]int64{1, 0, 3},
		[3]int64{9, 0, 5},
	)

	w := EstimateWeights(rows)

	assert.Equal(t, 0.0, w.Demographic)
	assert.InDelta(t, 1.0, w.Enrolment+w.Demographic+w.Biometric, 1e-12)
}

func TestEstimateWeightsEqualThirdsFallback(t *testing.T) {
	// Every stream constant: all CVs zero, fall back to equal weights.
	rows := volumeRows(
		[3]int64{5, 5, 5},
		[3]int64{5, 5, 5},
	)

	w := EstimateWeights(rows)

	assert.InDelta(t, 1.0/3.0, w.Enrolment, 1e-12)
	assert.InDelta(t, 1.0/3.0, w.Demographic, 1e-12)
	assert.InDelta(t, 1.0/3.0, w.Biometric, 1e-12)
	assert.Equal(t, weightRationaleFallback, w.Rationale)
}

func TestCoefficientOfVariationPopulationStd(t *testing.T) {
	// Values 2,4,4,4,5,5,7,9: mean 5, population std exactly 2.
	cv := coefficientOfVariation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.InDelta(t, 0.4, cv, 1e-12)
}
