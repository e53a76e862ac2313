package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/observability"
)

func testPipeline() *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, observability.NewMetricsForTesting(), Options{
		WeekAnchor:    time.Tuesday,
		AnomalySeed:   42,
		Contamination: 0.1,
		Workers:       2,
	})
}

func rawRow(t *testing.T, date, pin string, brackets ...int64) domain.RawRow {
	t.Helper()
	d, ok := domain.ParseEventDate(date)
	require.True(t, ok)
	return domain.RawRow{
		Date:      d,
		DateValid: true,
		Pincode:   pin,
		State:     "reported state",
		District:  "reported district",
		Brackets:  brackets,
	}
}

// testInputs builds two districts over several weeks. District HOT carries
// every stream's maximum volume in the last week; district COLD is flat.
func testInputs(t *testing.T) Inputs {
	t.Helper()
	ref := domain.NewRegionReference([]domain.PincodeEntry{
		{Pincode: "110001", District: "hot district", State: "delhi"},
		{Pincode: "400001", District: "cold district", State: "maharashtra"},
	})

	var enrol, demo, bio []domain.RawRow
	for w := 0; w < 6; w++ {
		// Tuesdays: 06-01-2026 + 7w days.
		date := time.Date(2026, 1, 6+7*w, 0, 0, 0, 0, time.UTC).Format("02-01-2006")

		hot := int64(100 + 10*w)
		if w == 5 {
			hot = 5000
		}
		enrol = append(enrol,
			rawRow(t, date, "110001", hot, hot, hot),
			rawRow(t, date, "400001", 50, 50, 50),
		)
		demo = append(demo,
			rawRow(t, date, "110001", hot, hot),
			rawRow(t, date, "400001", 40, 40),
		)
		bio = append(bio,
			rawRow(t, date, "110001", hot, hot),
			rawRow(t, date, "400001", 30, 30),
		)
	}

	return Inputs{Enrolment: enrol, Demographic: demo, Biometric: bio, Reference: ref}
}

func TestRunProducesAnnotatedTable(t *testing.T) {
	p := testPipeline()

	res, err := p.Run(context.Background(), testInputs(t))
	require.NoError(t, err)

	// 2 districts x 6 weeks.
	require.Len(t, res.Rows, 12)

	assert.InDelta(t, 1.0, res.Weights.Enrolment+res.Weights.Demographic+res.Weights.Biometric, 1e-9)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))

	for _, dw := range res.Rows {
		assert.NotEmpty(t, dw.Trend, dw.Key())
		assert.NotEmpty(t, dw.RiskCategory, dw.Key())
		assert.NotEmpty(t, dw.DominantSignal, dw.Key())
		assert.NotEmpty(t, dw.QualityFlag, dw.Key())
		assert.GreaterOrEqual(t, dw.SeverityScore, 0.0, dw.Key())
		assert.LessOrEqual(t, dw.SeverityScore, 100.0, dw.Key())
	}
}

func TestRunCanonicalizesRegions(t *testing.T) {
	p := testPipeline()

	res, err := p.Run(context.Background(), testInputs(t))
	require.NoError(t, err)

	require.Len(t, res.Resolution, 3)
	names := map[string]bool{}
	for _, dw := range res.Rows {
		names[dw.State+"/"+dw.District] = true
	}
	assert.Equal(t, map[string]bool{
		"DELHI/HOT DISTRICT":        true,
		"MAHARASHTRA/COLD DISTRICT": true,
	}, names)
}

func TestRunTopDistrictIsCritical(t *testing.T) {
	p := testPipeline()

	res, err := p.Run(context.Background(), testInputs(t))
	require.NoError(t, err)

	var spike *domain.DistrictWeek
	for _, dw := range res.Rows {
		if dw.District == "HOT DISTRICT" && dw.Week == "2026-02-10" {
			spike = dw
		}
	}
	require.NotNil(t, spike)

	// Leads every stream that week, so each percentile is 100 and the
	// weighted severity is exactly 100 regardless of the weight vector.
	assert.InDelta(t, 100, spike.EnrolPct, 1e-9)
	assert.InDelta(t, 100, spike.DemoPct, 1e-9)
	assert.InDelta(t, 100, spike.BioPct, 1e-9)
	assert.InDelta(t, 100, spike.SeverityScore, 1e-9)
	assert.Equal(t, domain.RiskCritical, spike.RiskCategory)
	assert.Equal(t, domain.QualityComplete, spike.QualityFlag)
}

func TestRunReadiness(t *testing.T) {
	p := testPipeline()
	ctx := context.Background()

	require.Error(t, p.CheckReadiness(ctx))

	_, err := p.Run(ctx, testInputs(t))
	require.NoError(t, err)

	assert.NoError(t, p.CheckReadiness(ctx))
}

func TestRunFailsWithoutValidRows(t *testing.T) {
	p := testPipeline()

	in := testInputs(t)
	for i := range in.Enrolment {
		in.Enrolment[i].DateValid = false
	}
	for i := range in.Demographic {
		in.Demographic[i].DateValid = false
	}
	for i := range in.Biometric {
		in.Biometric[i].DateValid = false
	}

	_, err := p.Run(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage aggregate_weekly")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestRunDeterministic(t *testing.T) {
	a, err := testPipeline().Run(context.Background(), testInputs(t))
	require.NoError(t, err)
	b, err := testPipeline().Run(context.Background(), testInputs(t))
	require.NoError(t, err)

	require.Len(t, b.Rows, len(a.Rows))
	for i := range a.Rows {
		assert.Equal(t, a.Rows[i].Key(), b.Rows[i].Key())
		assert.Equal(t, a.Rows[i].SeverityScore, b.Rows[i].SeverityScore, a.Rows[i].Key())
		assert.Equal(t, a.Rows[i].AnomalyScore, b.Rows[i].AnomalyScore, a.Rows[i].Key())
		assert.Equal(t, a.Rows[i].RiskCategory, b.Rows[i].RiskCategory, a.Rows[i].Key())
	}
}

func TestRunUnknownPincodeKeepsReportedLabels(t *testing.T) {
	p := testPipeline()
	in := testInputs(t)
	in.Enrolment = append(in.Enrolment,
		rawRow(t, "06-01-2026", "999999", 1, 1, 1),
	)

	res, err := p.Run(context.Background(), in)
	require.NoError(t, err)

	var kept bool
	for _, dw := range res.Rows {
		if dw.District == "reported district" {
			kept = true
		}
	}
	assert.True(t, kept, "row with unresolved pincode should survive with reported labels")

	for _, rep := range res.Resolution {
		if rep.Stream == domain.StreamEnrolment {
			assert.Equal(t, 1, rep.UnresolvedPins)
		}
	}
}
