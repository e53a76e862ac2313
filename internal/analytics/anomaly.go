package analytics

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// MinAnomalyObservations is the minimum weekly history a district needs
// before its own time series supports an outlier fit.
const MinAnomalyObservations = 5

// AnomalyOptions configures the per-district outlier detection.
type AnomalyOptions struct {
	Seed          int64   // forest seed, fixed for reproducibility
	Contamination float64 // expected outlier fraction per district
	Workers       int     // parallel district fits; <=0 means GOMAXPROCS
}

// DetectAnomalies flags statistically unusual weeks per district. Each
// district with at least MinAnomalyObservations weeks gets an isolation
// forest fitted over its own 3-dimensional series of stream totals; rows
// scoring below the contamination quantile of the district's scores are
// flagged. Districts are self-referential: a district is only ever compared
// against its own history. Ineligible districts keep the default
// non-anomalous flag and zero score. Districts are fitted in parallel;
// workers write disjoint row partitions, so no locking is needed.
func DetectAnomalies(ctx context.Context, rows []*domain.DistrictWeek, opts AnomalyOptions) error {
	byDistrict := make(map[[2]string][]*domain.DistrictWeek)
	for _, dw := range rows {
		k := [2]string{dw.State, dw.District}
		byDistrict[k] = append(byDistrict[k], dw)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, series := range byDistrict {
		if len(series) < MinAnomalyObservations {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scoreDistrict(series, opts)
			return nil
		})
	}
	return g.Wait()
}

// scoreDistrict fits the outlier model over one district's weekly series and
// writes flags and scores back onto its rows.
func scoreDistrict(series []*domain.DistrictWeek, opts AnomalyOptions) {
	sort.Slice(series, func(i, j int) bool { return series[i].Week < series[j].Week })

	data := make([][]float64, len(series))
	for i, dw := range series {
		data[i] = []float64{
			float64(dw.EnrolTotal),
			float64(dw.DemoTotal),
			float64(dw.BioTotal),
		}
	}

	forest := fitIsolationForest(data, opts.Seed)
	scores := forest.scoreSamples(data)
	threshold := quantile(scores, opts.Contamination)

	for i, dw := range series {
		dw.AnomalyScore = scores[i]
		dw.IsAnomaly = scores[i] < threshold
	}
}

// quantile returns the q-quantile of values using linear interpolation
// between closest ranks, matching the reference model's threshold rule.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
