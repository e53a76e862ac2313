package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/analytics"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/observability"
)

// Inputs holds everything a run consumes: the three raw event tables and the
// pincode reference.
type Inputs struct {
	Enrolment   []domain.RawRow
	Demographic []domain.RawRow
	Biometric   []domain.RawRow
	Reference   *domain.RegionReference
}

// Result is the complete output of one run: the final district-week table,
// the weight vector with its rationale, and the per-stream resolution audit.
type Result struct {
	Rows       []*domain.DistrictWeek
	Weights    domain.WeightVector
	Resolution []domain.ResolutionReport
	Aggregate  analytics.AggregateReport
	StartedAt  time.Time
	FinishedAt time.Time
}

// Options configures a pipeline run.
type Options struct {
	WeekAnchor    time.Weekday
	AnomalySeed   int64
	Contamination float64
	Workers       int
}

// Pipeline executes the analytics stages as one all-or-nothing batch
// transform. Each stage consumes the table produced by the prior stage and
// returns an augmented one; any stage failure aborts the run with the
// originating stage named in the error. There is no partial output and no
// resume path.
type Pipeline struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
	done    atomic.Bool
}

// New creates a Pipeline with the given observability and options.
func New(logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// CheckReadiness returns nil once the pipeline has completed a run, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.done.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes the full stage sequence over the inputs and returns the
// augmented table.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	p.logger.Info("pipeline started",
		"enrolment_rows", len(in.Enrolment),
		"demographic_rows", len(in.Demographic),
		"biometric_rows", len(in.Biometric),
		"reference_pincodes", in.Reference.Len(),
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	res := &Result{StartedAt: domain.Now()}

	stages := []struct {
		name string
		fn   func() error
	}{
		{"resolve_regions", func() error { return p.resolveRegions(&in, res) }},
		{"aggregate_weekly", func() error { return p.aggregateWeekly(in, res) }},
		{"estimate_weights", func() error { return p.estimateWeights(res) }},
		{"score_severity", func() error { return p.scoreSeverity(res) }},
		{"detect_anomalies", func() error { return p.detectAnomalies(ctx, res) }},
		{"classify_trends", func() error { return p.classifyTrends(res) }},
		{"annotate", func() error { return p.annotate(res) }},
	}

	for _, s := range stages {
		start := time.Now()
		if err := s.fn(); err != nil {
			p.metrics.RunsTotal.WithLabelValues("failure").Inc()
			return nil, fmt.Errorf("stage %s: %w", s.name, err)
		}
		p.metrics.StageDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}

	res.FinishedAt = domain.Now()
	p.done.Store(true)
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.logger.Info("pipeline complete",
		"district_weeks", len(res.Rows),
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res, nil
}

func (p *Pipeline) resolveRegions(in *Inputs, res *Result) error {
	streams := []struct {
		stream domain.Stream
		rows   *[]domain.RawRow
	}{
		{domain.StreamEnrolment, &in.Enrolment},
		{domain.StreamDemographic, &in.Demographic},
		{domain.StreamBiometric, &in.Biometric},
	}
	for _, s := range streams {
		resolved, report := domain.CanonicalizeRegions(*s.rows, in.Reference, s.stream)
		*s.rows = resolved
		report.Log(p.logger)
		p.metrics.UnresolvedPincodes.WithLabelValues(string(s.stream)).Add(float64(report.UnresolvedPins))
		res.Resolution = append(res.Resolution, report)
	}
	return nil
}

func (p *Pipeline) aggregateWeekly(in Inputs, res *Result) error {
	rows, report := analytics.AggregateWeekly(in.Enrolment, in.Demographic, in.Biometric, p.opts.WeekAnchor)
	if len(rows) == 0 {
		return errors.New("no valid rows to aggregate")
	}
	for stream, n := range report.DroppedInvalidDates {
		if n > 0 {
			p.logger.Warn("rows excluded from bucketing", "stream", stream, "invalid_dates", n)
		}
		p.metrics.InvalidDates.WithLabelValues(string(stream)).Add(float64(n))
	}
	p.logger.Info("weekly aggregation",
		"district_weeks", report.DistrictWeeks,
		"districts", report.Districts,
		"weeks", report.Weeks,
	)
	p.metrics.DistrictWeeks.Set(float64(report.DistrictWeeks))
	res.Rows = rows
	res.Aggregate = report
	return nil
}

func (p *Pipeline) estimateWeights(res *Result) error {
	res.Weights = analytics.EstimateWeights(res.Rows)
	p.logger.Info("weight estimation",
		"enrolment", res.Weights.Enrolment,
		"demographic", res.Weights.Demographic,
		"biometric", res.Weights.Biometric,
	)
	return nil
}

func (p *Pipeline) scoreSeverity(res *Result) error {
	analytics.ScoreSeverity(res.Rows, res.Weights)
	return nil
}

func (p *Pipeline) detectAnomalies(ctx context.Context, res *Result) error {
	err := analytics.DetectAnomalies(ctx, res.Rows, analytics.AnomalyOptions{
		Seed:          p.opts.AnomalySeed,
		Contamination: p.opts.Contamination,
		Workers:       p.opts.Workers,
	})
	if err != nil {
		return err
	}
	flagged := 0
	for _, dw := range res.Rows {
		if dw.IsAnomaly {
			flagged++
		}
	}
	p.metrics.AnomaliesFlagged.Add(float64(flagged))
	p.logger.Info("anomaly detection", "flagged", flagged, "rows", len(res.Rows))
	return nil
}

func (p *Pipeline) classifyTrends(res *Result) error {
	analytics.ClassifyTrends(res.Rows)
	return nil
}

func (p *Pipeline) annotate(res *Result) error {
	analytics.Annotate(res.Rows)
	return nil
}
