// Command ews runs the Aadhaar early-warning analytics pipeline over one
// batch of input CSVs and writes the district-week artifacts.
//
// Inputs, outputs, and sinks are configured through environment variables;
// see internal/config. The run is all-or-nothing: any stage failure exits
// non-zero with the originating stage in the error.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/csvio"
	httpadapter "github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/kafka"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/sqlite"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/xlsx"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/config"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/observability"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/pipeline"
)

const (
	outputTableFile   = "ews_weekly_district_enhanced.csv"
	outputWeightsFile = "weight_justification.csv"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := loadInputs(cfg, metrics)
	if err != nil {
		return err
	}

	anchor, err := cfg.Anchor()
	if err != nil {
		return err
	}

	p := pipeline.New(logger, metrics, pipeline.Options{
		WeekAnchor:    anchor,
		AnomalySeed:   cfg.AnomalySeed,
		Contamination: cfg.AnomalyContamination,
		Workers:       cfg.Workers,
	})

	var srv *httpadapter.Server
	if cfg.AdminEnabled {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	res, err := p.Run(ctx, in)
	if err != nil {
		return err
	}

	if err := writeOutputs(ctx, cfg, logger, res); err != nil {
		return err
	}

	if srv != nil {
		srv.SetSummary(httpadapter.RunSummary{
			DistrictWeeks: len(res.Rows),
			Weights:       res.Weights,
			FinishedAt:    res.FinishedAt,
		})
		// Keep the admin surface up for scraping until the operator stops us.
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("done", "output_dir", cfg.OutputDir)
	return nil
}

func loadInputs(cfg *config.Config, metrics *observability.Metrics) (pipeline.Inputs, error) {
	var in pipeline.Inputs
	var err error

	streams := []struct {
		stream domain.Stream
		path   string
		dest   *[]domain.RawRow
	}{
		{domain.StreamEnrolment, cfg.EnrolPath, &in.Enrolment},
		{domain.StreamDemographic, cfg.DemoPath, &in.Demographic},
		{domain.StreamBiometric, cfg.BioPath, &in.Biometric},
	}
	for _, s := range streams {
		*s.dest, err = csvio.ReadStream(s.path, s.stream)
		if err != nil {
			return pipeline.Inputs{}, err
		}
		metrics.RowsRead.WithLabelValues(string(s.stream)).Add(float64(len(*s.dest)))
	}

	in.Reference, err = csvio.ReadPincodeReference(cfg.PincodePath)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	return in, nil
}

func writeOutputs(ctx context.Context, cfg *config.Config, logger *slog.Logger, res *pipeline.Result) error {
	tablePath := filepath.Join(cfg.OutputDir, outputTableFile)
	if err := csvio.WriteDistrictWeeks(tablePath, res.Rows); err != nil {
		return err
	}
	logger.Info("wrote district-week table", "path", tablePath, "rows", len(res.Rows))

	weightsPath := filepath.Join(cfg.OutputDir, outputWeightsFile)
	if err := csvio.WriteWeights(weightsPath, res.Weights); err != nil {
		return err
	}
	logger.Info("wrote weight justification", "path", weightsPath)

	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveTable(ctx, res.Rows); err != nil {
			return err
		}
		logger.Info("saved district-week table", "sqlite", cfg.SQLitePath)
	}

	if cfg.XLSXPath != "" {
		if err := xlsx.WriteReport(cfg.XLSXPath, res.Rows, res.Weights); err != nil {
			return err
		}
		logger.Info("wrote audit workbook", "path", cfg.XLSXPath)
	}

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer writer.Close()
		if err := writer.PublishTable(ctx, res.Rows); err != nil {
			return err
		}
	}
	return nil
}
