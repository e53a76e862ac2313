package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

// DistrictWeekHeader is the column contract of the primary output file, in
// the order downstream consumers expect.
var DistrictWeekHeader = []string{
	"week", "state", "district",
	"risk_category", "severity_score", "severity_trend",
	"dominant_signal",
	"enrol_total", "demo_total", "bio_total",
	"enrol_age_0_5", "enrol_age_5_17", "enrol_age_18_plus",
	"demo_age_5_17", "demo_age_18_plus",
	"bio_age_5_17", "bio_age_18_plus",
	"is_anomaly", "data_quality_flag", "data_completeness",
}

// WriteDistrictWeeks writes the final table to path, creating parent
// directories as needed.
func WriteDistrictWeeks(path string, rows []*domain.DistrictWeek) error {
	return writeCSV(path, DistrictWeekHeader, func(w *csv.Writer) error {
		for _, dw := range rows {
			rec := []string{
				dw.Week, dw.State, dw.District,
				string(dw.RiskCategory),
				formatFloat(dw.SeverityScore),
				string(dw.Trend),
				string(dw.DominantSignal),
				strconv.FormatInt(dw.EnrolTotal, 10),
				strconv.FormatInt(dw.DemoTotal, 10),
				strconv.FormatInt(dw.BioTotal, 10),
				strconv.FormatInt(dw.EnrolAge0To5, 10),
				strconv.FormatInt(dw.EnrolAge5To17, 10),
				strconv.FormatInt(dw.EnrolAge18Plus, 10),
				strconv.FormatInt(dw.DemoAge5To17, 10),
				strconv.FormatInt(dw.DemoAge18Plus, 10),
				strconv.FormatInt(dw.BioAge5To17, 10),
				strconv.FormatInt(dw.BioAge18Plus, 10),
				strconv.FormatBool(dw.IsAnomaly),
				string(dw.QualityFlag),
				formatFloat(dw.DataCompleteness),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteWeights writes the weight-justification audit artifact.
func WriteWeights(path string, w domain.WeightVector) error {
	return writeCSV(path, []string{"metric", "weight", "rationale"}, func(cw *csv.Writer) error {
		entries := []struct {
			metric string
			weight float64
		}{
			{string(domain.StreamEnrolment), w.Enrolment},
			{string(domain.StreamDemographic), w.Demographic},
			{string(domain.StreamBiometric), w.Biometric},
		}
		for _, e := range entries {
			if err := cw.Write([]string{e.metric, formatFloat(e.weight), w.Rationale}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, header []string, body func(*csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	err = w.Write(header)
	if err == nil {
		err = body(w)
	}
	if err == nil {
		w.Flush()
		err = w.Error()
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
