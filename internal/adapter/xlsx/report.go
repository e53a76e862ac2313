// Package xlsx writes the audit workbook: the district-week table plus the
// weight justification on a second sheet, for reviewers who work in Excel.
package xlsx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/adapter/csvio"
	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

const (
	sheetDistrictWeeks = "District Weeks"
	sheetWeights       = "Weights"
)

// WriteReport writes the workbook to path, creating parent directories as
// needed.
func WriteReport(path string, rows []*domain.DistrictWeek, w domain.WeightVector) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetDistrictWeeks); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if _, err := f.NewSheet(sheetWeights); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	header := make([]any, len(csvio.DistrictWeekHeader))
	for i, h := range csvio.DistrictWeekHeader {
		header[i] = h
	}
	if err := setRow(f, sheetDistrictWeeks, 1, header); err != nil {
		return err
	}
	for i, dw := range rows {
		row := []any{
			dw.Week, dw.State, dw.District,
			string(dw.RiskCategory), dw.SeverityScore, string(dw.Trend),
			string(dw.DominantSignal),
			dw.EnrolTotal, dw.DemoTotal, dw.BioTotal,
			dw.EnrolAge0To5, dw.EnrolAge5To17, dw.EnrolAge18Plus,
			dw.DemoAge5To17, dw.DemoAge18Plus,
			dw.BioAge5To17, dw.BioAge18Plus,
			dw.IsAnomaly, string(dw.QualityFlag), dw.DataCompleteness,
		}
		if err := setRow(f, sheetDistrictWeeks, i+2, row); err != nil {
			return err
		}
	}

	weightRows := [][]any{
		{"metric", "weight", "rationale"},
		{string(domain.StreamEnrolment), w.Enrolment, w.Rationale},
		{string(domain.StreamDemographic), w.Demographic, w.Rationale},
		{string(domain.StreamBiometric), w.Biometric, w.Rationale},
	}
	for i, row := range weightRows {
		if err := setRow(f, sheetWeights, i+1, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
