package report

import (
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reports"

var exportHeaders = []string{
	"Report ID",
	"Created At",
	"Appointment ID",
	"Narrative Source",
	"Heart Rate (bpm)",
	"Motion",
	"Flex",
	"Pressure",
	"Report URL",
}

var exportColumnWidths = []float64{24, 26, 20, 16, 16, 36, 12, 12, 60}

// ExportIndex writes the patient's report list as an XLSX workbook to w
func (u *UseCase) ExportIndex(ctx context.Context, patientID string, w io.Writer) error {
	reports, err := u.repo.ListReports(ctx, patientID)
	if err != nil {
		return err
	}

	f, err := buildIndexWorkbook(reports, u.renderer.Labels().Missing)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook", goerr.V("patient_id", patientID))
	}
	return nil
}

func buildIndexWorkbook(reports []*model.StoredReport, missing string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, goerr.Wrap(err, "failed to create sheet")
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, goerr.Wrap(err, "failed to delete default sheet")
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#EBEEF2"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, goerr.Wrap(err, "failed to create header style")
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, goerr.Wrap(err, "failed to convert coordinates")
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			f.Close()
			return nil, goerr.Wrap(err, "failed to set header", goerr.V("cell", cell))
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, goerr.Wrap(err, "failed to set header style")
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, goerr.Wrap(err, "failed to convert column number")
		}
		if err := f.SetColWidth(exportSheet, col, col, exportColumnWidths[i]); err != nil {
			f.Close()
			return nil, goerr.Wrap(err, "failed to set column width")
		}
	}

	for i, report := range reports {
		row := i + 2
		for j, value := range indexRow(report, missing) {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				f.Close()
				return nil, goerr.Wrap(err, "failed to convert coordinates")
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				f.Close()
				return nil, goerr.Wrap(err, "failed to set cell", goerr.V("cell", cell))
			}
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, goerr.Wrap(err, "failed to freeze header row")
	}

	return f, nil
}

func indexRow(report *model.StoredReport, missing string) []any {
	orMissing := func(r *model.Reading) any {
		if r == nil {
			return missing
		}
		return r.Value()
	}

	createdAt := missing
	if ts := model.FormatTimestamp(report.CreatedAt); ts != nil {
		createdAt = *ts
	}
	appointment := ""
	if report.AppointmentID != nil {
		appointment = *report.AppointmentID
	}
	motion := missing
	if fields := report.Summary.Motion.Fields(); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Name+"="+f.Value.Format())
		}
		motion = strings.Join(parts, " ")
	}

	return []any{
		string(report.ID),
		createdAt,
		appointment,
		string(report.GeneratedVia),
		orMissing(report.Summary.HeartRateBpm),
		motion,
		orMissing(report.Summary.FlexBent),
		orMissing(report.Summary.Pressure),
		report.ReportURL,
	}
}
