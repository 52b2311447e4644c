package interfaces

import (
	"context"
	"io"

	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/usecase/report"
)

// ReportUseCase is the report surface shared by the HTTP, MCP and CLI front ends
type ReportUseCase interface {
	// Generate creates a report from the latest sensor readings
	Generate(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error)

	// Get retrieves a stored report. It returns model.ErrNotFound if missing.
	Get(ctx context.Context, patientID string, reportID model.ReportID) (*model.StoredReport, error)

	// List retrieves a patient's reports, newest first
	List(ctx context.Context, patientID string) ([]*model.StoredReport, error)

	// Download writes the stored PDF to w
	Download(ctx context.Context, patientID string, reportID model.ReportID, w io.Writer) error

	// ExportIndex writes the patient's report list as an XLSX workbook to w
	ExportIndex(ctx context.Context, patientID string, w io.Writer) error
}

var _ ReportUseCase = (*report.UseCase)(nil)
