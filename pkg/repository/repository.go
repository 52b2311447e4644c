package repository

import (
	"context"

	"github.com/rmts-health/rmts/pkg/model"
)

// Repository defines the document store operations used by report generation and
// retrieval. All documents are scoped under patients/{patientID}.
type Repository interface {
	// GetLatestSensorRecord returns the newest record of a sensor stream ordered by its
	// ingestion timestamp. It returns nil without error when the stream is empty.
	GetLatestSensorRecord(ctx context.Context, patientID string, stream model.SensorStream) (*model.SensorRecord, error)

	// GetPatient retrieves the patient profile. It returns model.ErrNotFound if missing.
	GetPatient(ctx context.Context, patientID string) (*model.Patient, error)

	// PutReport writes report metadata with a store-assigned id and creation timestamp
	// and returns the document as read back after the write.
	PutReport(ctx context.Context, patientID string, record map[string]any) (*model.StoredReport, error)

	// GetReport retrieves a report by ID. It returns model.ErrNotFound if missing.
	GetReport(ctx context.Context, patientID string, id model.ReportID) (*model.StoredReport, error)

	// ListReports retrieves reports of a patient, newest first
	ListReports(ctx context.Context, patientID string) ([]*model.StoredReport, error)
}
