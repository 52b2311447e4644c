package report

import (
	"context"

	"github.com/rmts-health/rmts/pkg/model"
)

// List returns the patient's reports, newest first. No reports is an empty slice.
func (u *UseCase) List(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
	return u.repo.ListReports(ctx, patientID)
}
