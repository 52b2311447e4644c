package report

import (
	"context"

	"github.com/rmts-health/rmts/pkg/model"
)

// Get returns a stored report. Unknown ids yield model.ErrNotFound.
func (u *UseCase) Get(ctx context.Context, patientID string, reportID model.ReportID) (*model.StoredReport, error) {
	return u.repo.GetReport(ctx, patientID, reportID)
}
