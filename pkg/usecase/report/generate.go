package report

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/document"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/utils/logging"
)

// Generate builds a report for the patient from the latest sensor readings, stores the
// document and returns the stored record as read back from the repository. The blob is
// always uploaded before its metadata is written.
func (u *UseCase) Generate(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "patientId is required")
	}
	appointmentID = strings.TrimSpace(appointmentID)

	logger := logging.From(ctx).With("patient_id", patientID)
	wrap := func(err error) error {
		return goerr.Wrap(err, "failed to generate report",
			goerr.V("patient_id", patientID),
			goerr.V("appointment_id", appointmentID))
	}

	snapshot, patient, err := u.fetchSnapshot(ctx, patientID)
	if err != nil {
		return nil, wrap(err)
	}

	draft := u.composer.Compose(ctx, snapshot)
	logger.Debug("narrative composed", "generated_via", draft.GeneratedVia)

	doc, err := u.renderer.Render(document.Input{
		PatientID:     patientID,
		AppointmentID: appointmentID,
		Patient:       patient,
		Draft:         draft,
		GeneratedAt:   u.now(),
	})
	if err != nil {
		return nil, wrap(err)
	}

	obj, err := u.upload(ctx, patientID, doc.Bytes)
	if err != nil {
		return nil, wrap(err)
	}
	logger.Debug("report uploaded", "object_key", obj.Key, "pages", doc.Pages, "bytes", len(doc.Bytes))

	report, err := u.saveMetadata(ctx, patientID, appointmentID, obj, draft)
	if err != nil {
		return nil, wrap(err)
	}

	logger.Info("report generated",
		"report_id", report.ID,
		"generated_via", report.GeneratedVia,
		"pages", doc.Pages)

	return report, nil
}
