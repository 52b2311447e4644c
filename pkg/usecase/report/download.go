package report

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
)

// Download copies the stored PDF of a report to w
func (u *UseCase) Download(ctx context.Context, patientID string, reportID model.ReportID, w io.Writer) error {
	report, err := u.repo.GetReport(ctx, patientID, reportID)
	if err != nil {
		return err
	}

	key := report.ObjectKey
	if key == "" {
		var ok bool
		if key, ok = objectKeyFromURL(report.ReportURL); !ok {
			return goerr.New("report has no object key",
				goerr.V("report_id", reportID),
				goerr.V("report_url", report.ReportURL))
		}
	}

	r, err := u.storage.Get(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to open report object", goerr.V("report_id", reportID))
	}
	defer r.Close()

	if _, err := io.Copy(w, r); err != nil {
		return goerr.Wrap(err, "failed to copy report object",
			goerr.V("report_id", reportID),
			goerr.V("key", key))
	}
	return nil
}
