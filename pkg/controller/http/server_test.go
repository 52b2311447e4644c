package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	server "github.com/rmts-health/rmts/pkg/controller/http"
	"github.com/rmts-health/rmts/pkg/model"
)

type mockUseCase struct {
	generateFunc func(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error)
	getFunc      func(ctx context.Context, patientID string, reportID model.ReportID) (*model.StoredReport, error)
	listFunc     func(ctx context.Context, patientID string) ([]*model.StoredReport, error)
	downloadFunc func(ctx context.Context, patientID string, reportID model.ReportID, w io.Writer) error
	exportFunc   func(ctx context.Context, patientID string, w io.Writer) error
}

func (m *mockUseCase) Generate(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, patientID, appointmentID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUseCase) Get(ctx context.Context, patientID string, reportID model.ReportID) (*model.StoredReport, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, patientID, reportID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUseCase) List(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, patientID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUseCase) Download(ctx context.Context, patientID string, reportID model.ReportID, w io.Writer) error {
	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, patientID, reportID, w)
	}
	return errors.New("not implemented")
}

func (m *mockUseCase) ExportIndex(ctx context.Context, patientID string, w io.Writer) error {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, patientID, w)
	}
	return errors.New("not implemented")
}

func storedReport(id string, createdAt time.Time) *model.StoredReport {
	appt := "A1"
	return &model.StoredReport{
		ID:            model.ReportID(id),
		PatientID:     "P1",
		ReportURL:     "https://example.com/" + id,
		AppointmentID: &appt,
		CreatedAt:     &createdAt,
		Language:      model.ReportLanguage,
		FormatVersion: model.ReportFormatVersion,
		GeneratedVia:  model.GeneratedViaFallback,
		Summary:       model.SensorSnapshot{HeartRateBpm: model.IntReading(72)},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGenerateReport(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 1, 4, 5, 123_000_000, time.UTC)

	t.Run("success", func(t *testing.T) {
		var gotPatient, gotAppointment string
		uc := &mockUseCase{generateFunc: func(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error) {
			gotPatient, gotAppointment = patientID, appointmentID
			return storedReport("R1", createdAt), nil
		}}

		rec := do(t, server.New(uc), http.MethodPost, "/generate_report", `{"patientId":"P1","appointmentId":"A1"}`)
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, gotPatient, "P1")
		gt.Equal(t, gotAppointment, "A1")

		body := decode(t, rec)
		gt.Equal(t, body["id"], any("R1"))
		gt.Equal(t, body["reportUrl"], any("https://example.com/R1"))
		gt.Equal(t, body["appointmentId"], any("A1"))
		gt.Equal(t, body["language"], any("en"))
		gt.Equal(t, body["createdAt"], any("2025-03-01T01:04:05.123Z"))
	})

	t.Run("missing patientId", func(t *testing.T) {
		calls := 0
		uc := &mockUseCase{generateFunc: func(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error) {
			calls++
			return nil, goerr.Wrap(model.ErrInvalidInput, "patientId is required")
		}}

		for _, body := range []string{`{}`, `{"appointmentId":"A1"}`, `not json`, ""} {
			rec := do(t, server.New(uc), http.MethodPost, "/generate_report", body)
			gt.Equal(t, rec.Code, http.StatusBadRequest)
			gt.Equal(t, strings.TrimSpace(rec.Body.String()), `{"error":"patientId is required"}`)
		}
		gt.Equal(t, calls, 4)
	})

	t.Run("generation failure", func(t *testing.T) {
		uc := &mockUseCase{generateFunc: func(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error) {
			return nil, goerr.New("failed to generate report", goerr.V("secret", "upstream detail"))
		}}

		rec := do(t, server.New(uc), http.MethodPost, "/generate_report", `{"patientId":"P1"}`)
		gt.Equal(t, rec.Code, http.StatusInternalServerError)
		gt.Equal(t, strings.TrimSpace(rec.Body.String()), `{"error":"Failed to generate report"}`)
	})

	t.Run("unresolved timestamp and no appointment", func(t *testing.T) {
		uc := &mockUseCase{generateFunc: func(ctx context.Context, patientID, appointmentID string) (*model.StoredReport, error) {
			return &model.StoredReport{ID: "R2", PatientID: patientID, Language: "en"}, nil
		}}

		rec := do(t, server.New(uc), http.MethodPost, "/generate_report", `{"patientId":"P1"}`)
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Body.String()).Contains(`"appointmentId":null`)
		gt.S(t, rec.Body.String()).Contains(`"createdAt":null`)
	})
}

func TestGetReport(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 1, 4, 5, 0, time.UTC)
	uc := &mockUseCase{getFunc: func(ctx context.Context, patientID string, reportID model.ReportID) (*model.StoredReport, error) {
		switch reportID {
		case "R1":
			return storedReport("R1", createdAt), nil
		case "broken":
			return nil, errors.New("unavailable")
		}
		return nil, goerr.Wrap(model.ErrNotFound, "report not found")
	}}
	h := server.New(uc)

	t.Run("found", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/reports/P1/R1", "")
		gt.Equal(t, rec.Code, http.StatusOK)
		body := decode(t, rec)
		gt.Equal(t, body["id"], any("R1"))
		gt.Equal(t, body["createdAt"], any("2025-03-01T01:04:05.000Z"))
		gt.Equal(t, body["summary"].(map[string]any)["heartRateBpm"], any(float64(72)))
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/reports/P1/never-written", "")
		gt.Equal(t, rec.Code, http.StatusNotFound)
		gt.Equal(t, strings.TrimSpace(rec.Body.String()), `{"error":"Report not found"}`)
	})

	t.Run("server error", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/reports/P1/broken", "")
		gt.Equal(t, rec.Code, http.StatusInternalServerError)
	})
}

func TestListReports(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		uc := &mockUseCase{listFunc: func(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
			return nil, nil
		}}
		rec := do(t, server.New(uc), http.MethodGet, "/api/reports/patient/P1", "")
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, strings.TrimSpace(rec.Body.String()), "[]")
	})

	t.Run("ordered", func(t *testing.T) {
		base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		uc := &mockUseCase{listFunc: func(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
			return []*model.StoredReport{
				storedReport("R2", base.Add(time.Hour)),
				storedReport("R1", base),
			}, nil
		}}
		rec := do(t, server.New(uc), http.MethodGet, "/api/reports/patient/P1", "")
		gt.Equal(t, rec.Code, http.StatusOK)

		var reports []map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
		gt.A(t, reports).Length(2)
		gt.Equal(t, reports[0]["id"], any("R2"))
	})

	t.Run("failure", func(t *testing.T) {
		uc := &mockUseCase{listFunc: func(ctx context.Context, patientID string) ([]*model.StoredReport, error) {
			return nil, errors.New("unavailable")
		}}
		rec := do(t, server.New(uc), http.MethodGet, "/api/reports/patient/P1", "")
		gt.Equal(t, rec.Code, http.StatusInternalServerError)
	})
}

func TestDownloadReport(t *testing.T) {
	uc := &mockUseCase{downloadFunc: func(ctx context.Context, patientID string, reportID model.ReportID, w io.Writer) error {
		if reportID != "R1" {
			return goerr.Wrap(model.ErrNotFound, "report not found")
		}
		_, err := io.WriteString(w, "%PDF-1.4 test")
		return err
	}}
	h := server.New(uc)

	rec := do(t, h, http.MethodGet, "/reports/P1/R1/document", "")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Header().Get("Content-Type"), "application/pdf")
	gt.Equal(t, rec.Body.String(), "%PDF-1.4 test")

	rec = do(t, h, http.MethodGet, "/reports/P1/R9/document", "")
	gt.Equal(t, rec.Code, http.StatusNotFound)
}

func TestExportIndex(t *testing.T) {
	uc := &mockUseCase{exportFunc: func(ctx context.Context, patientID string, w io.Writer) error {
		_, err := io.WriteString(w, "xlsx:"+patientID)
		return err
	}}

	rec := do(t, server.New(uc), http.MethodGet, "/api/reports/patient/P1/index.xlsx", "")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Body.String(), "xlsx:P1")
	gt.S(t, rec.Header().Get("Content-Disposition")).Contains("P1_reports.xlsx")
}

func TestCORS(t *testing.T) {
	h := server.New(&mockUseCase{}, server.WithCORSOrigin("http://localhost:3000"))

	rec := do(t, h, http.MethodOptions, "/generate_report", "")
	gt.Equal(t, rec.Code, http.StatusNoContent)
	gt.Equal(t, rec.Header().Get("Access-Control-Allow-Origin"), "http://localhost:3000")
	gt.Equal(t, rec.Header().Get("Access-Control-Allow-Credentials"), "true")

	rec = do(t, server.New(&mockUseCase{}), http.MethodGet, "/health", "")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Header().Get("Access-Control-Allow-Origin"), "")
}

func TestRecoverPanic(t *testing.T) {
	uc := &mockUseCase{getFunc: func(ctx context.Context, patientID string, reportID model.ReportID) (*model.StoredReport, error) {
		panic("boom")
	}}
	rec := do(t, server.New(uc), http.MethodGet, "/reports/P1/R1", "")
	gt.Equal(t, rec.Code, http.StatusInternalServerError)
}
