package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/utils/logging"
)

const maxRequestBody = 1 << 20

type generateReportRequest struct {
	PatientID     string `json:"patientId"`
	AppointmentID string `json:"appointmentId"`
}

type generateReportResponse struct {
	ID            model.ReportID `json:"id"`
	ReportURL     string         `json:"reportUrl"`
	AppointmentID *string        `json:"appointmentId"`
	Language      string         `json:"language"`
	CreatedAt     *string        `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// An unreadable body is treated like one without patientId
	var req generateReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		logging.From(ctx).Debug("failed to decode request body", "error", err)
	}

	report, err := s.uc.Generate(ctx, req.PatientID, req.AppointmentID)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "patientId is required")
			return
		}
		logging.From(ctx).Error("failed to generate report", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	writeJSON(w, http.StatusOK, generateReportResponse{
		ID:            report.ID,
		ReportURL:     report.ReportURL,
		AppointmentID: report.AppointmentID,
		Language:      report.Language,
		CreatedAt:     model.FormatTimestamp(report.CreatedAt),
	})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := chi.URLParam(r, "patientId")
	reportID := model.ReportID(chi.URLParam(r, "reportId"))

	report, err := s.uc.Get(ctx, patientID, reportID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		logging.From(ctx).Error("failed to fetch report", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := chi.URLParam(r, "patientId")

	reports, err := s.uc.List(ctx, patientID)
	if err != nil {
		logging.From(ctx).Error("failed to list reports", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch reports")
		return
	}
	if reports == nil {
		reports = []*model.StoredReport{}
	}

	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) downloadReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := chi.URLParam(r, "patientId")
	reportID := model.ReportID(chi.URLParam(r, "reportId"))

	var buf bytes.Buffer
	if err := s.uc.Download(ctx, patientID, reportID, &buf); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		logging.From(ctx).Error("failed to download report", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+string(reportID)+`.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) exportIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := chi.URLParam(r, "patientId")

	var buf bytes.Buffer
	if err := s.uc.ExportIndex(ctx, patientID, &buf); err != nil {
		logging.From(ctx).Error("failed to export report index", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "Failed to export reports")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+patientID+`_reports.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}
