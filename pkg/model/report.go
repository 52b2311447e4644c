package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrInvalidInput is returned when a required input is missing or malformed
	ErrInvalidInput = goerr.New("invalid input")

	// ErrNotFound is returned when a patient-scoped document does not exist
	ErrNotFound = goerr.New("not found")
)

const (
	// ReportLanguage is the language tag stored with every report
	ReportLanguage = "en"

	// ReportFormatVersion is bumped when the PDF layout or metadata shape changes
	ReportFormatVersion = 1

	// TimestampLayout matches the ISO-8601 form produced by JavaScript toISOString
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

type ReportID string

// GeneratedVia tells whether the narrative came from a language model or the template
type GeneratedVia string

const (
	GeneratedViaModel    GeneratedVia = "model"
	GeneratedViaFallback GeneratedVia = "fallback"
)

// ReportDraft is the in-memory result of narrative composition
type ReportDraft struct {
	NarrativeText string
	Summary       SensorSnapshot
	GeneratedVia  GeneratedVia
}

// StoredReport is the persisted report metadata, scoped under
// patients/{PatientID}/reports/{ID}
type StoredReport struct {
	ID            ReportID
	PatientID     string
	ReportURL     string
	ObjectKey     string
	AppointmentID *string
	CreatedAt     *time.Time
	Language      string
	FormatVersion int
	GeneratedVia  GeneratedVia
	Summary       SensorSnapshot
}

// FormatTimestamp normalizes a resolved timestamp to TimestampLayout in UTC. Unresolved
// timestamps yield nil.
func FormatTimestamp(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(TimestampLayout)
	return &s
}

// NormalizeTimestamp accepts a raw document value and returns the resolved time, or nil
// when the value is a pending server timestamp or anything other than a time.
func NormalizeTimestamp(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		return t
	default:
		return nil
	}
}

type storedReportJSON struct {
	ID            ReportID       `json:"id"`
	PatientID     string         `json:"patientId"`
	ReportURL     string         `json:"reportUrl"`
	ObjectKey     string         `json:"objectKey,omitempty"`
	AppointmentID *string        `json:"appointmentId"`
	CreatedAt     *string        `json:"createdAt"`
	Language      string         `json:"language"`
	FormatVersion int            `json:"formatVersion"`
	GeneratedVia  GeneratedVia   `json:"generatedVia,omitempty"`
	Summary       SensorSnapshot `json:"summary"`
}

func (r StoredReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(storedReportJSON{
		ID:            r.ID,
		PatientID:     r.PatientID,
		ReportURL:     r.ReportURL,
		ObjectKey:     r.ObjectKey,
		AppointmentID: r.AppointmentID,
		CreatedAt:     FormatTimestamp(r.CreatedAt),
		Language:      r.Language,
		FormatVersion: r.FormatVersion,
		GeneratedVia:  r.GeneratedVia,
		Summary:       r.Summary,
	})
}

func (r *StoredReport) UnmarshalJSON(data []byte) error {
	var raw storedReportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = StoredReport{
		ID:            raw.ID,
		PatientID:     raw.PatientID,
		ReportURL:     raw.ReportURL,
		ObjectKey:     raw.ObjectKey,
		AppointmentID: raw.AppointmentID,
		Language:      raw.Language,
		FormatVersion: raw.FormatVersion,
		GeneratedVia:  raw.GeneratedVia,
		Summary:       raw.Summary,
	}
	if raw.CreatedAt != nil {
		t, err := time.Parse(TimestampLayout, *raw.CreatedAt)
		if err != nil {
			return goerr.Wrap(err, "invalid createdAt", goerr.V("createdAt", *raw.CreatedAt))
		}
		r.CreatedAt = &t
	}
	return nil
}

// StoredReportFromMap decodes report document data. Missing or unexpected values
// fall back to their zero state rather than failing.
func StoredReportFromMap(patientID string, id ReportID, data map[string]any) *StoredReport {
	report := &StoredReport{
		ID:        id,
		PatientID: patientID,
		CreatedAt: NormalizeTimestamp(data["createdAt"]),
	}

	report.ReportURL, _ = data["reportUrl"].(string)
	report.ObjectKey, _ = data["objectKey"].(string)
	report.Language, _ = data["language"].(string)
	if via, ok := data["generatedVia"].(string); ok {
		report.GeneratedVia = GeneratedVia(via)
	}
	if appt, ok := data["appointmentId"].(string); ok && appt != "" {
		report.AppointmentID = &appt
	}
	switch v := data["formatVersion"].(type) {
	case int64:
		report.FormatVersion = int(v)
	case int:
		report.FormatVersion = v
	case float64:
		report.FormatVersion = int(v)
	}
	if summary, ok := data["summary"].(map[string]any); ok {
		report.Summary = SnapshotFromMap(summary)
	}

	return report
}
