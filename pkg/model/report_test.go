package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/gt"
	"github.com/rmts-health/rmts/pkg/model"
)

func TestReadingFormat(t *testing.T) {
	testCases := []struct {
		name   string
		input  any
		expect string
	}{
		{"int64", int64(72), "72"},
		{"int", 60, "60"},
		{"float", 12.5, "12.50"},
		{"float rounding", 3.14159, "3.14"},
		{"text", "bent", "bent"},
		{"bool", true, "true"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := model.ReadingFrom(tc.input)
			gt.V(t, r).NotNil()
			gt.Equal(t, r.Format(), tc.expect)
		})
	}

	t.Run("unsupported is absent", func(t *testing.T) {
		gt.V(t, model.ReadingFrom(nil)).Nil()
		gt.V(t, model.ReadingFrom([]int{1})).Nil()
	})
}

func TestSensorRecordFromMap(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := model.SensorRecordFromMap(map[string]any{
		"bpm":       int64(72),
		"pressure":  1.25,
		"timestamp": ts,
		"other":     "ignored",
	})

	gt.Equal(t, rec.BPM.Format(), "72")
	gt.Equal(t, rec.Pressure.Format(), "1.25")
	gt.V(t, rec.Bent).Nil()
	gt.V(t, rec.Timestamp).NotNil()
	gt.True(t, rec.Timestamp.Equal(ts))

	gt.V(t, model.SensorRecordFromMap(nil)).Nil()
}

func TestSnapshotMapRoundTrip(t *testing.T) {
	snapshot := model.SensorSnapshot{
		HeartRateBpm: model.IntReading(72),
		Motion: &model.MotionSummary{
			State:  model.TextReading("active"),
			Raised: model.IntReading(3),
		},
		Pressure: model.FloatReading(4.5),
	}

	m := snapshot.Map()
	gt.V(t, m["flexBent"]).Nil()

	parsed := model.SnapshotFromMap(m)
	gt.Equal(t, parsed.HeartRateBpm.Format(), "72")
	gt.Equal(t, parsed.Motion.State.Format(), "active")
	gt.Equal(t, parsed.Motion.Raised.Format(), "3")
	gt.V(t, parsed.Motion.Lowered).Nil()
	gt.V(t, parsed.FlexBent).Nil()
	gt.Equal(t, parsed.Pressure.Format(), "4.50")
}

func TestCompactMotion(t *testing.T) {
	t.Run("only populated fields", func(t *testing.T) {
		s := model.SensorSnapshot{Motion: &model.MotionSummary{
			Result:  model.TextReading("ok"),
			Lowered: model.IntReading(2),
		}}
		text, ok := s.CompactMotion()
		gt.True(t, ok)
		gt.Equal(t, text, `{"result":"ok","lowered":2}`)
	})

	t.Run("empty summary is absent", func(t *testing.T) {
		s := model.SensorSnapshot{Motion: &model.MotionSummary{}}
		_, ok := s.CompactMotion()
		gt.False(t, ok)
		gt.V(t, s.Map()["motionSummary"]).Nil()
	})
}

func TestStoredReportJSON(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 4, 5, 123000000, time.FixedZone("JST", 9*3600))
	report := model.StoredReport{
		ID:            "r1",
		PatientID:     "P1",
		ReportURL:     "https://example.com/r1",
		CreatedAt:     &created,
		Language:      model.ReportLanguage,
		FormatVersion: model.ReportFormatVersion,
		GeneratedVia:  model.GeneratedViaFallback,
		Summary:       model.SensorSnapshot{HeartRateBpm: model.IntReading(72)},
	}

	data, err := json.Marshal(report)
	gt.NoError(t, err)

	var raw map[string]any
	gt.NoError(t, json.Unmarshal(data, &raw))
	gt.V(t, raw["createdAt"]).Equal(any("2025-03-01T01:04:05.123Z"))
	gt.V(t, raw["appointmentId"]).Nil()
	gt.V(t, raw["summary"]).Equal(any(map[string]any{"heartRateBpm": float64(72)}))

	var decoded model.StoredReport
	gt.NoError(t, json.Unmarshal(data, &decoded))
	gt.True(t, decoded.CreatedAt.Equal(created))
	gt.Equal(t, decoded.Summary.HeartRateBpm.Format(), "72")
}

func TestStoredReportPendingTimestamp(t *testing.T) {
	report := model.StoredReportFromMap("P1", "r1", map[string]any{
		"reportUrl": "https://example.com",
		"createdAt": firestore.ServerTimestamp,
	})
	gt.V(t, report.CreatedAt).Nil()

	data, err := json.Marshal(report)
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains(`"createdAt":null`)
}

func TestStoredReportFromMap(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	report := model.StoredReportFromMap("P1", "abc", map[string]any{
		"reportUrl":     "https://example.com/x",
		"objectKey":     "reports/P1/P1_1.pdf",
		"appointmentId": "A1",
		"createdAt":     created,
		"language":      "en",
		"formatVersion": int64(1),
		"generatedVia":  "model",
		"summary": map[string]any{
			"flexBent": "bent",
		},
	})

	gt.Equal(t, report.ID, model.ReportID("abc"))
	gt.Equal(t, *report.AppointmentID, "A1")
	gt.Equal(t, report.FormatVersion, 1)
	gt.Equal(t, report.GeneratedVia, model.GeneratedViaModel)
	gt.Equal(t, report.Summary.FlexBent.Format(), "bent")
	gt.Equal(t, *model.FormatTimestamp(report.CreatedAt), "2025-01-02T03:04:05.000Z")
}
