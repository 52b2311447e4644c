package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/rmts-health/rmts/pkg/utils/logging"
)

func TestNewLevels(t *testing.T) {
	testCases := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warning", false, false, true},
		{"ERROR", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(tc.level, buf)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message")

			out := buf.String()
			gt.Equal(t, strings.Contains(out, "debug message"), tc.wantDebug)
			gt.Equal(t, strings.Contains(out, "info message"), tc.wantInfo)
			gt.Equal(t, strings.Contains(out, "warn message"), tc.wantWarn)
			gt.S(t, out).Contains("error message")
		})
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf, logging.WithFormat("json"))

	logger.Info("report stored", "patient_id", "P1")

	var entry map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	gt.Equal(t, entry["msg"], "report stored")
	gt.Equal(t, entry["patient_id"], "P1")
}

func TestConsoleGoerrError(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf)

	err := goerr.New("upload failed", goerr.V("object_key", "reports/P1/x.pdf"))
	logger.Error("generation failed", "error", err)
	gt.S(t, buf.String()).Contains("upload failed")
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf).With("request_id", "req-1")
	ctx := logging.With(context.Background(), logger)

	gt.Equal(t, logging.From(ctx), logger)

	logging.From(ctx).Info("handled")
	gt.S(t, buf.String()).Contains("req-1")
}

func TestFromUsesDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	custom := logging.New("warn", buf)
	logging.SetDefault(custom)

	logger := logging.From(context.Background())
	gt.Equal(t, logger, custom)
	logger.Warn("from default")
	gt.S(t, buf.String()).Contains("from default")
}
