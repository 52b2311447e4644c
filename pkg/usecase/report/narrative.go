package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/adapter"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/rmts-health/rmts/pkg/utils/logging"
)

//go:embed prompt/system.md
var systemPrompt string

//go:embed prompt/report.md
var reportPromptRaw string

var reportPromptTmpl = template.Must(template.New("report").Parse(reportPromptRaw))

const (
	narrativeMaxTokens   = 800
	narrativeTemperature = 0.2
)

// Composer writes the narrative section of a report. The language model is optional;
// any generation failure is replaced by a deterministic template.
type Composer struct {
	llm     adapter.LLM
	timeout time.Duration
	missing string
}

// ComposerOption configures a Composer
type ComposerOption func(*Composer)

// WithTimeout bounds a single language model call
func WithTimeout(d time.Duration) ComposerOption {
	return func(c *Composer) {
		c.timeout = d
	}
}

// WithMissingMarker sets the text printed in place of absent values
func WithMissingMarker(marker string) ComposerOption {
	return func(c *Composer) {
		c.missing = marker
	}
}

// NewComposer creates a Composer. A nil llm always yields the fallback narrative.
func NewComposer(llm adapter.LLM, opts ...ComposerOption) *Composer {
	c := &Composer{
		llm:     llm,
		timeout: DefaultLLMTimeout,
		missing: "N/A",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose never fails. The returned draft tells whether the model produced the text.
func (c *Composer) Compose(ctx context.Context, snapshot *model.SensorSnapshot) *model.ReportDraft {
	if snapshot == nil {
		snapshot = &model.SensorSnapshot{}
	}

	text, err := c.generate(ctx, snapshot)
	if err == nil {
		return &model.ReportDraft{
			NarrativeText: text,
			Summary:       *snapshot,
			GeneratedVia:  model.GeneratedViaModel,
		}
	}

	logging.From(ctx).Warn("narrative generation failed, using fallback", "error", err)
	return &model.ReportDraft{
		NarrativeText: c.Fallback(snapshot),
		Summary:       *snapshot,
		GeneratedVia:  model.GeneratedViaFallback,
	}
}

func (c *Composer) generate(ctx context.Context, snapshot *model.SensorSnapshot) (string, error) {
	if c.llm == nil {
		return "", goerr.New("no language model configured")
	}

	prompt, err := c.buildPrompt(snapshot)
	if err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.llm.GenerateText(ctx, adapter.TextRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   narrativeMaxTokens,
		Temperature: narrativeTemperature,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate narrative")
	}

	text := cleanNarrative(raw)
	if text == "" {
		return "", goerr.New("empty narrative", goerr.V("raw", raw))
	}
	return text, nil
}

func (c *Composer) buildPrompt(snapshot *model.SensorSnapshot) (string, error) {
	motion, ok := snapshot.CompactMotion()
	if !ok {
		motion = c.missing
	}

	var buf bytes.Buffer
	if err := reportPromptTmpl.Execute(&buf, struct {
		HeartRate string
		Motion    string
		Flex      string
		Pressure  string
		Missing   string
	}{
		HeartRate: c.value(snapshot.HeartRateBpm),
		Motion:    motion,
		Flex:      c.value(snapshot.FlexBent),
		Pressure:  c.value(snapshot.Pressure),
		Missing:   c.missing,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to build narrative prompt")
	}
	return buf.String(), nil
}

// Fallback builds the template narrative. The missing marker only appears where a
// value is absent.
func (c *Composer) Fallback(snapshot *model.SensorSnapshot) string {
	heartRate := c.missing
	if snapshot.HeartRateBpm != nil {
		heartRate = snapshot.HeartRateBpm.Format() + " bpm"
	}

	motion := c.missing
	if fields := snapshot.Motion.Fields(); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Name+" "+f.Value.Format())
		}
		motion = strings.Join(parts, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sensor observations. The latest heart rate reading is %s. ", heartRate)
	fmt.Fprintf(&b, "The motion sensor summary is %s. ", motion)
	fmt.Fprintf(&b, "The finger flex state is %s. ", c.value(snapshot.FlexBent))
	fmt.Fprintf(&b, "The grip pressure reading is %s.", c.value(snapshot.Pressure))
	b.WriteString("\n\n")
	b.WriteString("Summary. This narrative was assembled automatically from the latest stored readings " +
		"without language model assistance. Streams without a recent record are marked as unavailable. " +
		"The values above should be reviewed by a clinician together with the sensor table.")
	return b.String()
}

func (c *Composer) value(r *model.Reading) string {
	if r == nil {
		return c.missing
	}
	return r.Format()
}

var (
	leadingMarker = regexp.MustCompile(`^\s*(#{1,6}\s+|[-*+•]\s+|\d+[.)]\s+|>\s*)`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
	emphasis      = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")
)

// cleanNarrative removes markup a model may add despite instructions
func cleanNarrative(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = leadingMarker.ReplaceAllString(line, "")
		lines[i] = strings.TrimSpace(emphasis.Replace(line))
	}
	text := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}
