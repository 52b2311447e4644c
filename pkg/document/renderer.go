// Package document renders clinical reports as paginated PDF documents.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rmts-health/rmts/pkg/model"
	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontRegular = "go-regular"
	fontBold    = "go-bold"

	margin       = 50.0
	footerOffset = 18.0
	metaWidth    = 230.0
	cellPadding  = 5.0

	// GeneratedAtLayout is the fixed locale form printed in the metadata block
	GeneratedAtLayout = "1/2/2006, 3:04:05 PM"
)

var (
	pageWidth    = gopdf.PageSizeA4.W
	pageHeight   = gopdf.PageSizeA4.H
	contentWidth = pageWidth - 2*margin
)

// Input is everything printed on a report
type Input struct {
	PatientID     string
	AppointmentID string
	// Patient is optional; missing profile fields print the missing marker
	Patient     *model.Patient
	Draft       *model.ReportDraft
	GeneratedAt time.Time
}

// Document is a fully rendered report
type Document struct {
	Bytes []byte
	Pages int
	// Footers holds the footer stamped on each page, in page order
	Footers []string
}

// Renderer lays out report documents
type Renderer struct {
	labels   *Labels
	location *time.Location
}

type Option func(*Renderer)

// WithLabels replaces the embedded label catalogue
func WithLabels(labels *Labels) Option {
	return func(r *Renderer) {
		r.labels = labels
	}
}

// WithLocation sets the time zone of the generation timestamp. Default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		r.location = loc
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		labels:   DefaultLabels(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Labels returns the catalogue in use
func (r *Renderer) Labels() *Labels {
	return r.labels
}

// Render lays out all sections, then stamps the page footers once the page count is
// known, and only then serializes the document.
func (r *Renderer) Render(input Input) (*Document, error) {
	if input.Draft == nil {
		return nil, goerr.New("report draft is required")
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        r.labels.Title,
		Subject:      input.PatientID,
		Creator:      "rmts",
		CreationDate: input.GeneratedAt,
	})

	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, goerr.Wrap(err, "failed to load regular font")
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, goerr.Wrap(err, "failed to load bold font")
	}

	l := &layout{pdf: pdf}
	l.newPage()

	steps := []struct {
		name string
		fn   func(*layout, Input) error
	}{
		{"header", r.writeHeader},
		{"patient facts", r.writeFacts},
		{"sensor table", r.writeSensorTable},
		{"narrative", r.writeNarrative},
	}
	for i, step := range steps {
		if i > 0 {
			l.separator()
		}
		if err := step.fn(l, input); err != nil {
			return nil, goerr.Wrap(err, "failed to render section", goerr.V("section", step.name))
		}
	}

	pages := pdf.GetNumberOfPages()
	footers, err := writeFooters(pdf, pages)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, goerr.Wrap(err, "failed to write PDF")
	}

	return &Document{Bytes: buf.Bytes(), Pages: pages, Footers: footers}, nil
}

func (r *Renderer) writeHeader(l *layout, input Input) error {
	top := l.y

	if err := l.pdf.SetFont(fontBold, "", 20); err != nil {
		return err
	}
	l.setTextGray(0)
	l.pdf.SetXY(margin, top)
	if err := l.pdf.Cell(nil, r.labels.Title); err != nil {
		return err
	}

	if err := l.pdf.SetFont(fontRegular, "", 11); err != nil {
		return err
	}
	l.setTextGray(90)
	l.pdf.SetXY(margin, top+28)
	if err := l.pdf.Cell(nil, r.labels.Subtitle); err != nil {
		return err
	}

	if err := l.pdf.SetFont(fontRegular, "", 9); err != nil {
		return err
	}
	l.setTextGray(40)
	const metaLineHeight = 14.0
	lines := r.metaLines(input)
	for i, line := range lines {
		l.pdf.SetXY(pageWidth-margin-metaWidth, top+float64(i)*metaLineHeight)
		rect := &gopdf.Rect{W: metaWidth, H: metaLineHeight}
		if err := l.pdf.CellWithOption(rect, line, gopdf.CellOption{Align: gopdf.Right | gopdf.Top}); err != nil {
			return err
		}
	}

	l.y = top + max(46, float64(len(lines))*metaLineHeight)
	l.setTextGray(0)
	return nil
}

func (r *Renderer) writeFacts(l *layout, input Input) error {
	if err := l.heading(r.labels.Headings.Patient); err != nil {
		return err
	}

	const keyWidth = 130.0
	const lineHeight = 14.0
	for _, f := range r.facts(input) {
		if err := l.pdf.SetFont(fontRegular, "", 10); err != nil {
			return err
		}
		lines, err := wrapText(l.pdf, f.Value, contentWidth-keyWidth)
		if err != nil {
			return err
		}
		l.ensureSpace(float64(len(lines)) * lineHeight)

		if err := l.pdf.SetFont(fontBold, "", 10); err != nil {
			return err
		}
		l.pdf.SetXY(margin, l.y)
		if err := l.pdf.Cell(nil, f.Key); err != nil {
			return err
		}

		if err := l.pdf.SetFont(fontRegular, "", 10); err != nil {
			return err
		}
		for _, line := range lines {
			l.pdf.SetXY(margin+keyWidth, l.y)
			if err := l.pdf.Cell(nil, line); err != nil {
				return err
			}
			l.y += lineHeight
		}
	}
	return nil
}

func (r *Renderer) writeSensorTable(l *layout, input Input) error {
	if err := l.heading(r.labels.Headings.Sensors); err != nil {
		return err
	}

	widths := []float64{70, 150, contentWidth - 220}
	header := tableRow{
		Stream:      r.labels.Table.Stream,
		Measurement: r.labels.Table.Measurement,
		Description: r.labels.Table.Description,
	}
	if err := l.tableRow(widths, header.cells(), true); err != nil {
		return err
	}
	for _, row := range r.sensorRows(&input.Draft.Summary) {
		if err := l.tableRow(widths, row.cells(), false); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeNarrative(l *layout, input Input) error {
	if err := l.heading(r.labels.Headings.Narrative); err != nil {
		return err
	}

	const lineHeight = 15.0
	if err := l.pdf.SetFont(fontRegular, "", 11); err != nil {
		return err
	}
	for i, paragraph := range splitParagraphs(input.Draft.NarrativeText) {
		if i > 0 {
			l.y += 8
		}
		lines, err := wrapText(l.pdf, paragraph, contentWidth)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if l.ensureSpace(lineHeight) {
				if err := l.pdf.SetFont(fontRegular, "", 11); err != nil {
					return err
				}
			}
			l.pdf.SetXY(margin, l.y)
			if err := l.pdf.Cell(nil, line); err != nil {
				return err
			}
			l.y += lineHeight
		}
	}
	return nil
}

type fact struct {
	Key   string
	Value string
}

func (r *Renderer) facts(input Input) []fact {
	p := input.Patient
	if p == nil {
		p = &model.Patient{}
	}
	source := r.labels.Source.Model
	if input.Draft.GeneratedVia != model.GeneratedViaModel {
		source = r.labels.Source.Fallback
	}

	return []fact{
		{r.labels.Facts.PatientID, input.PatientID},
		{r.labels.Facts.FullName, r.orMissing(p.FullName)},
		{r.labels.Facts.Email, r.orMissing(p.Email)},
		{r.labels.Facts.Phone, r.orMissing(p.PhoneNumber)},
		{r.labels.Facts.EmergencyContact, r.orMissing(p.EmergencyContact)},
		{r.labels.Facts.Glove, r.orMissing(p.GloveID)},
		{r.labels.Facts.Source, source},
	}
}

func (r *Renderer) metaLines(input Input) []string {
	appointment := input.AppointmentID
	if appointment == "" {
		appointment = r.labels.NoAppointment
	}
	return []string{
		r.labels.Meta.Patient + " " + input.PatientID,
		r.labels.Meta.Appointment + " " + appointment,
		r.labels.Meta.Generated + " " + input.GeneratedAt.In(r.location).Format(GeneratedAtLayout),
	}
}

type tableRow struct {
	Stream      string
	Measurement string
	Description string
}

func (t tableRow) cells() []string {
	return []string{t.Stream, t.Measurement, t.Description}
}

// sensorRows returns one row per stream in fixed order
func (r *Renderer) sensorRows(s *model.SensorSnapshot) []tableRow {
	streams := r.labels.Streams

	motion := r.labels.Missing
	if fields := s.Motion.Fields(); len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Name+": "+f.Value.Format())
		}
		motion = strings.Join(parts, ", ")
	}

	return []tableRow{
		{streams.PPG.Name, r.measurement(s.HeartRateBpm, streams.PPG.Unit), streams.PPG.Description},
		{streams.MPU.Name, motion, streams.MPU.Description},
		{streams.Flex.Name, r.measurement(s.FlexBent, streams.Flex.Unit), streams.Flex.Description},
		{streams.FSR.Name, r.measurement(s.Pressure, streams.FSR.Unit), streams.FSR.Description},
	}
}

func (r *Renderer) measurement(v *model.Reading, unit string) string {
	if v == nil {
		return r.labels.Missing
	}
	if unit == "" || v.Kind == model.ReadingText {
		return v.Format()
	}
	return v.Format() + " " + unit
}

func (r *Renderer) orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return r.labels.Missing
	}
	return s
}

func footerText(page, total int) string {
	return fmt.Sprintf("page %d / %d", page, total)
}

func writeFooters(pdf *gopdf.GoPdf, total int) ([]string, error) {
	footers := make([]string, 0, total)
	for page := 1; page <= total; page++ {
		if err := pdf.SetPage(page); err != nil {
			return nil, goerr.Wrap(err, "failed to select page", goerr.V("page", page))
		}
		if err := pdf.SetFont(fontRegular, "", 9); err != nil {
			return nil, goerr.Wrap(err, "failed to set footer font")
		}
		pdf.SetTextColor(110, 110, 110)

		text := footerText(page, total)
		width, err := pdf.MeasureTextWidth(text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to measure footer")
		}
		pdf.SetXY((pageWidth-width)/2, pageHeight-margin+footerOffset)
		if err := pdf.Cell(nil, text); err != nil {
			return nil, goerr.Wrap(err, "failed to write footer", goerr.V("page", page))
		}
		footers = append(footers, text)
	}
	return footers, nil
}

// splitParagraphs treats every non-blank line as a paragraph
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}

// wrapText breaks text on word boundaries to fit width using the current font. Words
// wider than a full line are split by character.
func wrapText(pdf *gopdf.GoPdf, text string, width float64) ([]string, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}, nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		w, err := pdf.MeasureTextWidth(candidate)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to measure text")
		}
		if w <= width {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		ww, err := pdf.MeasureTextWidth(word)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to measure text")
		}
		if ww <= width {
			current = word
			continue
		}
		pieces, err := pdf.SplitText(word, width)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to split long word")
		}
		if len(pieces) > 0 {
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}
