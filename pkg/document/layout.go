package document

import (
	"github.com/signintech/gopdf"
)

// layout tracks the vertical cursor and breaks pages when content would run into the
// bottom margin, which is reserved for the footer.
type layout struct {
	pdf *gopdf.GoPdf
	y   float64
}

func (l *layout) newPage() {
	l.pdf.AddPage()
	l.y = margin
}

// ensureSpace starts a new page if h does not fit on the current one. It reports
// whether a page break happened.
func (l *layout) ensureSpace(h float64) bool {
	if l.y+h <= pageHeight-margin {
		return false
	}
	l.newPage()
	return true
}

func (l *layout) setTextGray(v uint8) {
	l.pdf.SetTextColor(v, v, v)
}

func (l *layout) separator() {
	l.ensureSpace(24)
	l.y += 8
	l.pdf.SetStrokeColor(200, 200, 200)
	l.pdf.SetLineWidth(0.7)
	l.pdf.Line(margin, l.y, pageWidth-margin, l.y)
	l.y += 14
}

func (l *layout) heading(text string) error {
	// keep at least one line of body with its heading
	l.ensureSpace(40)
	if err := l.pdf.SetFont(fontBold, "", 13); err != nil {
		return err
	}
	l.setTextGray(20)
	l.pdf.SetXY(margin, l.y)
	if err := l.pdf.Cell(nil, text); err != nil {
		return err
	}
	l.setTextGray(0)
	l.y += 22
	return nil
}

func (l *layout) tableRow(widths []float64, cells []string, header bool) error {
	const lineHeight = 13.0
	family := fontRegular
	if header {
		family = fontBold
	}
	if err := l.pdf.SetFont(family, "", 10); err != nil {
		return err
	}

	wrapped := make([][]string, len(cells))
	rows := 1
	for i, cell := range cells {
		lines, err := wrapText(l.pdf, cell, widths[i]-2*cellPadding)
		if err != nil {
			return err
		}
		wrapped[i] = lines
		rows = max(rows, len(lines))
	}
	height := float64(rows)*lineHeight + 2*cellPadding

	if l.ensureSpace(height) {
		if err := l.pdf.SetFont(family, "", 10); err != nil {
			return err
		}
	}

	if header {
		l.pdf.SetFillColor(235, 238, 242)
		l.pdf.RectFromUpperLeftWithStyle(margin, l.y, contentWidth, height, "F")
	}
	l.setTextGray(0)

	x := margin
	for i, lines := range wrapped {
		for j, line := range lines {
			l.pdf.SetXY(x+cellPadding, l.y+cellPadding+float64(j)*lineHeight)
			if err := l.pdf.Cell(nil, line); err != nil {
				return err
			}
		}
		x += widths[i]
	}

	l.y += height
	l.pdf.SetStrokeColor(210, 210, 210)
	l.pdf.SetLineWidth(0.5)
	l.pdf.Line(margin, l.y, pageWidth-margin, l.y)
	return nil
}
