package document

import "github.com/rmts-health/rmts/pkg/model"

var (
	FooterText      = footerText
	SplitParagraphs = splitParagraphs
)

type (
	TableRow = tableRow
	Fact     = fact
)

func (r *Renderer) SensorRows(s *model.SensorSnapshot) []TableRow {
	return r.sensorRows(s)
}

func (r *Renderer) MetaLines(input Input) []string {
	return r.metaLines(input)
}

func (r *Renderer) Facts(input Input) []Fact {
	return r.facts(input)
}
