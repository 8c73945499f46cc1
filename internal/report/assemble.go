package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inspectline/internal/catalog"
	"inspectline/internal/measure"
	"inspectline/internal/record"
)

// ErrNoIdentifier is returned when report assembly is attempted before the
// header identifier is filled in.
var ErrNoIdentifier = errors.New("report requires a non-empty identifier")

// item is one unit fed to the grouping algorithm: a sentence plus the images
// attached to it.
type item struct {
	text   string
	images []*record.ImageRef
}

// assembler carries the document-wide figure counter.
type assembler struct {
	blocks  []Block
	figureN int
}

// Assemble walks the record and emits the full document block stream.
// Missing image files degrade to inline placeholder paragraphs; assembly
// never fails on them.
func Assemble(rec *record.Record) ([]Block, error) {
	if rec.Header.Identifier == "" {
		return nil, ErrNoIdentifier
	}
	a := &assembler{}
	a.add(Heading{Level: 1, Text: fmt.Sprintf("Inspection Report %s", rec.Header.Identifier)})
	a.headerTable(rec.Header)
	for _, unit := range rec.Equipment {
		a.add(Heading{Level: 2, Text: unit.Name()})
		for _, sec := range unit.Sections {
			a.add(Heading{Level: 3, Text: sec.Def.Title})
			switch sec.Def.Behavior {
			case catalog.MeasurementTest:
				a.measurementSection(sec)
			default:
				a.componentSection(sec)
			}
		}
		a.summaryTable(unit)
	}
	return a.blocks, nil
}

func (a *assembler) add(b Block) { a.blocks = append(a.blocks, b) }

func (a *assembler) headerTable(h record.Header) {
	rows := [][]Text{}
	appendRow := func(label, value string) {
		if value != "" {
			rows = append(rows, []Text{plain(label), plain(value)})
		}
	}
	appendRow("Identifier", h.Identifier)
	appendRow("Inspection Date", h.InspectionDate)
	appendRow("Received Date", h.ReceivedDate)
	appendRow("Model", h.Model)
	appendRow("Serial", h.Serial)
	appendRow("Customer", h.Customer)
	appendRow("Contact", h.Contact)
	appendRow("Inspector", h.Inspector)
	appendRow("Company", h.Company)
	a.add(Table{Header: []string{"Field", "Value"}, Rows: rows})
}

// figure emits a captioned figure for a reference, or an inline placeholder
// paragraph when the file has gone missing.
func (a *assembler) figure(ref *record.ImageRef) {
	path := ref.Source
	if path == "" || !fileExists(path) {
		name := ref.Stored
		if name == "" {
			name = filepath.Base(path)
		}
		a.add(Paragraph{Text: plain(fmt.Sprintf("[Image unavailable: %s]", name))})
		return
	}
	a.figureN++
	label := filepath.Base(path)
	label = strings.TrimSuffix(label, filepath.Ext(label))
	a.add(Figure{Path: path, Caption: fmt.Sprintf("Figure %d: %s", a.figureN, label)})
}

func (a *assembler) figures(refs []*record.ImageRef) {
	for _, ref := range refs {
		a.figure(ref)
	}
}

// grouped applies the paragraph grouping rule: consecutive items without
// images concatenate into one space-joined paragraph; an item with images is
// flushed as its own paragraph followed by its figures. Any pending group is
// flushed before an image item and at the end.
func (a *assembler) grouped(items []item) {
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			a.add(Paragraph{Text: plain(strings.Join(pending, " "))})
			pending = nil
		}
	}
	for _, it := range items {
		if len(it.images) == 0 {
			pending = append(pending, it.text)
			continue
		}
		flush()
		a.add(Paragraph{Text: plain(it.text)})
		a.figures(it.images)
	}
	flush()
}

// patternItems builds the ordered item list for a selected pattern: each
// selected observation, followed by its active sub-observations. A
// sub-observation only applies while its parent observation is selected.
func patternItems(sec *record.Section, pattern string) []item {
	def, ok := sec.Def.Lookup(pattern)
	if !ok {
		return nil
	}
	st, ok := sec.Observations[pattern]
	if !ok {
		return nil
	}
	var items []item
	for _, obs := range st.Selected {
		items = append(items, item{text: obs, images: st.ObsImages[obs]})
		if len(def.SubObservations[obs]) == 0 {
			continue
		}
		for _, sub := range st.SubSelected[obs] {
			items = append(items, item{text: sub, images: st.ObsImages[sub]})
		}
	}
	return items
}

func inlineCustomItems(entries []*record.CustomEntry) []item {
	var items []item
	for _, e := range entries {
		items = append(items, item{text: e.Text, images: e.Images})
	}
	return items
}

func (a *assembler) componentSection(sec *record.Section) {
	def := sec.Def
	selected := sec.Selected

	// A lone terminal status pattern short-circuits the whole section: its
	// single sentence, its images, nothing else.
	if len(selected) == 1 {
		if p, ok := def.Lookup(selected[0]); ok && p.TerminalStatus() && len(sec.Custom) == 0 {
			a.add(Paragraph{Text: plain(p.Observations[0])})
			if st, ok := sec.Observations[selected[0]]; ok {
				a.figures(st.PatternImages)
			}
			a.figures(sec.Images)
			return
		}
	}

	inlineCustomsUsed := false
	for _, pattern := range selected {
		p, ok := def.Lookup(pattern)
		if !ok {
			continue
		}
		// The model accepts a terminal pattern alongside real findings. Its
		// no-issue sentence would contradict them, so it is dropped from the
		// narrative.
		if p.TerminalStatus() {
			continue
		}
		if pattern != def.StatusNotOK {
			a.add(Heading{Level: 4, Text: pattern})
		}
		items := patternItems(sec, pattern)
		if pattern == def.StatusNotOK && def.Custom == catalog.CustomInline {
			items = append(items, inlineCustomItems(sec.Custom)...)
			inlineCustomsUsed = true
		}
		if len(items) == 0 && !p.TerminalStatus() {
			a.add(Paragraph{Text: plain(fallbackSentence(def.Title))})
		} else {
			a.grouped(items)
		}
		if st, ok := sec.Observations[pattern]; ok {
			a.figures(st.PatternImages)
		}
	}

	// Custom entries outside a status container: named ones render like
	// patterns of their own, inline ones get one more grouping run.
	if def.Custom == catalog.CustomNamed {
		for _, entry := range sec.Custom {
			a.add(Heading{Level: 4, Text: entry.Name})
			var items []item
			for _, obs := range entry.Observations {
				items = append(items, item{text: obs})
			}
			if len(items) == 0 {
				a.add(Paragraph{Text: plain(fallbackSentence(def.Title))})
			} else {
				a.grouped(items)
			}
			a.figures(entry.Images)
		}
	} else if !inlineCustomsUsed && len(sec.Custom) > 0 {
		a.grouped(inlineCustomItems(sec.Custom))
	}

	if def.Behavior == catalog.SpecializedTest {
		a.specializedMetrics(sec)
	}

	if sec.Notes != "" {
		a.add(Heading{Level: 4, Text: "Additional Notes"})
		a.add(Paragraph{Text: plain(sec.Notes)})
	}
	a.figures(sec.Images)
}

func fallbackSentence(sectionTitle string) string {
	return fmt.Sprintf("An issue was noted with the %s, but no further detail was recorded.",
		strings.ToLower(sectionTitle))
}

// specializedMetrics reports the optional readings of a specialized test as
// plain labeled sentences.
func (a *assembler) specializedMetrics(sec *record.Section) {
	for _, m := range sec.Def.Metrics {
		raw := sec.Measurements[m.Key]
		if raw == "" {
			continue
		}
		if v, ok := measure.ExtractNumber(raw); ok {
			a.add(Paragraph{Text: plain(fmt.Sprintf("%s measured at %s %s.", m.Label, trimFloat(v), m.Unit))})
		}
		a.figures(sec.MetricImages[m.Key])
	}
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
