package report

import (
	"fmt"
	"strings"

	"inspectline/internal/catalog"
	"inspectline/internal/record"
)

// sectionFindings separates a section's contributions to the summary table.
// Status selections and issue detail live in different accumulators and the
// issue count never includes status entries.
type sectionFindings struct {
	statusOnly bool
	issues     []string
}

func collectFindings(sec *record.Section) sectionFindings {
	var f sectionFindings
	def := sec.Def
	for _, pattern := range sec.Selected {
		p, ok := def.Lookup(pattern)
		if !ok || p.TerminalStatus() {
			continue
		}
		items := patternItems(sec, pattern)
		if len(items) == 0 {
			if pattern != def.StatusNotOK {
				f.issues = append(f.issues, fallbackSentence(def.Title))
			} else if def.Custom != catalog.CustomInline || len(sec.Custom) == 0 {
				// NOT OK chosen with no detail anywhere: a status-only cell.
				f.statusOnly = true
			}
			continue
		}
		for _, it := range items {
			f.issues = append(f.issues, it.text)
		}
	}
	for _, entry := range sec.Custom {
		if def.Custom == catalog.CustomNamed {
			if len(entry.Observations) == 0 {
				f.issues = append(f.issues, fallbackSentence(def.Title))
				continue
			}
			f.issues = append(f.issues, entry.Observations...)
		} else if entry.Text != "" {
			f.issues = append(f.issues, entry.Text)
		}
	}
	return f
}

// summaryTable emits the per-unit findings table: one column per fixed
// section grouping, one data row with each group's aggregated cell.
func (a *assembler) summaryTable(unit *record.EquipmentUnit) {
	groups := catalog.SummaryGroupsFor(unit.Kind)
	if len(groups) == 0 {
		return
	}
	a.add(Heading{Level: 3, Text: "Summary"})
	header := make([]string, len(groups))
	row := make([]Text, len(groups))
	for i, g := range groups {
		header[i] = g.Title
		var statusRuns Text
		var issues []string
		for _, title := range g.Sections {
			sec := unit.Section(title)
			if sec == nil {
				continue
			}
			f := collectFindings(sec)
			if f.statusOnly {
				statusRuns = append(statusRuns,
					Run{Text: sec.Def.Title + ": ", Bold: true},
					Run{Text: "Status: NOT OK. "})
			}
			issues = append(issues, f.issues...)
		}
		cell := statusRuns
		if len(issues) > 0 {
			cell = append(cell,
				Run{Text: fmt.Sprintf("%d Issue(s): ", len(issues)), Bold: true},
				Run{Text: strings.Join(issues, " ")})
		}
		if len(cell) == 0 {
			cell = plain("No issues detected.")
		}
		row[i] = cell
	}
	a.add(Table{Header: header, Rows: [][]Text{row}})
}
