package report_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inspectline/internal/catalog"
	"inspectline/internal/record"
	"inspectline/internal/report"
)

func newRecord(t *testing.T) *record.Record {
	t.Helper()
	rec := record.New()
	rec.Header.Identifier = "JOB-77"
	return rec
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("bytes-"+name), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// sectionBlocks assembles the record and returns the blocks emitted between
// the section's heading and the next heading of equal or lower level.
func sectionBlocks(t *testing.T, rec *record.Record, title string) []report.Block {
	t.Helper()
	blocks, err := report.Assemble(rec)
	if err != nil {
		t.Fatal(err)
	}
	start := -1
	level := 0
	for i, b := range blocks {
		h, ok := b.(report.Heading)
		if !ok {
			continue
		}
		if start < 0 && h.Text == title {
			start = i + 1
			level = h.Level
			continue
		}
		if start >= 0 && h.Level <= level {
			return blocks[start:i]
		}
	}
	if start < 0 {
		t.Fatalf("no heading %q in %v", title, blocks)
	}
	return blocks[start:]
}

func paragraphTexts(blocks []report.Block) []string {
	var out []string
	for _, b := range blocks {
		if p, ok := b.(report.Paragraph); ok {
			out = append(out, p.Text.String())
		}
	}
	return out
}

func TestAssembleRequiresIdentifier(t *testing.T) {
	rec := record.New()
	rec.AddEquipmentUnit(catalog.Motor)
	_, err := report.Assemble(rec)
	if !errors.Is(err, report.ErrNoIdentifier) {
		t.Fatalf("err = %v, want ErrNoIdentifier", err)
	}
}

func TestTerminalPatternShortCircuits(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)
	housing := unit.Section("Housing")
	if err := rec.SelectPattern(housing, catalog.PatternNoIssues); err != nil {
		t.Fatal(err)
	}
	blocks := sectionBlocks(t, rec, "Housing")
	if len(blocks) != 1 {
		t.Fatalf("blocks = %#v, want single paragraph", blocks)
	}
	p, ok := blocks[0].(report.Paragraph)
	if !ok || p.Text.String() != "No issues detected." {
		t.Fatalf("block = %#v, want the terminal sentence", blocks[0])
	}
}

func TestGroupingAlgorithm(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)
	bearings := unit.Section("Bearings")
	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	obs := bearings.Def.Patterns[catalog.PatternStatusNotOK].Observations
	a, b, c, d := obs[0], obs[1], obs[2], obs[3]
	for _, o := range []string{a, b, c, d} {
		if err := rec.SetObservationSelected(bearings, catalog.PatternStatusNotOK, o, true); err != nil {
			t.Fatal(err)
		}
	}
	imgX := writeImage(t, "x.jpg")
	imgY := writeImage(t, "y.jpg")
	if _, err := rec.AddObservationImage(bearings, catalog.PatternStatusNotOK, b, imgX); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.AddObservationImage(bearings, catalog.PatternStatusNotOK, d, imgY); err != nil {
		t.Fatal(err)
	}

	blocks := sectionBlocks(t, rec, "Bearings")
	want := []string{"para:" + a, "para:" + b, "fig:" + imgX, "para:" + c, "para:" + d, "fig:" + imgY}
	var got []string
	for _, blk := range blocks {
		switch v := blk.(type) {
		case report.Paragraph:
			got = append(got, "para:"+v.Text.String())
		case report.Figure:
			got = append(got, "fig:"+v.Path)
		default:
			t.Fatalf("unexpected block %#v", blk)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("blocks:\n got %q\nwant %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("block %d:\n got %q\nwant %q", i, got[i], want[i])
		}
	}
}

func TestConsecutivePlainItemsConcatenate(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)
	bearings := unit.Section("Bearings")
	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	obs := bearings.Def.Patterns[catalog.PatternStatusNotOK].Observations
	for _, o := range obs[:3] {
		if err := rec.SetObservationSelected(bearings, catalog.PatternStatusNotOK, o, true); err != nil {
			t.Fatal(err)
		}
	}
	blocks := sectionBlocks(t, rec, "Bearings")
	paras := paragraphTexts(blocks)
	if len(paras) != 1 || paras[0] != strings.Join(obs[:3], " ") {
		t.Fatalf("paragraphs = %q, want one space-joined paragraph", paras)
	}
}

func TestFallbackSentenceForDetaillessStatus(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)
	bearings := unit.Section("Bearings")
	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	blocks := sectionBlocks(t, rec, "Bearings")
	paras := paragraphTexts(blocks)
	if len(paras) != 1 || !strings.Contains(paras[0], "no further detail was recorded") {
		t.Fatalf("paragraphs = %q, want the fallback sentence", paras)
	}
}

func TestFigureNumberingIsDocumentWide(t *testing.T) {
	rec := newRecord(t)
	img1 := writeImage(t, "one.jpg")
	img2 := writeImage(t, "two.jpg")

	m := rec.AddEquipmentUnit(catalog.Motor)
	if _, err := rec.AddSectionImage(m.Section("Housing"), img1); err != nil {
		t.Fatal(err)
	}
	c := rec.AddEquipmentUnit(catalog.Compressor)
	if _, err := rec.AddSectionImage(c.Section("Housing"), img2); err != nil {
		t.Fatal(err)
	}

	blocks, err := report.Assemble(rec)
	if err != nil {
		t.Fatal(err)
	}
	var captions []string
	for _, b := range blocks {
		if f, ok := b.(report.Figure); ok {
			captions = append(captions, f.Caption)
		}
	}
	if len(captions) != 2 ||
		!strings.HasPrefix(captions[0], "Figure 1: ") ||
		!strings.HasPrefix(captions[1], "Figure 2: ") {
		t.Fatalf("captions = %q, want document-wide Figure 1, Figure 2", captions)
	}
}

func TestMissingImageBecomesPlaceholder(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)
	housing := unit.Section("Housing")
	img := writeImage(t, "vanish.jpg")
	if _, err := rec.AddSectionImage(housing, img); err != nil {
		t.Fatal(err)
	}
	os.Remove(img)

	blocks := sectionBlocks(t, rec, "Housing")
	for _, b := range blocks {
		if _, ok := b.(report.Figure); ok {
			t.Fatal("missing image still emitted as figure")
		}
	}
	paras := paragraphTexts(blocks)
	found := false
	for _, p := range paras {
		if strings.Contains(p, "Image unavailable") {
			found = true
		}
	}
	if !found {
		t.Fatalf("paragraphs = %q, want an unavailable-image placeholder", paras)
	}
}

func TestMeasurementSentences(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)
	tests := unit.Section("Motor Tests")
	set := func(key, val string) {
		t.Helper()
		if err := rec.SetMeasurement(tests, key, val); err != nil {
			t.Fatal(err)
		}
	}
	set(catalog.MetricAudio, "83.5 dB")
	set(catalog.MetricRPM, "1400")
	set(catalog.MetricVibration, "1.1 mm/s")
	set(catalog.MetricTemperature, "90 F")
	set(catalog.MetricResAB, "2.1")
	set(catalog.MetricResBC, "2.2")
	set(catalog.MetricResCA, "2.15")
	set(catalog.MetricResSC, "4.4")
	set(catalog.MetricResSR, "6.6")

	paras := paragraphTexts(sectionBlocks(t, rec, "Motor Tests"))
	joined := strings.Join(paras, "\n")
	for _, want := range []string{
		"83.5 dB, exceeding the 72 dB acceptable limit",
		"classified as Fair (unacceptable)",
		"90 \u00b0F, within the 95 \u00b0F acceptable limit",
		"Resistance A-B 2.1 \u03a9",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("measurement output missing %q in:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "Start-Common") {
		t.Errorf("five-wire readings reported while toggle off:\n%s", joined)
	}

	tests.FiveWire = true
	joined = strings.Join(paragraphTexts(sectionBlocks(t, rec, "Motor Tests")), "\n")
	if !strings.Contains(joined, "Resistance Start-Common 4.4 \u03a9") ||
		!strings.Contains(joined, "Resistance Start-Run 6.6 \u03a9") {
		t.Errorf("five-wire readings missing:\n%s", joined)
	}
}

func TestMeasurementMissingValues(t *testing.T) {
	rec := newRecord(t)
	rec.AddEquipmentUnit(catalog.Motor)
	paras := paragraphTexts(sectionBlocks(t, rec, "Motor Tests"))
	joined := strings.Join(paras, "\n")
	for _, want := range []string{
		"Audio level was not measured.",
		"could not be classified",
		"Operating temperature was not measured.",
		"Winding resistance was not measured.",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing-value output lacks %q in:\n%s", want, joined)
		}
	}
}

func TestSummaryTableAccumulators(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Motor)

	housing := unit.Section("Housing")
	if err := rec.SelectPattern(housing, "Corrosion"); err != nil {
		t.Fatal(err)
	}
	obs := housing.Def.Patterns["Corrosion"].Observations
	for _, o := range obs[:2] {
		if err := rec.SetObservationSelected(housing, "Corrosion", o, true); err != nil {
			t.Fatal(err)
		}
	}
	rec.AddCustomEntry(housing, record.CustomEntry{Text: "Gouge near lifting eye."})

	// Bearings: NOT OK with no detail -> status-only cell.
	bearings := unit.Section("Bearings")
	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}

	blocks, err := report.Assemble(rec)
	if err != nil {
		t.Fatal(err)
	}
	var tables []report.Table
	for _, b := range blocks {
		if tbl, ok := b.(report.Table); ok {
			tables = append(tables, tbl)
		}
	}
	// Header-fields table plus one summary table.
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	summary := tables[1]
	if len(summary.Header) != 2 || len(summary.Rows) != 1 {
		t.Fatalf("summary shape %v / %d rows", summary.Header, len(summary.Rows))
	}

	issueCell := summary.Rows[0][0]
	if !strings.Contains(issueCell.String(), "3 Issue(s): ") {
		t.Fatalf("issue cell %q, want a 3 Issue(s) prefix", issueCell.String())
	}
	bold := false
	for _, r := range issueCell {
		if r.Bold && strings.Contains(r.Text, "Issue(s)") {
			bold = true
		}
	}
	if !bold {
		t.Fatalf("issue count prefix not bold: %#v", issueCell)
	}

	statusCell := summary.Rows[0][1]
	if !strings.Contains(statusCell.String(), "Status: NOT OK") {
		t.Fatalf("status cell %q, want status text", statusCell.String())
	}
	if strings.Contains(statusCell.String(), "Issue(s)") {
		t.Fatalf("status-only cell must not carry an issue count: %q", statusCell.String())
	}
}

func TestSummaryTableNoFindings(t *testing.T) {
	rec := newRecord(t)
	unit := rec.AddEquipmentUnit(catalog.Valve)
	body := unit.Section("Body")
	if err := rec.SelectPattern(body, catalog.PatternNoIssues); err != nil {
		t.Fatal(err)
	}
	blocks, err := report.Assemble(rec)
	if err != nil {
		t.Fatal(err)
	}
	var summary *report.Table
	for _, b := range blocks {
		if tbl, ok := b.(report.Table); ok {
			summary = &tbl
		}
	}
	if summary == nil {
		t.Fatal("no summary table emitted")
	}
	for _, cell := range summary.Rows[0] {
		if cell.String() != "No issues detected." {
			t.Fatalf("cell %q, want %q", cell.String(), "No issues detected.")
		}
	}
}
