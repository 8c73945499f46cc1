package record_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"inspectline/internal/catalog"
	"inspectline/internal/record"
)

func motorSection(t *testing.T, rec *record.Record, title string) (*record.EquipmentUnit, *record.Section) {
	t.Helper()
	unit := rec.AddEquipmentUnit(catalog.Motor)
	sec := unit.Section(title)
	if sec == nil {
		t.Fatalf("motor has no %q section", title)
	}
	return unit, sec
}

func TestOrdinalsStayDense(t *testing.T) {
	rec := record.New()
	m1 := rec.AddEquipmentUnit(catalog.Motor)
	m2 := rec.AddEquipmentUnit(catalog.Motor)
	c1 := rec.AddEquipmentUnit(catalog.Compressor)
	m3 := rec.AddEquipmentUnit(catalog.Motor)

	if m1.Ordinal != 1 || m2.Ordinal != 2 || m3.Ordinal != 3 {
		t.Fatalf("motor ordinals %d %d %d, want 1 2 3", m1.Ordinal, m2.Ordinal, m3.Ordinal)
	}
	if c1.Ordinal != 1 {
		t.Fatalf("compressor ordinal %d, want 1", c1.Ordinal)
	}

	rec.RemoveEquipmentUnit(m2)
	if m1.Ordinal != 1 || m3.Ordinal != 2 {
		t.Fatalf("after removal motor ordinals %d %d, want 1 2", m1.Ordinal, m3.Ordinal)
	}
	if c1.Ordinal != 1 {
		t.Fatalf("compressor renumbered unexpectedly to %d", c1.Ordinal)
	}

	m4 := rec.AddEquipmentUnit(catalog.Motor)
	if m4.Ordinal != 3 {
		t.Fatalf("new motor ordinal %d, want 3", m4.Ordinal)
	}
	seen := map[int]bool{}
	for _, u := range rec.Equipment {
		if u.Kind != catalog.Motor {
			continue
		}
		if seen[u.Ordinal] {
			t.Fatalf("duplicate motor ordinal %d", u.Ordinal)
		}
		seen[u.Ordinal] = true
	}
	for i := 1; i <= 3; i++ {
		if !seen[i] {
			t.Fatalf("missing motor ordinal %d", i)
		}
	}
}

func TestStatusExclusivity(t *testing.T) {
	rec := record.New()
	_, bearings := motorSection(t, rec, "Bearings")

	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	obs := bearings.Def.Patterns[catalog.PatternStatusNotOK].Observations[0]
	if err := rec.SetObservationSelected(bearings, catalog.PatternStatusNotOK, obs, true); err != nil {
		t.Fatal(err)
	}
	if bearings.Status() != record.StatusNotOK {
		t.Fatalf("status %v, want NotOK", bearings.Status())
	}

	// Selecting OK must force NOT OK off, but its data survives.
	if err := rec.SelectPattern(bearings, catalog.PatternStatusOK); err != nil {
		t.Fatal(err)
	}
	if bearings.Status() != record.StatusOK {
		t.Fatalf("status %v, want OK", bearings.Status())
	}
	if bearings.IsSelected(catalog.PatternStatusNotOK) {
		t.Fatal("both status patterns selected")
	}
	if got := bearings.State(catalog.PatternStatusNotOK).Selected; len(got) != 1 || got[0] != obs {
		t.Fatalf("NOT OK observation data lost: %v", got)
	}

	// And back again.
	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	if bearings.IsSelected(catalog.PatternStatusOK) {
		t.Fatal("both status patterns selected after flip back")
	}

	// Deselecting returns to Unset.
	if err := rec.DeselectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	if bearings.Status() != record.StatusUnset {
		t.Fatalf("status %v, want Unset", bearings.Status())
	}
}

func TestUnknownPatternRejected(t *testing.T) {
	rec := record.New()
	_, housing := motorSection(t, rec, "Housing")
	err := rec.SelectPattern(housing, "Gremlins")
	if !errors.Is(err, record.ErrUnknownPattern) {
		t.Fatalf("err = %v, want ErrUnknownPattern", err)
	}
	err = rec.SetObservationSelected(housing, "Corrosion", "not a sentence", true)
	if !errors.Is(err, record.ErrUnknownPattern) {
		t.Fatalf("err = %v, want ErrUnknownPattern", err)
	}
}

func TestMissingImageIsNoOp(t *testing.T) {
	rec := record.New()
	_, housing := motorSection(t, rec, "Housing")
	_, err := rec.AddSectionImage(housing, filepath.Join(t.TempDir(), "nope.jpg"))
	if !errors.Is(err, record.ErrImageNotFound) {
		t.Fatalf("err = %v, want ErrImageNotFound", err)
	}
	if len(housing.Images) != 0 {
		t.Fatal("failed image add mutated the section")
	}
}

func TestImageAttachment(t *testing.T) {
	rec := record.New()
	_, housing := motorSection(t, rec, "Housing")
	img := filepath.Join(t.TempDir(), "rust.jpg")
	if err := os.WriteFile(img, []byte("jpegbytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := rec.SelectPattern(housing, "Corrosion"); err != nil {
		t.Fatal(err)
	}
	obs := housing.Def.Patterns["Corrosion"].Observations[0]
	if err := rec.SetObservationSelected(housing, "Corrosion", obs, true); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.AddObservationImage(housing, "Corrosion", obs, img); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.AddPatternImage(housing, "Corrosion", img); err != nil {
		t.Fatal(err)
	}
	st := housing.State("Corrosion")
	if len(st.ObsImages[obs]) != 1 || len(st.PatternImages) != 1 {
		t.Fatalf("image counts obs=%d pattern=%d, want 1 1", len(st.ObsImages[obs]), len(st.PatternImages))
	}
}

func TestCustomEntries(t *testing.T) {
	rec := record.New()
	_, housing := motorSection(t, rec, "Housing")
	e1 := rec.AddCustomEntry(housing, record.CustomEntry{Text: "Paint overspray on nameplate."})
	e2 := rec.AddCustomEntry(housing, record.CustomEntry{Text: "Aftermarket drain plug fitted."})
	if e1.ID == "" || e2.ID == "" || e1.ID == e2.ID {
		t.Fatalf("custom entry IDs not unique: %q %q", e1.ID, e2.ID)
	}
	rec.RemoveCustomEntry(housing, e1.ID)
	if len(housing.Custom) != 1 || housing.Custom[0].ID != e2.ID {
		t.Fatalf("removal kept wrong entries: %v", housing.Custom)
	}
}

func TestSubObservationSelection(t *testing.T) {
	rec := record.New()
	_, bearings := motorSection(t, rec, "Bearings")
	def := bearings.Def.Patterns[catalog.PatternStatusNotOK]
	parent := def.Observations[0]
	sub := def.SubObservations[parent][0]

	if err := rec.SelectPattern(bearings, catalog.PatternStatusNotOK); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetSubObservationSelected(bearings, catalog.PatternStatusNotOK, parent, sub, true); err != nil {
		t.Fatal(err)
	}
	err := rec.SetSubObservationSelected(bearings, catalog.PatternStatusNotOK, parent, "made up", true)
	if !errors.Is(err, record.ErrUnknownPattern) {
		t.Fatalf("err = %v, want ErrUnknownPattern", err)
	}
	st := bearings.State(catalog.PatternStatusNotOK)
	if got := st.SubSelected[parent]; len(got) != 1 || got[0] != sub {
		t.Fatalf("sub selection %v, want [%q]", got, sub)
	}
}

func TestSetMeasurement(t *testing.T) {
	rec := record.New()
	_, tests := motorSection(t, rec, "Motor Tests")
	if err := rec.SetMeasurement(tests, catalog.MetricAudio, "83.5 dB"); err != nil {
		t.Fatal(err)
	}
	if err := rec.SetMeasurement(tests, "bogus", "1"); !errors.Is(err, record.ErrUnknownPattern) {
		t.Fatalf("err = %v, want ErrUnknownPattern", err)
	}
	if tests.Measurements[catalog.MetricAudio] != "83.5 dB" {
		t.Fatalf("measurement not stored: %v", tests.Measurements)
	}
}
