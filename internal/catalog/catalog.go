// Package catalog holds the fixed, read-only defect pattern dictionaries and
// section definitions for each equipment kind. The data never changes at
// runtime; everything here is lookup only.
package catalog

// EquipmentKind identifies a class of inspected equipment.
type EquipmentKind string

const (
	Motor      EquipmentKind = "motor"
	Compressor EquipmentKind = "compressor"
	Coil       EquipmentKind = "coil"
	Valve      EquipmentKind = "valve"
)

// Kinds lists all equipment kinds in display order.
func Kinds() []EquipmentKind {
	return []EquipmentKind{Motor, Compressor, Coil, Valve}
}

// DisplayName returns the human-readable name of a kind.
func (k EquipmentKind) DisplayName() string {
	switch k {
	case Motor:
		return "Motor"
	case Compressor:
		return "Compressor"
	case Coil:
		return "Coil"
	case Valve:
		return "Valve"
	}
	return string(k)
}

// KindFromString resolves a stored kind string.
func KindFromString(s string) (EquipmentKind, bool) {
	switch EquipmentKind(s) {
	case Motor, Compressor, Coil, Valve:
		return EquipmentKind(s), true
	}
	return "", false
}

// SectionBehavior tags how a section drives selection and reporting. The tag
// is part of the section definition; it is never inferred from the title.
type SectionBehavior int

const (
	// Standard sections offer a pattern catalog with no gating.
	Standard SectionBehavior = iota
	// StatusGated sections gate all finer selection behind a binary
	// OK / NOT OK status choice.
	StatusGated
	// MeasurementTest sections hold numeric free-text readings.
	MeasurementTest
	// SpecializedTest sections combine fixed finding groups with optional
	// measurements.
	SpecializedTest
)

// CustomShape fixes which custom-entry form a section accepts.
type CustomShape int

const (
	// CustomInline entries are free text plus images.
	CustomInline CustomShape = iota
	// CustomNamed entries are a named pattern with its own observations.
	CustomNamed
)

// PatternDefinition is one named defect category and its canonical sentences.
// SubObservations, when present, are keyed by the parent observation that must
// be selected for them to apply.
type PatternDefinition struct {
	Observations    []string
	SubObservations map[string][]string
}

// TerminalStatus reports whether selecting the pattern requires no further
// choice: exactly one observation and no sub-observations.
func (p PatternDefinition) TerminalStatus() bool {
	return len(p.Observations) == 1 && len(p.SubObservations) == 0
}

// MetricDef is one numeric reading slot in a measurement or specialized
// section.
type MetricDef struct {
	Key   string
	Label string
	Unit  string
}

// SectionDef describes one section of an equipment unit.
type SectionDef struct {
	Title    string
	Behavior SectionBehavior
	Custom   CustomShape

	// PatternOrder fixes display and report order; Patterns is the catalog.
	PatternOrder []string
	Patterns     map[string]PatternDefinition

	// StatusOK / StatusNotOK name the mutually exclusive status patterns of
	// a StatusGated section. Empty otherwise.
	StatusOK    string
	StatusNotOK string

	// Metrics lists the numeric reading slots of MeasurementTest and
	// SpecializedTest sections, in report order.
	Metrics []MetricDef
}

// Lookup returns the pattern definition for a name within the section.
func (s SectionDef) Lookup(pattern string) (PatternDefinition, bool) {
	def, ok := s.Patterns[pattern]
	return def, ok
}

// Metric returns the metric definition for a key, if the section has one.
func (s SectionDef) Metric(key string) (MetricDef, bool) {
	for _, m := range s.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return MetricDef{}, false
}

// SummaryGroup is one column of a unit's summary table: a label and the
// section titles whose findings aggregate into that column.
type SummaryGroup struct {
	Title    string
	Sections []string
}

// SectionsFor returns the ordered section definitions for an equipment kind.
func SectionsFor(kind EquipmentKind) []SectionDef {
	return sectionsByKind[kind]
}

// SummaryGroupsFor returns the fixed summary-table column groupings for a kind.
func SummaryGroupsFor(kind EquipmentKind) []SummaryGroup {
	return summaryGroupsByKind[kind]
}
