// Package record holds the in-memory inspection record: header fields,
// equipment units, sections, pattern selections, custom entries and image
// references. All mutation goes through Record methods; there is no undo log.
package record

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"inspectline/internal/catalog"
)

var (
	// ErrUnknownPattern is returned when a selection names a pattern the
	// section's catalog does not contain. This is a programmer error.
	ErrUnknownPattern = errors.New("unknown pattern")

	// ErrImageNotFound is returned when an image source path does not exist.
	// The record is left untouched; callers may ignore it.
	ErrImageNotFound = errors.New("image not found")

	// ErrUnknownSection is returned when an operation targets a section not
	// owned by the record.
	ErrUnknownSection = errors.New("unknown section")
)

// Header carries the free-text report header fields. The identifier must be
// non-empty before a report is generated; nothing else is enforced.
type Header struct {
	Identifier     string
	InspectionDate string
	ReceivedDate   string
	Model          string
	Serial         string
	Customer       string
	Contact        string
	Inspector      string
	Company        string
}

// Record is the root of the inspection model.
type Record struct {
	Header    Header
	Equipment []*EquipmentUnit
}

// New returns an empty record.
func New() *Record {
	return &Record{}
}

// EquipmentUnit is one inspected unit. Ordinals are dense (1..N) within a
// kind and renumbered on removal.
type EquipmentUnit struct {
	Kind     catalog.EquipmentKind
	Ordinal  int
	Sections []*Section
}

// Name returns the display name, e.g. "Motor 2".
func (u *EquipmentUnit) Name() string {
	return fmt.Sprintf("%s %d", u.Kind.DisplayName(), u.Ordinal)
}

// Section returns the unit's section with the given title.
func (u *EquipmentUnit) Section(title string) *Section {
	for _, s := range u.Sections {
		if s.Def.Title == title {
			return s
		}
	}
	return nil
}

// StatusValue is the tri-state of a status-gated section.
type StatusValue int

const (
	StatusUnset StatusValue = iota
	StatusOK
	StatusNotOK
)

// Section is one titled slice of an equipment unit. Selected keeps pattern
// names in selection order. Observations keeps per-pattern state; it survives
// deselection so re-selecting restores prior choices.
type Section struct {
	Def          catalog.SectionDef
	Selected     []string
	Observations map[string]*PatternState
	Custom       []*CustomEntry
	Notes        string
	Images       []*ImageRef

	// Measurement state (MeasurementTest / SpecializedTest sections).
	Measurements map[string]string
	MetricImages map[string][]*ImageRef
	FiveWire     bool
}

func newSection(def catalog.SectionDef) *Section {
	return &Section{
		Def:          def,
		Observations: map[string]*PatternState{},
		Measurements: map[string]string{},
		MetricImages: map[string][]*ImageRef{},
	}
}

// IsSelected reports whether the named pattern is currently selected.
func (s *Section) IsSelected(pattern string) bool {
	for _, name := range s.Selected {
		if name == pattern {
			return true
		}
	}
	return false
}

// Status reports the section's OK/NOT-OK state. At most one of the two status
// patterns is ever selected.
func (s *Section) Status() StatusValue {
	if s.Def.Behavior != catalog.StatusGated {
		return StatusUnset
	}
	if s.IsSelected(s.Def.StatusOK) {
		return StatusOK
	}
	if s.IsSelected(s.Def.StatusNotOK) {
		return StatusNotOK
	}
	return StatusUnset
}

// State returns the selection state for a pattern, creating it if needed.
func (s *Section) State(pattern string) *PatternState {
	st, ok := s.Observations[pattern]
	if !ok {
		st = &PatternState{
			SubSelected: map[string][]string{},
			ObsImages:   map[string][]*ImageRef{},
		}
		s.Observations[pattern] = st
	}
	return st
}

// PatternState holds the per-pattern selections: observations in selection
// order, dependent sub-observation selections keyed by parent, and images
// attached at observation or pattern level.
type PatternState struct {
	Selected      []string
	SubSelected   map[string][]string
	ObsImages     map[string][]*ImageRef
	PatternImages []*ImageRef
}

// CustomEntry is a user-authored addition outside the fixed catalog. Inline
// entries use Text; named entries use Name plus Observations. Which shape a
// section uses is fixed by its definition.
type CustomEntry struct {
	ID           string
	Name         string
	Text         string
	Observations []string
	Images       []*ImageRef
}

// ImageRef points at image bytes: a source path on disk plus the name the
// bytes are stored under inside the project's image store once saved.
// Identity is content equality, never path equality.
type ImageRef struct {
	Source string
	Stored string
}

// NewImageRef creates a reference for a source path that must exist.
func NewImageRef(source string) (*ImageRef, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, source)
	}
	return &ImageRef{Source: source}, nil
}

// AddEquipmentUnit appends a unit of the given kind with its full section
// list and the next dense ordinal for that kind.
func (r *Record) AddEquipmentUnit(kind catalog.EquipmentKind) *EquipmentUnit {
	ordinal := 0
	for _, u := range r.Equipment {
		if u.Kind == kind {
			ordinal = u.Ordinal
		}
	}
	unit := &EquipmentUnit{Kind: kind, Ordinal: ordinal + 1}
	for _, def := range catalog.SectionsFor(kind) {
		unit.Sections = append(unit.Sections, newSection(def))
	}
	r.Equipment = append(r.Equipment, unit)
	return unit
}

// RemoveEquipmentUnit removes the unit and renumbers remaining units of the
// same kind so ordinals stay dense starting at 1.
func (r *Record) RemoveEquipmentUnit(unit *EquipmentUnit) {
	kept := r.Equipment[:0]
	for _, u := range r.Equipment {
		if u != unit {
			kept = append(kept, u)
		}
	}
	r.Equipment = kept
	next := 1
	for _, u := range r.Equipment {
		if u.Kind == unit.Kind {
			u.Ordinal = next
			next++
		}
	}
}

// Unit returns the unit of a kind with the given ordinal.
func (r *Record) Unit(kind catalog.EquipmentKind, ordinal int) *EquipmentUnit {
	for _, u := range r.Equipment {
		if u.Kind == kind && u.Ordinal == ordinal {
			return u
		}
	}
	return nil
}

// owns reports whether the section belongs to this record.
func (r *Record) owns(sec *Section) bool {
	for _, u := range r.Equipment {
		for _, s := range u.Sections {
			if s == sec {
				return true
			}
		}
	}
	return false
}

// SelectPattern marks a pattern selected. For status-gated sections selecting
// one status pattern deselects the other; the deselected pattern's data is
// preserved but becomes logically inert.
func (r *Record) SelectPattern(sec *Section, pattern string) error {
	if !r.owns(sec) {
		return ErrUnknownSection
	}
	if _, ok := sec.Def.Lookup(pattern); !ok {
		return fmt.Errorf("%w: %q in section %q", ErrUnknownPattern, pattern, sec.Def.Title)
	}
	if sec.IsSelected(pattern) {
		return nil
	}
	if sec.Def.Behavior == catalog.StatusGated {
		switch pattern {
		case sec.Def.StatusOK:
			removeString(&sec.Selected, sec.Def.StatusNotOK)
		case sec.Def.StatusNotOK:
			removeString(&sec.Selected, sec.Def.StatusOK)
		}
	}
	sec.Selected = append(sec.Selected, pattern)
	return nil
}

// DeselectPattern unmarks a pattern. Its accumulated state is kept so a later
// re-selection restores it.
func (r *Record) DeselectPattern(sec *Section, pattern string) error {
	if !r.owns(sec) {
		return ErrUnknownSection
	}
	if _, ok := sec.Def.Lookup(pattern); !ok {
		return fmt.Errorf("%w: %q in section %q", ErrUnknownPattern, pattern, sec.Def.Title)
	}
	removeString(&sec.Selected, pattern)
	return nil
}

// SetObservationSelected toggles one canonical observation under a pattern.
func (r *Record) SetObservationSelected(sec *Section, pattern, observation string, selected bool) error {
	def, ok := sec.Def.Lookup(pattern)
	if !ok {
		return fmt.Errorf("%w: %q in section %q", ErrUnknownPattern, pattern, sec.Def.Title)
	}
	if !containsString(def.Observations, observation) {
		return fmt.Errorf("%w: observation %q under %q", ErrUnknownPattern, observation, pattern)
	}
	st := sec.State(pattern)
	if selected {
		if !containsString(st.Selected, observation) {
			st.Selected = append(st.Selected, observation)
		}
	} else {
		removeString(&st.Selected, observation)
	}
	return nil
}

// SetSubObservationSelected toggles a dependent sub-observation. The
// selection is stored regardless of the parent's state; it only takes effect
// while the parent observation is selected.
func (r *Record) SetSubObservationSelected(sec *Section, pattern, parent, sub string, selected bool) error {
	def, ok := sec.Def.Lookup(pattern)
	if !ok {
		return fmt.Errorf("%w: %q in section %q", ErrUnknownPattern, pattern, sec.Def.Title)
	}
	subs, ok := def.SubObservations[parent]
	if !ok || !containsString(subs, sub) {
		return fmt.Errorf("%w: sub-observation %q under %q", ErrUnknownPattern, sub, parent)
	}
	st := sec.State(pattern)
	cur := st.SubSelected[parent]
	if selected {
		if !containsString(cur, sub) {
			st.SubSelected[parent] = append(cur, sub)
		}
	} else {
		removeString(&cur, sub)
		st.SubSelected[parent] = cur
	}
	return nil
}

// AddCustomEntry appends a custom entry and assigns it an ID.
func (r *Record) AddCustomEntry(sec *Section, entry CustomEntry) *CustomEntry {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	e := entry
	sec.Custom = append(sec.Custom, &e)
	return &e
}

// RemoveCustomEntry deletes the entry with the given ID, if present.
func (r *Record) RemoveCustomEntry(sec *Section, id string) {
	kept := sec.Custom[:0]
	for _, e := range sec.Custom {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	sec.Custom = kept
}

// SetNotes replaces the section's free-text notes.
func (r *Record) SetNotes(sec *Section, text string) {
	sec.Notes = text
}

// SetMeasurement stores a free-text numeric reading for a metric key.
func (r *Record) SetMeasurement(sec *Section, key, value string) error {
	if _, ok := sec.Def.Metric(key); !ok {
		return fmt.Errorf("%w: metric %q in section %q", ErrUnknownPattern, key, sec.Def.Title)
	}
	sec.Measurements[key] = value
	return nil
}

// AddSectionImage attaches an image to the section itself.
func (r *Record) AddSectionImage(sec *Section, path string) (*ImageRef, error) {
	ref, err := NewImageRef(path)
	if err != nil {
		return nil, err
	}
	sec.Images = append(sec.Images, ref)
	return ref, nil
}

// AddPatternImage attaches an image at pattern level.
func (r *Record) AddPatternImage(sec *Section, pattern, path string) (*ImageRef, error) {
	if _, ok := sec.Def.Lookup(pattern); !ok {
		return nil, fmt.Errorf("%w: %q in section %q", ErrUnknownPattern, pattern, sec.Def.Title)
	}
	ref, err := NewImageRef(path)
	if err != nil {
		return nil, err
	}
	st := sec.State(pattern)
	st.PatternImages = append(st.PatternImages, ref)
	return ref, nil
}

// AddObservationImage attaches an image to one observation under a pattern.
func (r *Record) AddObservationImage(sec *Section, pattern, observation, path string) (*ImageRef, error) {
	def, ok := sec.Def.Lookup(pattern)
	if !ok {
		return nil, fmt.Errorf("%w: %q in section %q", ErrUnknownPattern, pattern, sec.Def.Title)
	}
	if !containsString(def.Observations, observation) {
		return nil, fmt.Errorf("%w: observation %q under %q", ErrUnknownPattern, observation, pattern)
	}
	ref, err := NewImageRef(path)
	if err != nil {
		return nil, err
	}
	st := sec.State(pattern)
	st.ObsImages[observation] = append(st.ObsImages[observation], ref)
	return ref, nil
}

// AddMetricImage attaches an image to one measurement metric.
func (r *Record) AddMetricImage(sec *Section, key, path string) (*ImageRef, error) {
	if _, ok := sec.Def.Metric(key); !ok {
		return nil, fmt.Errorf("%w: metric %q in section %q", ErrUnknownPattern, key, sec.Def.Title)
	}
	ref, err := NewImageRef(path)
	if err != nil {
		return nil, err
	}
	sec.MetricImages[key] = append(sec.MetricImages[key], ref)
	return ref, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list *[]string, s string) {
	kept := (*list)[:0]
	for _, v := range *list {
		if v != s {
			kept = append(kept, v)
		}
	}
	*list = kept
}
