package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"inspectline/internal/catalog"
	"inspectline/internal/record"
)

// stateFile is the on-disk shape of a project. Image references are stored
// as filenames relative to the bundle's images folder.
type stateFile struct {
	Version   int         `json:"version"`
	Header    headerState `json:"header"`
	Equipment []unitState `json:"equipment"`
}

type headerState struct {
	Identifier     string `json:"identifier"`
	InspectionDate string `json:"inspection_date,omitempty"`
	ReceivedDate   string `json:"received_date,omitempty"`
	Model          string `json:"model,omitempty"`
	Serial         string `json:"serial,omitempty"`
	Customer       string `json:"customer,omitempty"`
	Contact        string `json:"contact,omitempty"`
	Inspector      string `json:"inspector,omitempty"`
	Company        string `json:"company,omitempty"`
}

type unitState struct {
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Sections []sectionState `json:"sections"`
}

type sectionState struct {
	Title            string                  `json:"title"`
	Type             string                  `json:"type"`
	SelectedPatterns []string                `json:"selected_patterns,omitempty"`
	Observations     map[string]patternState `json:"observations,omitempty"`
	CustomPatterns   []customState           `json:"custom_patterns,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	Images           []string                `json:"images,omitempty"`
	Measurements     map[string]string       `json:"measurements,omitempty"`
	MetricImages     map[string][]string     `json:"metric_images,omitempty"`
	FiveWire         bool                    `json:"five_wire,omitempty"`
}

type patternState struct {
	Selected      []string            `json:"selected,omitempty"`
	SubSelected   map[string][]string `json:"sub_selected,omitempty"`
	Images        map[string][]string `json:"images,omitempty"`
	PatternImages []string            `json:"pattern_images,omitempty"`
}

type customState struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Text         string   `json:"text,omitempty"`
	Observations []string `json:"observations,omitempty"`
	Images       []string `json:"images,omitempty"`
}

func behaviorName(b catalog.SectionBehavior) string {
	switch b {
	case catalog.StatusGated:
		return "status_gated"
	case catalog.MeasurementTest:
		return "measurement_test"
	case catalog.SpecializedTest:
		return "specialized_test"
	default:
		return "standard"
	}
}

func storedNames(refs []*record.ImageRef) []string {
	var names []string
	for _, ref := range refs {
		if ref.Stored != "" {
			names = append(names, ref.Stored)
		}
	}
	return names
}

func stateFromRecord(rec *record.Record) *stateFile {
	state := &stateFile{
		Version: stateVersion,
		Header: headerState{
			Identifier:     rec.Header.Identifier,
			InspectionDate: rec.Header.InspectionDate,
			ReceivedDate:   rec.Header.ReceivedDate,
			Model:          rec.Header.Model,
			Serial:         rec.Header.Serial,
			Customer:       rec.Header.Customer,
			Contact:        rec.Header.Contact,
			Inspector:      rec.Header.Inspector,
			Company:        rec.Header.Company,
		},
	}
	for _, unit := range rec.Equipment {
		us := unitState{Type: string(unit.Kind), Name: unit.Name()}
		for _, sec := range unit.Sections {
			ss := sectionState{
				Title:            sec.Def.Title,
				Type:             behaviorName(sec.Def.Behavior),
				SelectedPatterns: append([]string(nil), sec.Selected...),
				Notes:            sec.Notes,
				Images:           storedNames(sec.Images),
				FiveWire:         sec.FiveWire,
			}
			for pattern, st := range sec.Observations {
				if len(st.Selected) == 0 && len(st.SubSelected) == 0 &&
					len(st.ObsImages) == 0 && len(st.PatternImages) == 0 {
					continue
				}
				ps := patternState{
					Selected:      append([]string(nil), st.Selected...),
					PatternImages: storedNames(st.PatternImages),
				}
				for parent, subs := range st.SubSelected {
					if len(subs) == 0 {
						continue
					}
					if ps.SubSelected == nil {
						ps.SubSelected = map[string][]string{}
					}
					ps.SubSelected[parent] = append([]string(nil), subs...)
				}
				for obs, refs := range st.ObsImages {
					names := storedNames(refs)
					if len(names) == 0 {
						continue
					}
					if ps.Images == nil {
						ps.Images = map[string][]string{}
					}
					ps.Images[obs] = names
				}
				if ss.Observations == nil {
					ss.Observations = map[string]patternState{}
				}
				ss.Observations[pattern] = ps
			}
			for _, entry := range sec.Custom {
				ss.CustomPatterns = append(ss.CustomPatterns, customState{
					ID:           entry.ID,
					Name:         entry.Name,
					Text:         entry.Text,
					Observations: append([]string(nil), entry.Observations...),
					Images:       storedNames(entry.Images),
				})
			}
			if len(sec.Measurements) > 0 {
				ss.Measurements = map[string]string{}
				for k, v := range sec.Measurements {
					if v != "" {
						ss.Measurements[k] = v
					}
				}
			}
			for key, refs := range sec.MetricImages {
				names := storedNames(refs)
				if len(names) == 0 {
					continue
				}
				if ss.MetricImages == nil {
					ss.MetricImages = map[string][]string{}
				}
				ss.MetricImages[key] = names
			}
			us.Sections = append(us.Sections, ss)
		}
		state.Equipment = append(state.Equipment, us)
	}
	return state
}

// resolveImages turns stored filenames back into references, skipping names
// whose file has gone missing from the store.
func resolveImages(imagesDir string, names []string, log logrus.FieldLogger) []*record.ImageRef {
	var refs []*record.ImageRef
	for _, name := range names {
		full := filepath.Join(imagesDir, name)
		if _, err := os.Stat(full); err != nil {
			log.WithField("image", name).Warn("stored image missing; reference dropped")
			continue
		}
		refs = append(refs, &record.ImageRef{Source: full, Stored: name})
	}
	return refs
}

func recordFromState(state *stateFile, imagesDir string, log logrus.FieldLogger) (*record.Record, error) {
	rec := record.New()
	rec.Header = record.Header{
		Identifier:     state.Header.Identifier,
		InspectionDate: state.Header.InspectionDate,
		ReceivedDate:   state.Header.ReceivedDate,
		Model:          state.Header.Model,
		Serial:         state.Header.Serial,
		Customer:       state.Header.Customer,
		Contact:        state.Header.Contact,
		Inspector:      state.Header.Inspector,
		Company:        state.Header.Company,
	}
	for _, us := range state.Equipment {
		kind, ok := catalog.KindFromString(us.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown equipment type %q", ErrCorruptProject, us.Type)
		}
		unit := rec.AddEquipmentUnit(kind)
		for _, ss := range us.Sections {
			sec := unit.Section(ss.Title)
			if sec == nil {
				log.WithField("section", ss.Title).Warn("stored section unknown to catalog; skipped")
				continue
			}
			for _, pattern := range ss.SelectedPatterns {
				if err := rec.SelectPattern(sec, pattern); err != nil {
					log.WithField("pattern", pattern).Warn("stored pattern unknown to catalog; skipped")
				}
			}
			for pattern, ps := range ss.Observations {
				if _, ok := sec.Def.Lookup(pattern); !ok {
					continue
				}
				st := sec.State(pattern)
				for _, obs := range ps.Selected {
					if err := rec.SetObservationSelected(sec, pattern, obs, true); err != nil {
						log.WithField("observation", obs).Warn("stored observation unknown; skipped")
					}
				}
				for parent, subs := range ps.SubSelected {
					for _, sub := range subs {
						if err := rec.SetSubObservationSelected(sec, pattern, parent, sub, true); err != nil {
							log.WithField("sub_observation", sub).Warn("stored sub-observation unknown; skipped")
						}
					}
				}
				for obs, names := range ps.Images {
					if refs := resolveImages(imagesDir, names, log); len(refs) > 0 {
						st.ObsImages[obs] = refs
					}
				}
				st.PatternImages = resolveImages(imagesDir, ps.PatternImages, log)
			}
			for _, cs := range ss.CustomPatterns {
				entry := record.CustomEntry{
					ID:           cs.ID,
					Name:         cs.Name,
					Text:         cs.Text,
					Observations: append([]string(nil), cs.Observations...),
					Images:       resolveImages(imagesDir, cs.Images, log),
				}
				rec.AddCustomEntry(sec, entry)
			}
			sec.Notes = ss.Notes
			sec.Images = resolveImages(imagesDir, ss.Images, log)
			for k, v := range ss.Measurements {
				sec.Measurements[k] = v
			}
			for key, names := range ss.MetricImages {
				if refs := resolveImages(imagesDir, names, log); len(refs) > 0 {
					sec.MetricImages[key] = refs
				}
			}
			sec.FiveWire = ss.FiveWire
		}
	}
	return rec, nil
}
