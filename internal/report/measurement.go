package report

import (
	"fmt"
	"strings"

	"inspectline/internal/catalog"
	"inspectline/internal/measure"
	"inspectline/internal/record"
)

// measurementSection emits one fixed subsection per metric with the pass/fail
// sentence derived from the classification rules, followed by that metric's
// images. Speed is an input to the vibration band, not a subsection of its
// own; the resistance pairs share one subsection.
func (a *assembler) measurementSection(sec *record.Section) {
	a.audioSubsection(sec)
	a.vibrationSubsection(sec)
	a.temperatureSubsection(sec)
	a.resistanceSubsection(sec)
	if sec.Notes != "" {
		a.add(Heading{Level: 4, Text: "Additional Notes"})
		a.add(Paragraph{Text: plain(sec.Notes)})
	}
	a.figures(sec.Images)
}

func (a *assembler) metricValue(sec *record.Section, key string) (float64, bool) {
	raw, ok := sec.Measurements[key]
	if !ok || raw == "" {
		return 0, false
	}
	return measure.ExtractNumber(raw)
}

func (a *assembler) audioSubsection(sec *record.Section) {
	if _, ok := sec.Def.Metric(catalog.MetricAudio); !ok {
		return
	}
	a.add(Heading{Level: 4, Text: "Audio"})
	if v, ok := a.metricValue(sec, catalog.MetricAudio); ok {
		if measure.AudioAcceptable(v) {
			a.add(Paragraph{Text: plain(fmt.Sprintf(
				"Audio level measured at %s dB, within the %s dB acceptable limit.",
				trimFloat(v), trimFloat(measure.AudioLimitDB)))})
		} else {
			a.add(Paragraph{Text: plain(fmt.Sprintf(
				"Audio level measured at %s dB, exceeding the %s dB acceptable limit.",
				trimFloat(v), trimFloat(measure.AudioLimitDB)))})
		}
	} else {
		a.add(Paragraph{Text: plain("Audio level was not measured.")})
	}
	a.figures(sec.MetricImages[catalog.MetricAudio])
}

func (a *assembler) vibrationSubsection(sec *record.Section) {
	if _, ok := sec.Def.Metric(catalog.MetricVibration); !ok {
		return
	}
	a.add(Heading{Level: 4, Text: "Vibration"})
	var rpm, vib *float64
	if v, ok := a.metricValue(sec, catalog.MetricRPM); ok {
		rpm = &v
	}
	if v, ok := a.metricValue(sec, catalog.MetricVibration); ok {
		vib = &v
	}
	label, acceptable := measure.ClassifyVibration(rpm, vib)
	if label == measure.UnableToClassify {
		a.add(Paragraph{Text: plain(
			"Vibration could not be classified; both speed and vibration readings are required.")})
	} else {
		verdict := "unacceptable"
		if acceptable {
			verdict = "acceptable"
		}
		a.add(Paragraph{Text: plain(fmt.Sprintf(
			"Vibration measured at %s mm/s RMS at %s RPM, classified as %s (%s).",
			trimFloat(*vib), trimFloat(*rpm), label, verdict))})
	}
	a.figures(sec.MetricImages[catalog.MetricRPM])
	a.figures(sec.MetricImages[catalog.MetricVibration])
}

func (a *assembler) temperatureSubsection(sec *record.Section) {
	if _, ok := sec.Def.Metric(catalog.MetricTemperature); !ok {
		return
	}
	a.add(Heading{Level: 4, Text: "Temperature"})
	if v, ok := a.metricValue(sec, catalog.MetricTemperature); ok {
		if measure.TempAcceptable(v) {
			a.add(Paragraph{Text: plain(fmt.Sprintf(
				"Operating temperature measured at %s °F, within the %s °F acceptable limit.",
				trimFloat(v), trimFloat(measure.TempLimitF)))})
		} else {
			a.add(Paragraph{Text: plain(fmt.Sprintf(
				"Operating temperature measured at %s °F, exceeding the %s °F acceptable limit.",
				trimFloat(v), trimFloat(measure.TempLimitF)))})
		}
	} else {
		a.add(Paragraph{Text: plain("Operating temperature was not measured.")})
	}
	a.figures(sec.MetricImages[catalog.MetricTemperature])
}

// resistanceKeys lists the three-wire pairs; the five-wire toggle reveals the
// start-common and start-run readings as well.
var resistanceKeys = []string{catalog.MetricResAB, catalog.MetricResBC, catalog.MetricResCA}

var fiveWireKeys = []string{catalog.MetricResSC, catalog.MetricResSR}

func (a *assembler) resistanceSubsection(sec *record.Section) {
	if _, ok := sec.Def.Metric(catalog.MetricResAB); !ok {
		return
	}
	a.add(Heading{Level: 4, Text: "Winding Resistance"})
	keys := resistanceKeys
	if sec.FiveWire {
		keys = append(append([]string(nil), resistanceKeys...), fiveWireKeys...)
	}
	var parts []string
	for _, key := range keys {
		m, ok := sec.Def.Metric(key)
		if !ok {
			continue
		}
		if v, ok := a.metricValue(sec, key); ok {
			parts = append(parts, fmt.Sprintf("%s %s %s", m.Label, trimFloat(v), m.Unit))
		}
	}
	if len(parts) == 0 {
		a.add(Paragraph{Text: plain("Winding resistance was not measured.")})
	} else {
		a.add(Paragraph{Text: plain("Winding resistance measured: " + strings.Join(parts, ", ") + ".")})
	}
	for _, key := range keys {
		a.figures(sec.MetricImages[key])
	}
}
