// Package measure extracts numeric readings from free text and classifies
// them against fixed acceptance thresholds.
package measure

import (
	"math"
	"regexp"
	"strconv"
)

// Fixed acceptance limits. These are working constants, not calibrated
// standards.
const (
	AudioLimitDB = 72.0
	TempLimitF   = 95.0

	UnableToClassify = "Unable to classify"
)

var numberRe = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)

// ExtractNumber scans text for the first signed decimal token. The second
// return is false when no parsable token exists.
func ExtractNumber(text string) (float64, bool) {
	tok := numberRe.FindString(text)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AudioAcceptable reports whether a dB reading is within the fixed limit.
func AudioAcceptable(v float64) bool { return v <= AudioLimitDB }

// TempAcceptable reports whether a temperature reading is within the limit.
func TempAcceptable(v float64) bool { return v <= TempLimitF }

// Severity bands follow ISO 10816-style labels. The first four are
// acceptable; everything above is not.
var (
	vibrationBases  = []float64{0.28, 0.45, 0.71, 1.12, 1.8, 2.8, 4.5, 7.1}
	vibrationLabels = []string{
		"Extremely Smooth",
		"Very Smooth",
		"Smooth",
		"Good",
		"Fair",
		"Slightly Rough",
		"Rough",
		"Very Rough",
		"Extremely Rough",
	}
)

const vibrationAcceptableBands = 4

// ClassifyVibration bands an mm/s RMS reading against speed-scaled severity
// thresholds. The reading is normalized to a 1000 RPM reference shaft speed
// before comparison; evaluation is strictly ascending and a reading equal to
// a threshold takes that band.
func ClassifyVibration(rpm, vibration *float64) (string, bool) {
	if rpm == nil || vibration == nil || *rpm <= 0 {
		return UnableToClassify, false
	}
	scaled := *vibration * math.Sqrt(*rpm/1000.0)
	for i, base := range vibrationBases {
		if scaled <= base {
			return vibrationLabels[i], i < vibrationAcceptableBands
		}
	}
	return vibrationLabels[len(vibrationLabels)-1], false
}
