package catalog

// Canonical pattern names shared across sections.
const (
	PatternNoIssues    = "No issues detected"
	PatternStatusOK    = "Status: OK"
	PatternStatusNotOK = "Status: NOT OK"
)

// Metric keys used by measurement and specialized test sections.
const (
	MetricAudio       = "audio"
	MetricRPM         = "rpm"
	MetricVibration   = "vibration"
	MetricTemperature = "temperature"
	MetricResAB       = "res_ab"
	MetricResBC       = "res_bc"
	MetricResCA       = "res_ca"
	MetricResSC       = "res_sc"
	MetricResSR       = "res_sr"
	MetricBore        = "bore"
	MetricStemTravel  = "stem_travel"
	MetricTestPSI     = "test_pressure"
	MetricHoldTime    = "hold_time"
)

func noIssuesPattern() PatternDefinition {
	return PatternDefinition{Observations: []string{"No issues detected."}}
}

func statusOKPattern() PatternDefinition {
	return PatternDefinition{Observations: []string{"No issues detected."}}
}

// bearingNotOKPattern is the NOT OK container for bearing-like sections. Its
// sub-observations key off the parent finding that must be selected first.
func bearingNotOKPattern() PatternDefinition {
	return PatternDefinition{
		Observations: []string{
			"Pitting/spalling was found on the bearing races.",
			"The bearing cage is damaged or deformed.",
			"Discoloration consistent with overheating was observed.",
			"Contamination was found inside the bearing.",
			"Excessive radial play was measured at the bearing.",
		},
		SubObservations: map[string][]string{
			"Pitting/spalling was found on the bearing races.": {
				"The damage is concentrated on the inner race.",
				"The damage is concentrated on the outer race.",
				"Rolling elements show matching surface damage.",
			},
			"Contamination was found inside the bearing.": {
				"The contaminant appears to be moisture/rust.",
				"The contaminant appears to be abrasive debris.",
			},
		},
	}
}

func measurementSection(title string, metrics []MetricDef) SectionDef {
	return SectionDef{
		Title:    title,
		Behavior: MeasurementTest,
		Custom:   CustomInline,
		Metrics:  metrics,
	}
}

func motorTestMetrics() []MetricDef {
	return []MetricDef{
		{Key: MetricAudio, Label: "Audio", Unit: "dB"},
		{Key: MetricRPM, Label: "Speed", Unit: "RPM"},
		{Key: MetricVibration, Label: "Vibration", Unit: "mm/s"},
		{Key: MetricTemperature, Label: "Temperature", Unit: "°F"},
		{Key: MetricResAB, Label: "Resistance A-B", Unit: "Ω"},
		{Key: MetricResBC, Label: "Resistance B-C", Unit: "Ω"},
		{Key: MetricResCA, Label: "Resistance C-A", Unit: "Ω"},
		{Key: MetricResSC, Label: "Resistance Start-Common", Unit: "Ω"},
		{Key: MetricResSR, Label: "Resistance Start-Run", Unit: "Ω"},
	}
}

var sectionsByKind = map[EquipmentKind][]SectionDef{
	Motor: {
		{
			Title:        "Housing",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Corrosion", "Cracking", "Foreign Material"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Corrosion": {Observations: []string{
					"Surface corrosion was found on the housing exterior.",
					"Corrosion has penetrated the housing wall.",
					"Corrosion was found at the mounting feet.",
				}},
				"Cracking": {Observations: []string{
					"A crack was found in the housing casting.",
					"Cracking was found around a mounting bolt hole.",
				}},
				"Foreign Material": {Observations: []string{
					"Foreign material was found inside the housing.",
					"Debris has blocked the cooling passages.",
				}},
			},
		},
		{
			Title:        "Shaft",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Scoring", "Bent Shaft", "Fretting"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Scoring": {Observations: []string{
					"Scoring was found on the shaft at the bearing journal.",
					"Scoring was found on the shaft at the seal surface.",
				}},
				"Bent Shaft": {Observations: []string{
					"The shaft is bent beyond allowable runout.",
				}},
				"Fretting": {Observations: []string{
					"Fretting corrosion was found at the bearing fit.",
					"Fretting was found at the coupling fit.",
				}},
			},
		},
		{
			Title:        "Bearings",
			Behavior:     StatusGated,
			Custom:       CustomNamed,
			PatternOrder: []string{PatternStatusOK, PatternStatusNotOK},
			Patterns: map[string]PatternDefinition{
				PatternStatusOK:    statusOKPattern(),
				PatternStatusNotOK: bearingNotOKPattern(),
			},
			StatusOK:    PatternStatusOK,
			StatusNotOK: PatternStatusNotOK,
		},
		{
			Title:        "Electrical",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Winding Discoloration", "Insulation Breakdown"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Winding Discoloration": {Observations: []string{
					"Winding discoloration consistent with overheating was observed.",
					"A single phase of the winding is discolored.",
				}},
				"Insulation Breakdown": {Observations: []string{
					"Insulation breakdown was found at the winding end turns.",
					"Insulation breakdown was found at the lead connections.",
				}},
			},
		},
		measurementSection("Motor Tests", motorTestMetrics()),
	},
	Compressor: {
		{
			Title:        "Housing",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Corrosion", "Cracking"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Corrosion": {Observations: []string{
					"Surface corrosion was found on the compressor shell.",
					"Corrosion was found at the suction connection.",
					"Corrosion was found at the discharge connection.",
				}},
				"Cracking": {Observations: []string{
					"A crack was found in the compressor shell weld.",
				}},
			},
		},
		{
			Title:        "Valve Plate",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Valve Damage", "Carbon Buildup"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Valve Damage": {Observations: []string{
					"A broken reed valve was found on the valve plate.",
					"The discharge valve seat is worn beyond service limits.",
				}},
				"Carbon Buildup": {Observations: []string{
					"Carbon buildup was found on the valve plate.",
					"Carbonized oil was found in the discharge passages.",
				}},
			},
		},
		{
			Title:        "Bearings",
			Behavior:     StatusGated,
			Custom:       CustomNamed,
			PatternOrder: []string{PatternStatusOK, PatternStatusNotOK},
			Patterns: map[string]PatternDefinition{
				PatternStatusOK:    statusOKPattern(),
				PatternStatusNotOK: bearingNotOKPattern(),
			},
			StatusOK:    PatternStatusOK,
			StatusNotOK: PatternStatusNotOK,
		},
		measurementSection("Compressor Tests", motorTestMetrics()),
		{
			Title:        "Pressure Test",
			Behavior:     SpecializedTest,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Leak Findings"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Leak Findings": {Observations: []string{
					"A leak was detected at the gasket surface.",
					"A leak was detected at the terminal plate.",
					"Pressure decayed below the hold threshold during the test.",
				}},
			},
			Metrics: []MetricDef{
				{Key: MetricTestPSI, Label: "Test Pressure", Unit: "psi"},
				{Key: MetricHoldTime, Label: "Hold Time", Unit: "min"},
			},
		},
	},
	Coil: {
		{
			Title:        "Fins",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Fin Damage", "Fouling"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Fin Damage": {Observations: []string{
					"Flattened fins were found on the coil face.",
					"Fin rot was found along the lower rows.",
				}},
				"Fouling": {Observations: []string{
					"Heavy fouling was found between the fins.",
					"Organic growth was found on the coil face.",
				}},
			},
		},
		{
			Title:        "Tubing",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Tube Damage", "Freeze Damage"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Tube Damage": {Observations: []string{
					"A ruptured tube was found in the coil core.",
					"Abrasion wear was found where tubes contact the casing.",
				}},
				"Freeze Damage": {Observations: []string{
					"Tube deformation consistent with freeze damage was observed.",
				}},
			},
		},
		{
			Title:        "Headers",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Header Corrosion", "Braze Failure"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Header Corrosion": {Observations: []string{
					"Corrosion was found on the supply header.",
					"Corrosion was found on the return header.",
				}},
				"Braze Failure": {Observations: []string{
					"A failed braze joint was found at the header-to-tube connection.",
				}},
			},
		},
		{
			Title:        "Coil Pressure Test",
			Behavior:     SpecializedTest,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Leak Findings"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Leak Findings": {Observations: []string{
					"A leak was detected at a tube-to-header joint.",
					"A leak was detected within the coil core.",
				}},
			},
			Metrics: []MetricDef{
				{Key: MetricTestPSI, Label: "Test Pressure", Unit: "psi"},
				{Key: MetricHoldTime, Label: "Hold Time", Unit: "min"},
			},
		},
	},
	Valve: {
		{
			Title:        "Body",
			Behavior:     Standard,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Seat Damage", "Corrosion"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Seat Damage": {Observations: []string{
					"Erosion damage was found on the valve seat.",
					"Debris damage was found on the valve seat.",
				}},
				"Corrosion": {Observations: []string{
					"Corrosion was found in the valve body bore.",
					"Corrosion was found at the inlet connection.",
				}},
			},
		},
		{
			Title:        "Electrical Test",
			Behavior:     SpecializedTest,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Coil Findings"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Coil Findings": {Observations: []string{
					"The solenoid coil is open circuit.",
					"The solenoid coil resistance is outside the expected range.",
					"The coil fails to energize at rated voltage.",
				}},
			},
			Metrics: []MetricDef{
				{Key: MetricResAB, Label: "Coil Resistance", Unit: "Ω"},
			},
		},
		{
			Title:        "Mechanical Test",
			Behavior:     SpecializedTest,
			Custom:       CustomInline,
			PatternOrder: []string{PatternNoIssues, "Movement Findings"},
			Patterns: map[string]PatternDefinition{
				PatternNoIssues: noIssuesPattern(),
				"Movement Findings": {Observations: []string{
					"The stem binds through part of its travel.",
					"The valve fails to seat fully when de-energized.",
					"Internal galling was found on the stem.",
				}},
			},
			Metrics: []MetricDef{
				{Key: MetricBore, Label: "Bore", Unit: "in"},
				{Key: MetricStemTravel, Label: "Stem Travel", Unit: "in"},
			},
		},
	},
}

var summaryGroupsByKind = map[EquipmentKind][]SummaryGroup{
	Motor: {
		{Title: "Housing / Shaft / Electrical", Sections: []string{"Housing", "Shaft", "Electrical"}},
		{Title: "Bearings", Sections: []string{"Bearings"}},
	},
	Compressor: {
		{Title: "Housing / Valve Plate", Sections: []string{"Housing", "Valve Plate"}},
		{Title: "Bearings", Sections: []string{"Bearings"}},
		{Title: "Pressure Test", Sections: []string{"Pressure Test"}},
	},
	Coil: {
		{Title: "Fins / Tubing", Sections: []string{"Fins", "Tubing"}},
		{Title: "Headers", Sections: []string{"Headers"}},
		{Title: "Pressure Test", Sections: []string{"Coil Pressure Test"}},
	},
	Valve: {
		{Title: "Body", Sections: []string{"Body"}},
		{Title: "Operation", Sections: []string{"Electrical Test", "Mechanical Test"}},
	},
}
