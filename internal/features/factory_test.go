package features

import "testing"

func TestNewProcessor_UnknownNameRejected(t *testing.T) {
	_, err := newProcessor("NotAThing")
	if err == nil {
		t.Fatalf("expected an error for an unknown processor name")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrUnknownProcessorName {
		t.Errorf("got %v, want ErrUnknownProcessorName", err)
	}
}

func TestNewProcessor_EveryCanonicalNameResolves(t *testing.T) {
	want := map[string]string{
		"BrownClusters":          "BrownClusters",
		"CzechAddContainers":     "CzechAddContainers",
		"CzechLemmaTerm":         "CzechLemmaTerm",
		"Form":                   "Form",
		"FormCapitalization":     "FormCapitalization",
		"Gazetteers":             "Gazetteers",
		"Lemma":                  "Lemma",
		"NumericTimeValue":       "NumericTimeValue",
		"PreviousStage":          "PreviousStage",
		"RawLemma":               "RawLemma",
		"RawLemmaCapitalization": "RawLemmaCapitalization",
		"Tag":                    "Tag",
		"URLEmailDetector":       "URLEmailDetector",
	}
	if len(want) != len(factory) {
		t.Fatalf("factory has %d entries, test covers %d", len(factory), len(want))
	}
	for name, wantName := range want {
		proc, err := newProcessor(name)
		if err != nil {
			t.Errorf("newProcessor(%q): %v", name, err)
			continue
		}
		if proc.Name() != wantName {
			t.Errorf("newProcessor(%q).Name() = %q, want %q", name, proc.Name(), wantName)
		}
	}
}
