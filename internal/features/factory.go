package features

// factory maps the thirteen canonical processor names to constructors. It
// is a closed set: Polymorphism is a sealed tagged variant, not an open
// registry a caller can extend.
var factory = map[string]func() Processor{
	"BrownClusters":          func() Processor { return newBrownClusters() },
	"CzechAddContainers":     func() Processor { return newCzechAddContainers() },
	"CzechLemmaTerm":         func() Processor { return newCzechLemmaTerm() },
	"Form":                   func() Processor { return newForm() },
	"FormCapitalization":     func() Processor { return newFormCapitalization() },
	"Gazetteers":             func() Processor { return newGazetteers() },
	"Lemma":                  func() Processor { return newLemma() },
	"NumericTimeValue":       func() Processor { return newNumericTimeValue() },
	"PreviousStage":          func() Processor { return newPreviousStage() },
	"RawLemma":               func() Processor { return newRawLemma() },
	"RawLemmaCapitalization": func() Processor { return newRawLemmaCapitalization() },
	"Tag":                    func() Processor { return newTag() },
	"URLEmailDetector":       func() Processor { return newURLEmailDetector() },
}

// newProcessor constructs the named processor, or reports
// ErrUnknownProcessorName if name is not one of the thirteen variants.
func newProcessor(name string) (Processor, error) {
	ctor, ok := factory[name]
	if !ok {
		return nil, &ParseError{Kind: ErrUnknownProcessorName, Arg: name, Msg: "no such processor"}
	}
	return ctor(), nil
}
