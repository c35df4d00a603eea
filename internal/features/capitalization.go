package features

import (
	"unicode"

	"nerfeatures/internal/sentence"
)

// capitalizationFeatures holds the three reserved capitalization feature
// ids shared by FormCapitalization and RawLemmaCapitalization: first-letter
// uppercase, all-uppercase, and mixed-case.
type capitalizationFeatures struct {
	first int // "f": first codepoint is upper
	all   int // "a": every letter seen is upper and none is lower
	mixed int // "m": both an upper and a lower letter were seen
}

func (c *capitalizationFeatures) reserve(b *Base, total *int) {
	c.first = b.Lookup("f", total)
	c.all = b.Lookup("a", total)
	c.mixed = b.Lookup("m", total)
}

// capitalizationOf scans the codepoints of text and reports whether it
// contains any uppercase (Lu/Lt) or lowercase (Ll) letters, and whether the
// first codepoint is uppercase.
func capitalizationOf(text string) (firstUpper, wasUpper, wasLower bool) {
	first := true
	for _, r := range text {
		upper := unicode.Is(unicode.Lu, r) || unicode.Is(unicode.Lt, r)
		lower := unicode.Is(unicode.Ll, r)
		if first {
			firstUpper = upper
			first = false
		}
		if upper {
			wasUpper = true
		}
		if lower {
			wasLower = true
		}
	}
	return
}

func (c *capitalizationFeatures) emit(b *Base, sent *sentence.Sentence, i int, text string) {
	firstUpper, wasUpper, wasLower := capitalizationOf(text)
	if firstUpper {
		b.EmitWindow(sent, i, c.first)
	}
	switch {
	case wasUpper && !wasLower:
		b.EmitWindow(sent, i, c.all)
	case wasUpper && wasLower:
		b.EmitWindow(sent, i, c.mixed)
	}
}

// FormCapitalization emits first-letter/all-upper/mixed-case features
// derived from each token's surface form.
type FormCapitalization struct {
	*Base
	noopEntities
	feat capitalizationFeatures
}

func newFormCapitalization() *FormCapitalization { return &FormCapitalization{Base: NewBase(0)} }

func (p *FormCapitalization) Name() string { return "FormCapitalization" }

func (p *FormCapitalization) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "FormCapitalization takes no arguments"}
	}
	p.Base = NewBase(window)
	p.feat.reserve(p.Base, total)
	return nil
}

// Save writes only the base state: the three reserved feature ids are
// already present as ordinary entries ("f"/"a"/"m") in the intern table.
func (p *FormCapitalization) Save(w *binaryWriter) error { return p.save(w) }

func (p *FormCapitalization) Load(r *binaryReader, pipeline []Processor) error {
	if err := p.load(r); err != nil {
		return err
	}
	p.feat.first, p.feat.all, p.feat.mixed = p.intern["f"], p.intern["a"], p.intern["m"]
	return nil
}

func (p *FormCapitalization) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		p.feat.emit(p.Base, sent, i, word.Form)
	}
}

// RawLemmaCapitalization emits the same three capitalization features as
// FormCapitalization, derived from each token's raw lemma instead.
type RawLemmaCapitalization struct {
	*Base
	noopEntities
	feat capitalizationFeatures
}

func newRawLemmaCapitalization() *RawLemmaCapitalization {
	return &RawLemmaCapitalization{Base: NewBase(0)}
}

func (p *RawLemmaCapitalization) Name() string { return "RawLemmaCapitalization" }

func (p *RawLemmaCapitalization) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "RawLemmaCapitalization takes no arguments"}
	}
	p.Base = NewBase(window)
	p.feat.reserve(p.Base, total)
	return nil
}

// Save writes only the base state; see FormCapitalization.Save.
func (p *RawLemmaCapitalization) Save(w *binaryWriter) error { return p.save(w) }

func (p *RawLemmaCapitalization) Load(r *binaryReader, pipeline []Processor) error {
	if err := p.load(r); err != nil {
		return err
	}
	p.feat.first, p.feat.all, p.feat.mixed = p.intern["f"], p.intern["a"], p.intern["m"]
	return nil
}

func (p *RawLemmaCapitalization) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		p.feat.emit(p.Base, sent, i, word.RawLemma)
	}
}
