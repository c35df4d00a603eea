package features

import (
	"strings"

	"nerfeatures/internal/sentence"
)

// Form emits one feature per token: the interned surface form, in the
// processor's window.
type Form struct {
	*Base
	noopEntities
}

func newForm() *Form { return &Form{Base: NewBase(0)} }

func (p *Form) Name() string { return "Form" }

func (p *Form) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "Form takes no arguments"}
	}
	p.Base = NewBase(window)
	return nil
}

func (p *Form) Save(w *binaryWriter) error { return p.save(w) }

func (p *Form) Load(r *binaryReader, pipeline []Processor) error { return p.load(r) }

func (p *Form) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		p.EmitWindow(sent, i, p.Lookup(word.Form, total))
	}
	p.EmitOuterWindow(sent, p.Lookup("", total))
}

// Lemma emits one feature per token: the interned canonical lemma id.
type Lemma struct {
	*Base
	noopEntities
}

func newLemma() *Lemma { return &Lemma{Base: NewBase(0)} }

func (p *Lemma) Name() string { return "Lemma" }

func (p *Lemma) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "Lemma takes no arguments"}
	}
	p.Base = NewBase(window)
	return nil
}

func (p *Lemma) Save(w *binaryWriter) error { return p.save(w) }

func (p *Lemma) Load(r *binaryReader, pipeline []Processor) error { return p.load(r) }

func (p *Lemma) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		p.EmitWindow(sent, i, p.Lookup(word.LemmaID, total))
	}
	p.EmitOuterWindow(sent, p.Lookup("", total))
}

// RawLemma emits one feature per token: the interned surface lemma string.
type RawLemma struct {
	*Base
	noopEntities
}

func newRawLemma() *RawLemma { return &RawLemma{Base: NewBase(0)} }

func (p *RawLemma) Name() string { return "RawLemma" }

func (p *RawLemma) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "RawLemma takes no arguments"}
	}
	p.Base = NewBase(window)
	return nil
}

func (p *RawLemma) Save(w *binaryWriter) error { return p.save(w) }

func (p *RawLemma) Load(r *binaryReader, pipeline []Processor) error { return p.load(r) }

func (p *RawLemma) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		p.EmitWindow(sent, i, p.Lookup(word.RawLemma, total))
	}
	p.EmitOuterWindow(sent, p.Lookup("", total))
}

// Tag emits one feature per token: the interned morphological tag.
type Tag struct {
	*Base
	noopEntities
}

func newTag() *Tag { return &Tag{Base: NewBase(0)} }

func (p *Tag) Name() string { return "Tag" }

func (p *Tag) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "Tag takes no arguments"}
	}
	p.Base = NewBase(window)
	return nil
}

func (p *Tag) Save(w *binaryWriter) error { return p.save(w) }

func (p *Tag) Load(r *binaryReader, pipeline []Processor) error { return p.load(r) }

func (p *Tag) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		p.EmitWindow(sent, i, p.Lookup(word.Tag, total))
	}
	p.EmitOuterWindow(sent, p.Lookup("", total))
}

// CzechLemmaTerm scans lemma_comments for each occurrence of the literal
// "_;" marker and emits a feature for the character immediately following
// it, adding Czech lemma semantic-class features.
type CzechLemmaTerm struct {
	*Base
	noopEntities
}

func newCzechLemmaTerm() *CzechLemmaTerm { return &CzechLemmaTerm{Base: NewBase(0)} }

func (p *CzechLemmaTerm) Name() string { return "CzechLemmaTerm" }

func (p *CzechLemmaTerm) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "CzechLemmaTerm takes no arguments"}
	}
	p.Base = NewBase(window)
	return nil
}

func (p *CzechLemmaTerm) Save(w *binaryWriter) error { return p.save(w) }

func (p *CzechLemmaTerm) Load(r *binaryReader, pipeline []Processor) error { return p.load(r) }

const czechLemmaTermMarker = "_;"

func (p *CzechLemmaTerm) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		comments := word.LemmaComments
		for {
			idx := strings.Index(comments, czechLemmaTermMarker)
			if idx == -1 {
				break
			}
			rest := comments[idx+len(czechLemmaTermMarker):]
			if rest == "" {
				break
			}
			r, size := nextRune(rest)
			p.EmitWindow(sent, i, p.Lookup(string(r), total))
			comments = rest[size:]
		}
	}
}
