package features

import (
	"regexp"

	"nerfeatures/internal/sentence"
)

// urlKind is the outcome of a deterministic URL/email classification.
type urlKind int

const (
	noURL urlKind = iota
	isURL
	isEmail
)

// emailPattern and urlPattern classify a whole token, not a substring —
// the same structural markers the anonymizing proxy's regex detector uses
// for PII, anchored here to the full form since tokens are already split.
var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^(?:https?|ftp)://\S+$|^www\.[A-Za-z0-9.\-]+\.[A-Za-z]{2,}(?:/\S*)?$`)
)

func detectURL(form string) urlKind {
	switch {
	case emailPattern.MatchString(form):
		return isEmail
	case urlPattern.MatchString(form):
		return isURL
	default:
		return noURL
	}
}

// URLEmailDetector seeds a unit-confidence local BILOU probability on
// tokens that are deterministically classified as a URL or email address,
// so the downstream classifier's local-probability layer respects it.
type URLEmailDetector struct {
	*Base
	noopEntities

	urlType, emailType sentence.EntityType
}

func newURLEmailDetector() *URLEmailDetector { return &URLEmailDetector{Base: NewBase(0)} }

func (p *URLEmailDetector) Name() string { return "URLEmailDetector" }

func (p *URLEmailDetector) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 2 {
		return &ParseError{Kind: ErrConfigArity, Msg: "URLEmailDetector requires exactly two arguments: url-entity-type email-entity-type"}
	}
	p.Base = NewBase(window)
	p.urlType = entityTypes.Register(args[0])
	p.emailType = entityTypes.Register(args[1])
	return nil
}

func (p *URLEmailDetector) Save(w *binaryWriter) error {
	p.save(w)
	w.writeU32(uint32(p.urlType))
	w.writeU32(uint32(p.emailType))
	return w.err
}

func (p *URLEmailDetector) Load(r *binaryReader, pipeline []Processor) error {
	if err := p.load(r); err != nil {
		return err
	}
	p.urlType = sentence.EntityType(r.readU32())
	p.emailType = sentence.EntityType(r.readU32())
	return r.err
}

func (p *URLEmailDetector) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		kind := detectURL(word.Form)
		if kind == noURL {
			continue
		}
		if sent.Probabilities[i].Filled {
			continue
		}

		entity := p.urlType
		if kind == isEmail {
			entity = p.emailType
		}

		slots := &sent.Probabilities[i].Local.BILOU
		for s := range slots {
			slots[s].Probability = 0
			slots[s].Entity = 0
		}
		slots[sentence.SlotU].Probability = 1.0
		slots[sentence.SlotU].Entity = entity
		sent.Probabilities[i].Filled = true
	}
}
