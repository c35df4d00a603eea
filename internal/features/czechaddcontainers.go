package features

import "nerfeatures/internal/sentence"

// CzechAddContainers runs after prediction, synthesizing "P" (person) and
// "T" (time) container entities from maximal adjacent runs of predicted
// sub-entities. It emits no per-token features, so window must be 0.
type CzechAddContainers struct {
	*Base
	noopSentence
}

func newCzechAddContainers() *CzechAddContainers { return &CzechAddContainers{Base: NewBase(0)} }

func (p *CzechAddContainers) Name() string { return "CzechAddContainers" }

func (p *CzechAddContainers) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if window != 0 {
		return &ParseError{Kind: ErrWindowConstraint, Msg: "CzechAddContainers requires window 0"}
	}
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "CzechAddContainers takes no arguments"}
	}
	p.Base = NewBase(window)
	return nil
}

func (p *CzechAddContainers) Save(w *binaryWriter) error { return p.save(w) }

func (p *CzechAddContainers) Load(r *binaryReader, pipeline []Processor) error { return p.load(r) }

// abuts reports whether entity b begins exactly where a ends.
func abuts(a, b sentence.NamedEntity) bool { return a.Start+a.Length == b.Start }

func (p *CzechAddContainers) ProcessEntities(sent *sentence.Sentence, entities *[]sentence.NamedEntity, buffer *[]byte) {
	ents := *entities
	var result []sentence.NamedEntity
	added := false

	for k := 0; k < len(ents); k++ {
		ent := ents[k]

		switch ent.Type {
		case "pf":
			if k > 0 && ents[k-1].Type == "pf" && abuts(ents[k-1], ent) {
				break // mid-run; the run's start already triggered
			}
			j := k
			for j+1 < len(ents) && ents[j+1].Type == "pf" && abuts(ents[j], ents[j+1]) {
				j++
			}
			if j+1 < len(ents) && ents[j+1].Type == "ps" && abuts(ents[j], ents[j+1]) {
				m := j + 1
				for m+1 < len(ents) && ents[m+1].Type == "ps" && abuts(ents[m], ents[m+1]) {
					m++
				}
				result = append(result, sentence.NamedEntity{
					Start:  ent.Start,
					Length: ents[m].End() - ent.Start,
					Type:   "P",
				})
				added = true
			}

		case "td":
			if k+1 < len(ents) && ents[k+1].Type == "tm" && abuts(ent, ents[k+1]) {
				last := k + 1
				if k+2 < len(ents) && ents[k+2].Type == "ty" && abuts(ents[k+1], ents[k+2]) {
					last = k + 2
				}
				result = append(result, sentence.NamedEntity{
					Start:  ent.Start,
					Length: ents[last].End() - ent.Start,
					Type:   "T",
				})
				added = true
			}

		case "tm":
			if k > 0 && ents[k-1].Type == "td" && abuts(ents[k-1], ent) {
				break // already covered by the td trigger
			}
			if k+1 < len(ents) && ents[k+1].Type == "ty" && abuts(ent, ents[k+1]) {
				result = append(result, sentence.NamedEntity{
					Start:  ent.Start,
					Length: ents[k+1].End() - ent.Start,
					Type:   "T",
				})
				added = true
			}
		}

		result = append(result, ent)
	}

	if added {
		*entities = result
	}
}
