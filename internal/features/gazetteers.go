package features

import (
	"bufio"
	"bytes"
	"strings"

	"nerfeatures/internal/metrics"
	"nerfeatures/internal/sentence"
)

// Gazetteer position roles: G is a generic match marker present on every
// hit, U/B/L/I are positional roles within a multi-token match
// (unigram, begin, last, inside).
const (
	roleG = 0
	roleU = 1
	roleB = 2
	roleL = 3
	roleI = 4
)

// gazetteerEntry is one interned phrase prefix. features holds the
// (deduplicated) per-gazetteer-file base feature ids for which this exact
// string is a complete phrase; prefixOfLonger marks that at least one
// longer phrase in some file extends this one, which drives the
// longest-match extension at inference time.
type gazetteerEntry struct {
	features       []int
	prefixOfLonger bool
}

// Gazetteers matches raw-lemma token spans against one or more phrase
// lists. Every phrase in a single file shares one base feature id (a
// binary "found in this gazetteer" signal); position within a matched
// span is encoded separately via the role offset.
type Gazetteers struct {
	*Base
	noopEntities

	entries     []*gazetteerEntry
	phraseIndex map[string]int
	phraseOrder []string // insertion order, for byte-identical Save

	cache   Cache            // optional; see buildcache.go
	metrics *metrics.Metrics // optional; see buildcache.go
}

// SetCache wires an optional build cache, consulted for each gazetteer
// file on the next Parse call.
func (p *Gazetteers) SetCache(c Cache) { p.cache = c }

// SetMetrics wires an optional metrics sink, updated with cache hit/miss
// counts on the next Parse call.
func (p *Gazetteers) SetMetrics(m *metrics.Metrics) { p.metrics = m }

func newGazetteers() *Gazetteers {
	return &Gazetteers{Base: NewBase(0), phraseIndex: map[string]int{}}
}

func (p *Gazetteers) Name() string { return "Gazetteers" }

func (p *Gazetteers) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) < 1 {
		return &ParseError{Kind: ErrConfigArity, Msg: "Gazetteers requires at least one gazetteer file"}
	}
	p.Base = NewBase(window)
	p.entries = nil
	p.phraseIndex = map[string]int{}
	p.phraseOrder = nil

	for _, path := range args {
		if err := p.parseFile(path, total); err != nil {
			return err
		}
	}
	return nil
}

// parseFile interns every prefix of every phrase in path, then bumps
// total_features once by (2w+1) * slotsPerLength(longest), reserving a
// band of roles sized to the longest phrase this file contributed.
func (p *Gazetteers) parseFile(path string, total *int) error {
	data, err := readFileCached(p.cache, p.metrics, path)
	if err != nil {
		return &ParseError{Kind: ErrFileOpen, File: path, Msg: err.Error()}
	}

	w := p.Window()
	fileFeatureID := *total + w
	longest := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) > longest {
			longest = len(fields)
		}

		var phrase strings.Builder
		for k, tok := range fields {
			if k > 0 {
				phrase.WriteByte(' ')
			}
			phrase.WriteString(tok)
			prefix := phrase.String()

			idx, known := p.phraseIndex[prefix]
			if !known {
				idx = len(p.entries)
				p.phraseIndex[prefix] = idx
				p.phraseOrder = append(p.phraseOrder, prefix)
				p.entries = append(p.entries, &gazetteerEntry{})
			}
			entry := p.entries[idx]

			if k < len(fields)-1 {
				entry.prefixOfLonger = true
				continue
			}
			dup := false
			for _, existing := range entry.features {
				if existing == fileFeatureID {
					dup = true
					break
				}
			}
			if !dup {
				entry.features = append(entry.features, fileFeatureID)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return &ParseError{Kind: ErrFileFormat, File: path, Msg: err.Error()}
	}

	*total += (2*w + 1) * slotsPerLength(longest)
	return nil
}

// slotsPerLength reports how many role bands a file's longest phrase
// reserves: none for an empty file, G+U for a unigram-only file, G+U+B+L
// once a bigram appears, and the full G+U+B+L+I set from a trigram up.
func slotsPerLength(longest int) int {
	switch {
	case longest == 0:
		return 0
	case longest == 1:
		return 2
	case longest == 2:
		return 4
	default:
		return 5
	}
}

func (p *Gazetteers) Save(w *binaryWriter) error {
	if err := p.save(w); err != nil {
		return err
	}
	w.writeU32(uint32(len(p.entries)))
	for _, e := range p.entries {
		var flag uint8
		if e.prefixOfLonger {
			flag = 1
		}
		w.writeU8(flag)
		w.writeU8(uint8(len(e.features)))
		for _, f := range e.features {
			w.writeU32(uint32(f))
		}
	}
	w.writeU32(uint32(len(p.phraseOrder)))
	for _, phrase := range p.phraseOrder {
		w.writeString(phrase)
		w.writeU32(uint32(p.phraseIndex[phrase]))
	}
	return w.err
}

func (p *Gazetteers) Load(r *binaryReader, pipeline []Processor) error {
	if err := p.load(r); err != nil {
		return err
	}
	n := int(r.readU32())
	p.entries = make([]*gazetteerEntry, n)
	for i := range p.entries {
		flag := r.readU8()
		nf := int(r.readU8())
		feats := make([]int, nf)
		for j := range feats {
			feats[j] = int(r.readU32())
		}
		p.entries[i] = &gazetteerEntry{features: feats, prefixOfLonger: flag != 0}
	}
	nPhrases := int(r.readU32())
	p.phraseIndex = make(map[string]int, nPhrases)
	p.phraseOrder = make([]string, 0, nPhrases)
	for i := 0; i < nPhrases; i++ {
		phrase := r.readString()
		idx := int(r.readU32())
		p.phraseIndex[phrase] = idx
		p.phraseOrder = append(p.phraseOrder, phrase)
	}
	return r.err
}

func (p *Gazetteers) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	w := p.Window()
	band := 2*w + 1
	n := sent.Size()

	for i := 0; i < n; i++ {
		idx, ok := p.phraseIndex[sent.Words[i].RawLemma]
		if !ok {
			continue
		}
		entry := p.entries[idx]
		for _, f := range entry.features {
			p.EmitWindow(sent, i, f+roleG*band)
			p.EmitWindow(sent, i, f+roleU*band)
		}

		j := i
		phrase := sent.Words[i].RawLemma
		for entry.prefixOfLonger && j+1 < n {
			candidate := phrase + " " + sent.Words[j+1].RawLemma
			nidx, nok := p.phraseIndex[candidate]
			if !nok {
				break
			}
			j++
			phrase = candidate
			entry = p.entries[nidx]

			for g := i; g <= j; g++ {
				role := roleI
				switch g {
				case i:
					role = roleB
				case j:
					role = roleL
				}
				for _, f := range entry.features {
					p.EmitWindow(sent, g, f+roleG*band)
					p.EmitWindow(sent, g, f+role*band)
				}
			}
		}
	}
}
