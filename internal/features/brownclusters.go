package features

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"nerfeatures/internal/metrics"
	"nerfeatures/internal/sentence"
)

// BrownClusters emits one feature per requested prefix length of the
// Brown cluster bit-string assigned to a token's raw lemma, plus an
// implicit whole-string prefix that is always included.
//
// The generic base intern table doubles as the prefix-string → feature-id
// map described in spec section 4.7 (prefixes_map): every new prefix
// substring reserves a fresh 2*window+1 band exactly like any other base
// Lookup call, which — since parse() calls never interleave across
// processors — yields the identical ids the spec's batched
// "total_features += (2w+1) * len(prefixes_map)" formula would.
type BrownClusters struct {
	*Base
	noopEntities

	clusters  [][]int        // cluster id -> its interned prefix feature ids
	formMap   map[string]int // raw_lemma -> cluster id
	formOrder []string       // insertion order, for byte-identical Save

	cache   Cache            // optional; see buildcache.go
	metrics *metrics.Metrics // optional; see buildcache.go
}

// SetCache wires an optional build cache, consulted for the cluster file
// on the next Parse call.
func (p *BrownClusters) SetCache(c Cache) { p.cache = c }

// SetMetrics wires an optional metrics sink, updated with cache hit/miss
// counts on the next Parse call.
func (p *BrownClusters) SetMetrics(m *metrics.Metrics) { p.metrics = m }

func newBrownClusters() *BrownClusters {
	return &BrownClusters{Base: NewBase(0), formMap: map[string]int{}}
}

func (p *BrownClusters) Name() string { return "BrownClusters" }

func (p *BrownClusters) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) < 1 {
		return &ParseError{Kind: ErrConfigArity, Msg: "BrownClusters requires a cluster file path"}
	}
	path := args[0]
	lengths := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			return &ParseError{Kind: ErrBadInteger, Arg: a, Msg: "prefix length must be a positive integer"}
		}
		lengths = append(lengths, n)
	}

	p.Base = NewBase(window)
	p.formMap = map[string]int{}
	p.formOrder = nil
	p.clusters = nil

	data, err := readFileCached(p.cache, p.metrics, path)
	if err != nil {
		return &ParseError{Kind: ErrFileOpen, File: path, Msg: err.Error()}
	}

	clusterIDs := map[string]int{}
	lineNo := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return &ParseError{Kind: ErrFileFormat, File: path, Line: lineNo, Msg: "expected <cluster_bits>\\t<form>"}
		}
		clusterBits, form := fields[0], fields[1]

		if _, dup := p.formMap[form]; dup {
			return &ParseError{Kind: ErrDuplicateKey, File: path, Line: lineNo, Arg: form, Msg: "form already seen in this file"}
		}

		cid, known := clusterIDs[clusterBits]
		if !known {
			cid = len(p.clusters)
			clusterIDs[clusterBits] = cid
			p.clusters = append(p.clusters, p.internClusterPrefixes(clusterBits, lengths, total))
		}
		p.formMap[form] = cid
		p.formOrder = append(p.formOrder, form)
	}
	if err := scanner.Err(); err != nil {
		return &ParseError{Kind: ErrFileFormat, File: path, Msg: err.Error()}
	}

	return nil
}

// internClusterPrefixes interns every requested prefix substring of
// clusterBits and returns the deduplicated list of feature ids for one
// cluster. The implicit whole-string prefix is always included; an
// explicit requested length is only honored when it is strictly shorter
// than the cluster string (open question: lengths >= the string's own
// length are silently skipped, never treated as a duplicate of the
// whole-string entry).
func (p *BrownClusters) internClusterPrefixes(clusterBits string, lengths []int, total *int) []int {
	var feats []int
	seen := map[int]bool{}
	add := func(sub string) {
		id := p.Lookup(sub, total)
		if !seen[id] {
			seen[id] = true
			feats = append(feats, id)
		}
	}

	add(clusterBits)
	for _, l := range lengths {
		if l < len(clusterBits) {
			add(clusterBits[:l])
		}
	}
	return feats
}

func (p *BrownClusters) Save(w *binaryWriter) error {
	if err := p.save(w); err != nil {
		return err
	}
	w.writeU32(uint32(len(p.clusters)))
	for _, feats := range p.clusters {
		w.writeU32(uint32(len(feats)))
		for _, f := range feats {
			w.writeU32(uint32(f))
		}
	}
	w.writeU32(uint32(len(p.formOrder)))
	for _, form := range p.formOrder {
		w.writeString(form)
		w.writeU32(uint32(p.formMap[form]))
	}
	return w.err
}

func (p *BrownClusters) Load(r *binaryReader, pipeline []Processor) error {
	if err := p.load(r); err != nil {
		return err
	}
	nClusters := int(r.readU32())
	p.clusters = make([][]int, nClusters)
	for i := range p.clusters {
		n := int(r.readU32())
		feats := make([]int, n)
		for j := range feats {
			feats[j] = int(r.readU32())
		}
		p.clusters[i] = feats
	}
	nForms := int(r.readU32())
	p.formMap = make(map[string]int, nForms)
	p.formOrder = make([]string, 0, nForms)
	for i := 0; i < nForms; i++ {
		form := r.readString()
		cid := int(r.readU32())
		p.formMap[form] = cid
		p.formOrder = append(p.formOrder, form)
	}
	return r.err
}

func (p *BrownClusters) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		cid, ok := p.formMap[word.RawLemma]
		if !ok {
			continue
		}
		for _, f := range p.clusters[cid] {
			p.EmitWindow(sent, i, f)
		}
	}
}
