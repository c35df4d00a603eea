package features

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"nerfeatures/internal/metrics"
	"nerfeatures/internal/sentence"
)

// Model is the ordered processor pipeline plus the shared mutable state
// every processor's Parse allocates from: the global feature-id counter
// and the entity-type registry. The processor order is itself part of
// the model and must be preserved exactly across Save/Load.
type Model struct {
	Processors    []Processor
	TotalFeatures int
	EntityTypes   *EntityTypes

	// Cache, if set, is handed to every CacheAware processor (BrownClusters,
	// Gazetteers) before Parse runs, so repeated builds over an unchanged
	// source file skip re-reading it.
	Cache Cache

	// Metrics, if set, is handed to every MetricsAware processor before
	// Parse runs, and is updated directly by ProcessSentence/ProcessEntities.
	Metrics *metrics.Metrics
}

// NewModel returns an empty model ready to accept training configuration
// lines.
func NewModel() *Model {
	return &Model{EntityTypes: NewEntityTypes()}
}

// ParseLine parses one training configuration line of the form
// "<ProcessorName> <window> <arg1> <arg2> ...", constructs the named
// processor via the factory, and appends it to the pipeline. Feature ids
// it allocates come from the model's shared counter, in registration
// order.
func (m *Model) ParseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return &ParseError{Kind: ErrConfigArity, Msg: "expected <ProcessorName> <window> [args...]"}
	}
	name, windowArg, args := fields[0], fields[1], fields[2:]

	window, err := strconv.Atoi(windowArg)
	if err != nil || window < 0 {
		return &ParseError{Kind: ErrBadInteger, Arg: windowArg, Msg: "window must be a non-negative integer"}
	}

	proc, err := newProcessor(name)
	if err != nil {
		return err
	}
	if ca, ok := proc.(CacheAware); ok && m.Cache != nil {
		ca.SetCache(m.Cache)
	}
	if ma, ok := proc.(MetricsAware); ok && m.Metrics != nil {
		ma.SetMetrics(m.Metrics)
	}
	if err := proc.Parse(window, args, m.EntityTypes, &m.TotalFeatures); err != nil {
		return err
	}
	m.Processors = append(m.Processors, proc)
	return nil
}

// ParseConfig parses a full training configuration, one processor per
// line. Blank lines and lines beginning with '#' are skipped.
func (m *Model) ParseConfig(lines []string) error {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := m.ParseLine(trimmed); err != nil {
			if pe, ok := err.(*ParseError); ok && pe.Line == 0 {
				pe.Line = i + 1
			}
			return err
		}
	}
	return nil
}

// Save writes the whole model: the shared state, the entity-type
// registry, then each processor's name followed by its own Save output,
// in registration order.
func (m *Model) Save(w *binaryWriter) error {
	w.writeU32(uint32(m.TotalFeatures))

	w.writeU32(uint32(len(m.EntityTypes.names)))
	for _, name := range m.EntityTypes.names {
		w.writeString(name)
	}

	w.writeU32(uint32(len(m.Processors)))
	for _, p := range m.Processors {
		w.writeString(p.Name())
		if err := p.Save(w); err != nil {
			return err
		}
	}
	return w.err
}

// Load reconstructs a Model previously written by Save. load assumes a
// trusted, well-formed file; a short read surfaces as the binaryReader's
// own accumulated error.
func Load(r *binaryReader) (*Model, error) {
	m := &Model{}
	m.TotalFeatures = int(r.readU32())

	nTypes := int(r.readU32())
	names := make([]string, nTypes)
	index := make(map[string]sentence.EntityType, nTypes)
	for i := range names {
		names[i] = r.readString()
		index[names[i]] = sentence.EntityType(i)
	}
	m.EntityTypes = &EntityTypes{names: names, index: index}

	nProcs := int(r.readU32())
	m.Processors = make([]Processor, 0, nProcs)
	for i := 0; i < nProcs; i++ {
		name := r.readString()
		proc, err := newProcessor(name)
		if err != nil {
			return nil, err
		}
		if err := proc.Load(r, m.Processors); err != nil {
			return nil, fmt.Errorf("loading processor %d (%s): %w", i, name, err)
		}
		m.Processors = append(m.Processors, proc)
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// SaveModel writes model to w using the binary layout from section 6:
// shared state, entity-type registry, then each processor in
// registration order.
func SaveModel(model *Model, w io.Writer) error {
	return model.Save(&binaryWriter{w: w})
}

// LoadModel reconstructs a Model previously written by SaveModel.
func LoadModel(r io.Reader) (*Model, error) {
	return Load(&binaryReader{r: r})
}

// ProcessSentence runs every processor's ProcessSentence in registration
// order, growing sent.Features in place. scratch is reused across calls
// and must not be assumed to hold any particular prior contents.
func (m *Model) ProcessSentence(sent *sentence.Sentence, scratch *[]byte) {
	var start time.Time
	if m.Metrics != nil {
		start = time.Now()
	}
	for _, p := range m.Processors {
		p.ProcessSentence(sent, &m.TotalFeatures, scratch)
	}
	if m.Metrics != nil {
		m.Metrics.SentencesProcessed.Add(1)
		var emitted int64
		for _, f := range sent.Features {
			emitted += int64(len(f))
		}
		m.Metrics.FeaturesEmitted.Add(emitted)
		m.Metrics.RecordSentenceLatency(time.Since(start))
	}
}

// ProcessEntities runs every processor's ProcessEntities in registration
// order over a predicted entity list. Only CzechAddContainers currently
// does anything here; it may replace *entities with a longer,
// non-position-sorted list that includes synthesized containers.
func (m *Model) ProcessEntities(sent *sentence.Sentence, entities *[]sentence.NamedEntity, buffer *[]byte) {
	before := len(*entities)
	for _, p := range m.Processors {
		p.ProcessEntities(sent, entities, buffer)
	}
	if m.Metrics != nil {
		if synthesized := len(*entities) - before; synthesized > 0 {
			m.Metrics.EntitiesSynthesized.Add(int64(synthesized))
		}
	}
}
