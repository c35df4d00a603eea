// Package features implements the sealed registry of feature processors
// that turn a tokenized, morphologically annotated sentence into sparse
// integer features, plus the two post-processors that seed local BILOU
// probabilities (URLEmailDetector) and synthesize container entities
// (CzechAddContainers).
//
// Feature ids are numbered globally across all processors, allocated
// monotonically during Model.ParseConfig, and must survive a Save/Load round
// trip bit for bit.
package features

import "nerfeatures/internal/sentence"

// Processor is the polymorphic contract every feature processor variant
// satisfies. It is implemented as a sealed set of concrete types (see
// factory.go) rather than an open interface consumers can add to.
type Processor interface {
	// Name returns the processor's canonical registry name.
	Name() string

	// Parse consumes training-time configuration arguments, allocating
	// feature ids by calling the base lookup helper or by direct
	// arithmetic on total. Returns a *ParseError on failure.
	Parse(window int, args []string, entityTypes *EntityTypes, total *int) error

	// Save writes the processor's base state (window, intern table) and
	// any variant-specific state, in the order fixed by section 6 of the
	// model's binary layout.
	Save(w *binaryWriter) error

	// Load reads state written by Save. pipeline is the list of
	// processors already loaded earlier in the same model file, in case
	// a future variant needs to refer back to one; none of the current
	// thirteen variants do.
	Load(r *binaryReader, pipeline []Processor) error

	// ProcessSentence emits features into sent.Features by calling the
	// window-emission primitive. total allows a processor to intern a
	// previously-unseen key at inference time exactly as it would during
	// training. The default implementation is a no-op.
	ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte)

	// ProcessEntities post-processes predicted entities. The default
	// implementation is a no-op; only CzechAddContainers overrides it.
	ProcessEntities(sent *sentence.Sentence, entities *[]sentence.NamedEntity, buffer *[]byte)
}

// Base holds the state common to every processor variant: the window
// half-width and the interned string → base-feature-id table described in
// spec section 3. Every allocated entry reserves exactly 2*window+1
// contiguous ids; the empty-string key is reserved and never allocates,
// always returning the sentinel value window itself.
type Base struct {
	window int

	intern      map[string]int // key -> base (center) feature id
	internOrder []string       // insertion order, for byte-identical Save
}

// NewBase returns a Base with the given window half-width.
func NewBase(window int) *Base {
	return &Base{window: window, intern: make(map[string]int)}
}

// Window returns the processor's window half-width.
func (b *Base) Window() int { return b.window }

// Lookup is the interning capability described in spec section 2: for an
// empty key it returns the sentinel window without allocating; for a
// known key it returns the cached base id; for a new key it allocates
// 2*window+1 consecutive ids from total and returns the center id.
func (b *Base) Lookup(key string, total *int) int {
	if key == "" {
		return b.window
	}
	if id, ok := b.intern[key]; ok {
		return id
	}
	id := *total + b.window
	*total += 2*b.window + 1
	b.intern[key] = id
	b.internOrder = append(b.internOrder, key)
	return id
}

// Emit writes f+(p-i) into sent.Features[p] for every position p in the
// clipped range [max(0, i+L), min(size-1, i+R)]. If f is the unknown
// sentinel (equal to the processor's window), Emit does nothing.
func (b *Base) Emit(sent *sentence.Sentence, i, f, l, r int) {
	if f == b.window {
		return
	}
	size := sent.Size()
	lo, hi := i+l, i+r
	if lo < 0 {
		lo = 0
	}
	if hi > size-1 {
		hi = size - 1
	}
	for p := lo; p <= hi; p++ {
		sent.Features[p] = append(sent.Features[p], f+(p-i))
	}
}

// EmitWindow emits f into the default ±window band around token i.
func (b *Base) EmitWindow(sent *sentence.Sentence, i, f int) {
	b.Emit(sent, i, f, -b.window, b.window)
}

// EmitOuterWindow emits f at the virtual border positions -1..-window and
// size..size+window-1, by invoking Emit centered on those out-of-bounds
// indices; clipping confines the writes to real edge tokens.
func (b *Base) EmitOuterWindow(sent *sentence.Sentence, f int) {
	if f == b.window {
		return
	}
	for i := -1; i >= -b.window; i-- {
		b.Emit(sent, i, f, -b.window, b.window)
	}
	size := sent.Size()
	for i := size; i < size+b.window; i++ {
		b.Emit(sent, i, f, -b.window, b.window)
	}
}

// save writes the base state: window, intern-table size, then each entry
// as {len:4B, bytes, feature_id:4B}.
func (b *Base) save(w *binaryWriter) error {
	w.writeU32(uint32(b.window))
	w.writeU32(uint32(len(b.internOrder)))
	for _, k := range b.internOrder {
		w.writeString(k)
		w.writeU32(uint32(b.intern[k]))
	}
	return w.err
}

// load reads state written by save into a fresh Base.
func (b *Base) load(r *binaryReader) error {
	b.window = int(r.readU32())
	n := int(r.readU32())
	b.intern = make(map[string]int, n)
	b.internOrder = make([]string, 0, n)
	for i := 0; i < n; i++ {
		k := r.readString()
		id := int(r.readU32())
		b.intern[k] = id
		b.internOrder = append(b.internOrder, k)
	}
	return r.err
}

// noopEntities is embedded by every processor that does not override
// ProcessEntities.
type noopEntities struct{}

func (noopEntities) ProcessEntities(*sentence.Sentence, *[]sentence.NamedEntity, *[]byte) {}

// noopSentence is embedded by CzechAddContainers, the only processor with
// no per-sentence pass.
type noopSentence struct{}

func (noopSentence) ProcessSentence(*sentence.Sentence, *int, *[]byte) {}

// EntityTypes is the training-time registry mapping entity type names to
// the small integer ids stored in Stage.Entity and LocalProbabilities.
// It is shared across all processors in a Model, analogous to the global
// total-features counter.
type EntityTypes struct {
	names []string
	index map[string]sentence.EntityType
}

// NewEntityTypes returns an empty registry. Id 0 is reserved as "unknown".
func NewEntityTypes() *EntityTypes {
	return &EntityTypes{names: []string{""}, index: map[string]sentence.EntityType{}}
}

// Register returns the id for name, assigning a new one if name has not
// been seen before.
func (e *EntityTypes) Register(name string) sentence.EntityType {
	if id, ok := e.index[name]; ok {
		return id
	}
	id := sentence.EntityType(len(e.names))
	e.names = append(e.names, name)
	e.index[name] = id
	return id
}

// Lookup returns the id registered for name, if any.
func (e *EntityTypes) Lookup(name string) (sentence.EntityType, bool) {
	id, ok := e.index[name]
	return id, ok
}

// Name returns the registered name for id, or "" if unknown.
func (e *EntityTypes) Name(id sentence.EntityType) string {
	if int(id) < 0 || int(id) >= len(e.names) {
		return ""
	}
	return e.names[id]
}

// Names returns every registered entity type name, including the
// reserved "" at index 0.
func (e *EntityTypes) Names() []string { return e.names }
