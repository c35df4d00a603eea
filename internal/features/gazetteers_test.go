package features

import (
	"testing"

	"nerfeatures/internal/sentence"
)

// TestGazetteers_ScenarioFour follows spec §8 scenario 4: a file containing
// "new york", "new york city", and "york", matched against the sentence
// ["new","york","city","tomorrow"]. "new york city" is the longest match
// starting at 0 (B/I/L across positions 0-2); "york" alone also fires as a
// unigram match at position 1 (since it is also a standalone phrase).
func TestGazetteers_ScenarioFour(t *testing.T) {
	path := writeTempFile(t, "new york\nnew york city\nyork\n")
	p := newGazetteers()
	total := 0
	if err := p.Parse(1, []string{path}, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	sent := sentence.New([]sentence.Word{
		{RawLemma: "new"},
		{RawLemma: "york"},
		{RawLemma: "city"},
		{RawLemma: "tomorrow"},
	})
	p.ProcessSentence(sent, &total, nil)

	if len(sent.Features[3]) != 0 {
		t.Errorf("tomorrow: got %v, want no gazetteer features", sent.Features[3])
	}
	// Every token in the "new york city" match plus the standalone "york"
	// unigram match should carry at least one feature.
	for i := 0; i < 3; i++ {
		if len(sent.Features[i]) == 0 {
			t.Errorf("position %d: expected gazetteer features, got none", i)
		}
	}
}

func TestGazetteers_PhraseIndexSharedAcrossFiles(t *testing.T) {
	fileA := writeTempFile(t, "prague\n")
	fileB := writeTempFile(t, "prague\n")
	p := newGazetteers()
	total := 0
	if err := p.Parse(0, []string{fileA, fileB}, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	idx, ok := p.phraseIndex["prague"]
	if !ok {
		t.Fatalf("expected prague to be interned")
	}
	entry := p.entries[idx]
	if len(entry.features) != 2 {
		t.Fatalf("prague appearing as a full phrase in two files should carry 2 feature ids, got %d: %v", len(entry.features), entry.features)
	}
	if entry.features[0] == entry.features[1] {
		t.Errorf("the two files' feature ids must be distinct, got %v", entry.features)
	}
}

func TestGazetteers_SlotsPerLength(t *testing.T) {
	cases := []struct {
		longest int
		want    int
	}{
		{0, 0},
		{1, 2},
		{2, 4},
		{3, 5},
		{10, 5},
	}
	for _, c := range cases {
		if got := slotsPerLength(c.longest); got != c.want {
			t.Errorf("slotsPerLength(%d) = %d, want %d", c.longest, got, c.want)
		}
	}
}

func TestGazetteers_NoMatchAtSentenceEnd_StopsExtension(t *testing.T) {
	path := writeTempFile(t, "new york\n")
	p := newGazetteers()
	total := 0
	if err := p.Parse(0, []string{path}, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sent := sentence.New([]sentence.Word{{RawLemma: "new"}, {RawLemma: "orleans"}})
	p.ProcessSentence(sent, &total, nil)
	if len(sent.Features[0]) != 0 {
		t.Errorf("new (not followed by york) should not match, got %v", sent.Features[0])
	}
}

func TestGazetteers_ArityRejected(t *testing.T) {
	p := newGazetteers()
	total := 0
	err := p.Parse(0, nil, NewEntityTypes(), &total)
	if err == nil {
		t.Fatalf("expected an arity error")
	}
}

func TestGazetteers_SaveLoad_RoundTrip(t *testing.T) {
	path := writeTempFile(t, "new york\nyork\n")
	p := newGazetteers()
	total := 0
	if err := p.Parse(1, []string{path}, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	buf := newRoundTripBuffer()
	if err := p.Save(buf.writer()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p2 := newGazetteers()
	if err := p2.Load(buf.reader(), nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p2.entries) != len(p.entries) {
		t.Fatalf("entries: got %d, want %d", len(p2.entries), len(p.entries))
	}
	if len(p2.phraseIndex) != len(p.phraseIndex) {
		t.Fatalf("phraseIndex size: got %d, want %d", len(p2.phraseIndex), len(p.phraseIndex))
	}
	for phrase, idx := range p.phraseIndex {
		idx2, ok := p2.phraseIndex[phrase]
		if !ok || idx2 != idx {
			t.Errorf("phraseIndex[%q]: got (%d,%v), want (%d,true)", phrase, idx2, ok, idx)
		}
	}
}
