package features

import (
	"testing"

	"nerfeatures/internal/sentence"
)

// TestNumericTimeValue_BareNumberRanges follows the literal rule text of
// spec §4.5 rather than its worked example, which is internally
// inconsistent about the year boundary; see DESIGN.md.
func TestNumericTimeValue_BareNumberRanges(t *testing.T) {
	p := newNumericTimeValue()
	total := 0
	if err := p.Parse(0, nil, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sent := sentence.New([]sentence.Word{
		{Form: "05"},   // hour, minute, day, month
		{Form: "45"},   // minute only
		{Form: "2024"}, // year only
		{Form: "abc"},  // no leading digits: nothing
	})
	p.ProcessSentence(sent, &total, nil)

	has := func(pos, id int) bool {
		for _, f := range sent.Features[pos] {
			if f == id {
				return true
			}
		}
		return false
	}

	if !has(0, p.hour) || !has(0, p.minute) || !has(0, p.day) || !has(0, p.month) {
		t.Errorf("05: got %v, want hour+minute+day+month", sent.Features[0])
	}
	if has(0, p.year) {
		t.Errorf("05: should not be a plausible year")
	}

	if has(1, p.hour) {
		t.Errorf("45: should not be a plausible hour")
	}
	if !has(1, p.minute) {
		t.Errorf("45: should be a plausible minute")
	}

	if !has(2, p.year) {
		t.Errorf("2024: should be a plausible year")
	}
	if has(2, p.hour) || has(2, p.minute) || has(2, p.day) || has(2, p.month) {
		t.Errorf("2024: got %v, want only year", sent.Features[2])
	}

	if len(sent.Features[3]) != 0 {
		t.Errorf("abc: got %v, want nothing", sent.Features[3])
	}
}

func TestNumericTimeValue_CompositeTimeToken(t *testing.T) {
	p := newNumericTimeValue()
	total := 0
	if err := p.Parse(0, nil, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sent := sentence.New([]sentence.Word{
		{Form: "14:30"},
		{Form: "14.30"},
		{Form: "25:30"}, // hour out of range: not a composite time
		{Form: "14:99"}, // minute out of range: not a composite time
	})
	p.ProcessSentence(sent, &total, nil)

	has := func(pos int) bool {
		for _, f := range sent.Features[pos] {
			if f == p.time {
				return true
			}
		}
		return false
	}

	if !has(0) {
		t.Errorf("14:30 should emit the composite time feature")
	}
	if !has(1) {
		t.Errorf("14.30 should emit the composite time feature")
	}
	if has(2) {
		t.Errorf("25:30 should not emit the composite time feature")
	}
	if has(3) {
		t.Errorf("14:99 should not emit the composite time feature")
	}
}

func TestNumericTimeValue_SaveLoad_ReconstructsReservedIDs(t *testing.T) {
	p := newNumericTimeValue()
	total := 0
	if err := p.Parse(2, nil, NewEntityTypes(), &total); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	buf := newRoundTripBuffer()
	if err := p.Save(buf.writer()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p2 := newNumericTimeValue()
	if err := p2.Load(buf.reader(), nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p2.hour != p.hour || p2.minute != p.minute || p2.time != p.time ||
		p2.day != p.day || p2.month != p.month || p2.year != p.year {
		t.Errorf("reconstructed ids mismatch: got %+v, want matching %+v", p2, p)
	}
}
