package features

import (
	"strconv"

	"nerfeatures/internal/sentence"
)

// NumericTimeValue emits calendar/clock features for tokens that are
// (or almost are) bare numbers: hour, minute, day, month, year, and a
// composite "time" feature for HH.MM / HH:MM tokens.
type NumericTimeValue struct {
	*Base
	noopEntities

	hour, minute, day, month, year, time int
}

func newNumericTimeValue() *NumericTimeValue { return &NumericTimeValue{Base: NewBase(0)} }

func (p *NumericTimeValue) Name() string { return "NumericTimeValue" }

func (p *NumericTimeValue) Parse(window int, args []string, entityTypes *EntityTypes, total *int) error {
	if len(args) != 0 {
		return &ParseError{Kind: ErrConfigArity, Msg: "NumericTimeValue takes no arguments"}
	}
	p.Base = NewBase(window)
	p.hour = p.Lookup("H", total)
	p.minute = p.Lookup("M", total)
	p.time = p.Lookup("t", total)
	p.day = p.Lookup("d", total)
	p.month = p.Lookup("m", total)
	p.year = p.Lookup("y", total)
	return nil
}

func (p *NumericTimeValue) Save(w *binaryWriter) error { return p.save(w) }

func (p *NumericTimeValue) Load(r *binaryReader, pipeline []Processor) error {
	if err := p.load(r); err != nil {
		return err
	}
	p.hour, p.minute, p.time = p.intern["H"], p.intern["M"], p.intern["t"]
	p.day, p.month, p.year = p.intern["d"], p.intern["m"], p.intern["y"]
	return nil
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// leadingDigits returns the longest ASCII-digit prefix of s.
func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func (p *NumericTimeValue) ProcessSentence(sent *sentence.Sentence, total *int, scratch *[]byte) {
	for i, word := range sent.Words {
		form := word.Form
		digits := leadingDigits(form)
		if digits == "" {
			continue
		}

		if digits == form {
			v, err := strconv.Atoi(digits)
			if err != nil {
				continue
			}
			if v < 24 {
				p.EmitWindow(sent, i, p.hour)
			}
			if v < 60 {
				p.EmitWindow(sent, i, p.minute)
			}
			if v >= 1 && v <= 31 {
				p.EmitWindow(sent, i, p.day)
			}
			if v >= 1 && v <= 12 {
				p.EmitWindow(sent, i, p.month)
			}
			if v >= 1000 && v <= 2200 {
				p.EmitWindow(sent, i, p.year)
			}
			continue
		}

		rest := form[len(digits):]
		if len(rest) < 2 || (rest[0] != '.' && rest[0] != ':') {
			continue
		}
		first, err := strconv.Atoi(digits)
		if err != nil || first >= 24 {
			continue
		}
		second := rest[1:]
		if !isASCIIDigits(second) {
			continue
		}
		v2, err := strconv.Atoi(second)
		if err != nil || v2 >= 60 {
			continue
		}
		p.EmitWindow(sent, i, p.time)
	}
}
