package notation

import (
	"math"
	"strings"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/score"
)

// assembleSingle turns every bracketed measure into a one-section Measure.
// A bare instrument name at the start of a line applies to the whole line; a
// {Instrument} applies to the measure it precedes.
func (p *Parser) assembleSingle(lines []sourceLine, h header) ([]score.Measure, error) {
	var measures []score.Measure
	for _, l := range lines {
		lineInstrument := p.cfg.DefaultInstrument
		start := strings.IndexAny(l.text, "[{")
		if start < 0 {
			return nil, &StructuralError{Line: l.num, Text: l.text, Reason: "expected a bracketed measure"}
		}
		if prefix := strings.TrimSpace(l.text[:start]); prefix != "" {
			id, err := p.instrument(prefix, l.num)
			if err != nil {
				return nil, err
			}
			lineInstrument = id
		}
		raw, err := scanMeasures(l, l.text[start:])
		if err != nil {
			return nil, err
		}
		for _, m := range raw {
			instrument := lineInstrument
			if m.hasInstrument {
				if instrument, err = p.instrument(m.instrument, l.num); err != nil {
					return nil, err
				}
			}
			if instrument == names.Vocal {
				return nil, &StructuralError{Line: l.num, Text: l.text, Reason: "vocal sections need multi-instrument mode"}
			}
			sec, err := p.buildSection(l, m, p.tables.InstrumentName(instrument), instrument, nil, h)
			if err != nil {
				return nil, err
			}
			measures = append(measures, score.Measure{Sections: []score.Section{sec}})
		}
	}
	return measures, nil
}

// assembleLoose fills measures greedily from bare tokens. A token that would
// overflow the measure is an error; a trailing partial measure is kept.
func (p *Parser) assembleLoose(lines []sourceLine, h header) ([]score.Measure, error) {
	var (
		measures   []score.Measure
		pending    []score.Note
		pendingTok []string
		beats      float64
		current    = p.cfg.DefaultInstrument
	)
	limit := float64(h.beatsPerMeasure)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		measures = append(measures, score.Measure{Sections: []score.Section{{
			GroupName:  p.tables.InstrumentName(current),
			Instrument: current,
			Notes:      pending,
		}}})
		pending, pendingTok, beats = nil, nil, 0
	}
	for _, l := range lines {
		instrument, tokens, err := p.looseLine(l)
		if err != nil {
			return nil, err
		}
		if instrument != current {
			flush()
			current = instrument
		}
		for _, tok := range tokens {
			n, err := p.parseNote(tok, l.num, nil)
			if err != nil {
				return nil, err
			}
			total := beats + n.BeatCount(h.beatSize)
			if total > limit+p.cfg.BeatTolerance {
				return nil, &BeatCountMismatchError{
					Line:     l.num,
					Expected: limit,
					Actual:   total,
					Fragment: strings.Join(append(pendingTok, tok), " "),
				}
			}
			pending = append(pending, n)
			pendingTok = append(pendingTok, tok)
			beats = total
			if math.Abs(total-limit) <= p.cfg.BeatTolerance {
				flush()
			}
		}
	}
	flush()
	return measures, nil
}

// looseLine splits off an optional {Instrument} or bare instrument word.
func (p *Parser) looseLine(l sourceLine) (int, []string, error) {
	instrument := p.cfg.DefaultInstrument
	text := l.text
	if strings.HasPrefix(text, "{") {
		end := strings.IndexByte(text, '}')
		if end < 0 {
			return 0, nil, &StructuralError{Line: l.num, Text: text, Reason: "unclosed '{'"}
		}
		id, err := p.instrument(strings.TrimSpace(text[1:end]), l.num)
		if err != nil {
			return 0, nil, err
		}
		instrument = id
		text = text[end+1:]
	} else if fields := strings.Fields(text); len(fields) > 0 {
		if _, isPitch := p.tables.Pitch(fields[0]); !isPitch {
			if id, ok := p.tables.Instrument(fields[0]); ok {
				instrument = id
				text = text[len(fields[0]):]
			}
		}
	}
	if instrument == names.Vocal {
		return 0, nil, &StructuralError{Line: l.num, Text: l.text, Reason: "vocal sections need multi-instrument mode"}
	}
	return instrument, strings.Fields(text), nil
}
