// Package notation compiles plain-text scores into a score.Score.
//
// Three dialects share one note grammar: loose tokens split into measures by
// beat count, bracketed single-instrument measures, and group-prefixed
// multi-instrument lines that are zipped into simultaneous sections.
package notation

import (
	"math"
	"strings"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/score"
)

type Parser struct {
	cfg    ParserConfig
	tables *names.Tables
}

// NewParser returns a parser resolving names through tables. A nil tables
// uses names.Default().
func NewParser(cfg ParserConfig, tables *names.Tables) *Parser {
	if tables == nil {
		tables = names.Default()
	}
	return &Parser{cfg: cfg, tables: tables}
}

// Parse compiles text into a Score. No partial Score is returned on error.
func (p *Parser) Parse(text string) (*score.Score, error) {
	lines := contentLines(text)
	mode := p.classify(lines)
	if mode == MultiInstrument && len(lines) > 0 && p.isSentinel(lines[0].text) {
		lines = lines[1:]
	}
	h, lines, err := p.readHeader(lines)
	if err != nil {
		return nil, err
	}
	vocals := map[string]string{}
	var measures []score.Measure
	switch mode {
	case Loose:
		measures, err = p.assembleLoose(lines, h)
	case SingleInstrument:
		measures, err = p.assembleSingle(lines, h)
	case MultiInstrument:
		measures, vocals, err = p.assembleMulti(lines, h)
	}
	if err != nil {
		return nil, err
	}
	if len(measures) == 0 {
		return nil, &StructuralError{Reason: "score has no measures"}
	}
	return &score.Score{
		BeatsPerMeasure: h.beatsPerMeasure,
		BeatSize:        h.beatSize,
		BPM:             h.bpm,
		Vocals:          vocals,
		Measures:        measures,
	}, nil
}

// Classify reports which dialect Parse would use for text.
func (p *Parser) Classify(text string) Mode {
	return p.classify(contentLines(text))
}

// ParseNote parses a single note token outside of any score.
func (p *Parser) ParseNote(tok string) (score.Note, error) {
	return p.parseNote(tok, 0, nil)
}

type rawMeasure struct {
	instrument    string
	hasInstrument bool
	body          string
}

func (m rawMeasure) fragment() string { return "[" + m.body + "]" }

// scanMeasures splits `({instrument})? [tokens]` runs. Only whitespace may
// separate measures.
func scanMeasures(l sourceLine, s string) ([]rawMeasure, error) {
	var out []rawMeasure
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return out, nil
		}
		var m rawMeasure
		if s[i] == '{' {
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, &StructuralError{Line: l.num, Text: s[i:], Reason: "unclosed '{'"}
			}
			m.instrument = strings.TrimSpace(s[i+1 : i+end])
			m.hasInstrument = true
			i += end + 1
			for i < len(s) && isSpace(s[i]) {
				i++
			}
			if i >= len(s) || s[i] != '[' {
				return nil, &StructuralError{Line: l.num, Text: s[i:], Reason: "instrument braces must precede a measure"}
			}
		}
		if s[i] != '[' {
			return nil, &StructuralError{Line: l.num, Text: s[i:], Reason: "unexpected text outside measures"}
		}
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			return nil, &StructuralError{Line: l.num, Text: s[i:], Reason: "unclosed '['"}
		}
		m.body = s[i+1 : i+end]
		if strings.ContainsAny(m.body, "[{}") {
			return nil, &StructuralError{Line: l.num, Text: s[i : i+end+1], Reason: "nested brackets"}
		}
		out = append(out, m)
		i += end + 1
	}
}

// buildSection parses a measure body and checks its beat total.
func (p *Parser) buildSection(l sourceLine, m rawMeasure, group string, instrument int, vocals map[string]string, h header) (score.Section, error) {
	tokens := strings.Fields(m.body)
	notes := make([]score.Note, 0, len(tokens))
	for _, tok := range tokens {
		n, err := p.parseNote(tok, l.num, vocals)
		if err != nil {
			return score.Section{}, err
		}
		notes = append(notes, n)
	}
	sec := score.Section{GroupName: group, Instrument: instrument, Notes: notes}
	beats := sec.BeatCount(h.beatSize)
	if math.Abs(beats-float64(h.beatsPerMeasure)) > p.cfg.BeatTolerance {
		return score.Section{}, &BeatCountMismatchError{
			Line:     l.num,
			Expected: float64(h.beatsPerMeasure),
			Actual:   beats,
			Fragment: m.fragment(),
		}
	}
	return sec, nil
}

func (p *Parser) instrument(name string, line int) (int, error) {
	id, ok := p.tables.Instrument(name)
	if !ok {
		return 0, &UnknownSymbolError{Line: line, Kind: SymbolInstrument, Symbol: name}
	}
	return id, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' }
