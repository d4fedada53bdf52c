package notation

import (
	"strings"
)

// Mode is the dialect a score is written in.
type Mode int

const (
	// Loose is bare note tokens, split into measures by beat count.
	Loose Mode = iota
	// SingleInstrument is one bracketed measure after another.
	SingleInstrument
	// MultiInstrument is group/instrument-prefixed lines zipped into
	// simultaneous sections.
	MultiInstrument
)

func (m Mode) String() string {
	switch m {
	case SingleInstrument:
		return "single-instrument"
	case MultiInstrument:
		return "multi-instrument"
	default:
		return "loose"
	}
}

type sourceLine struct {
	num  int
	text string
}

// contentLines drops blank lines and '#' comments and trims the rest.
func contentLines(text string) []sourceLine {
	raw := strings.Split(text, "\n")
	out := make([]sourceLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		out = append(out, sourceLine{num: i + 1, text: l})
	}
	return out
}

func (p *Parser) classify(lines []sourceLine) Mode {
	bracketed := false
	for _, l := range lines {
		if strings.ContainsAny(l.text, "[]") {
			bracketed = true
			break
		}
	}
	if !bracketed {
		return Loose
	}
	if len(lines) > 0 && p.isSentinel(lines[0].text) {
		return MultiInstrument
	}
	for _, l := range lines {
		if hasPrefixColon(l.text) {
			return MultiInstrument
		}
	}
	return SingleInstrument
}

func (p *Parser) isSentinel(s string) bool {
	return p.cfg.MultiInstrumentSentinel != "" && strings.EqualFold(s, p.cfg.MultiInstrumentSentinel)
}

// hasPrefixColon reports a ':' that comes before any bracket on the line.
func hasPrefixColon(s string) bool {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return false
	}
	br := strings.IndexAny(s, "[]{}")
	return br < 0 || colon < br
}

type header struct {
	bpm, beatsPerMeasure, beatSize int
}

// readHeader consumes an optional "(bpm)" and "num/den" from the start of the
// first line. A line left empty is dropped.
func (p *Parser) readHeader(lines []sourceLine) (header, []sourceLine, error) {
	h := header{
		bpm:             p.cfg.DefaultBPM,
		beatsPerMeasure: p.cfg.DefaultBeatsPerMeasure,
		beatSize:        p.cfg.DefaultBeatSize,
	}
	if len(lines) == 0 {
		return h, lines, nil
	}
	first := lines[0]
	s := first.text
	if strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			return h, nil, &LexicalError{Line: first.num, Token: s, Reason: "unclosed tempo"}
		}
		bpm, err := parseDigits(strings.TrimSpace(s[1:end]))
		if err != nil || bpm <= 0 {
			return h, nil, &LexicalError{Line: first.num, Token: s[:end+1], Reason: "tempo must be a positive number"}
		}
		h.bpm = bpm
		s = strings.TrimSpace(s[end+1:])
	}
	if field, remainder := firstField(s); isTimeSignature(field) {
		slash := strings.IndexByte(field, '/')
		num, _ := parseDigits(field[:slash])
		den, _ := parseDigits(field[slash+1:])
		if num <= 0 {
			return h, nil, &LexicalError{Line: first.num, Token: field, Reason: "time signature needs a positive numerator"}
		}
		if den <= 0 || 32%den != 0 {
			return h, nil, &LexicalError{Line: first.num, Token: field, Reason: "time signature denominator must be one of 1, 2, 4, 8, 16, 32"}
		}
		h.beatsPerMeasure, h.beatSize = num, den
		s = remainder
	}
	if s == "" {
		return h, lines[1:], nil
	}
	out := make([]sourceLine, len(lines))
	copy(out, lines)
	out[0].text = s
	return h, out, nil
}

func firstField(s string) (string, string) {
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}

func isTimeSignature(s string) bool {
	slash := strings.IndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return false
	}
	_, err1 := parseDigits(s[:slash])
	_, err2 := parseDigits(s[slash+1:])
	return err1 == nil && err2 == nil
}
