package notation

import (
	"strconv"
	"strings"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/score"
)

// parseNote reads pitch("|"pitch)* ["/"duration] "."* ["@"velocity].
// A non-nil vocals map switches pitch resolution to vocal aliases and rests.
func (p *Parser) parseNote(tok string, line int, vocals map[string]string) (score.Note, error) {
	lexErr := func(reason string) error {
		return &LexicalError{Line: line, Token: tok, Reason: reason}
	}
	rest := tok
	velocity := p.cfg.DefaultVelocity
	if at := strings.LastIndexByte(rest, '@'); at >= 0 {
		v, err := parseDigits(rest[at+1:])
		if err != nil {
			return score.Note{}, lexErr("velocity must be a number")
		}
		if v > 127 {
			return score.Note{}, lexErr("velocity must be in 0..127")
		}
		velocity = v
		rest = rest[:at]
	}
	dots := 0
	for len(rest) > 0 && rest[len(rest)-1] == '.' {
		dots++
		rest = rest[:len(rest)-1]
	}
	duration := p.cfg.DefaultDuration
	if slash := strings.LastIndexByte(rest, '/'); slash >= 0 {
		d, err := parseDigits(rest[slash+1:])
		if err != nil {
			return score.Note{}, lexErr("duration must be a number")
		}
		if !score.IsValidDuration(d) {
			return score.Note{}, lexErr("duration must be one of 1, 2, 4, 8, 16, 32")
		}
		duration = d
		rest = rest[:slash]
	}
	if rest == "" {
		return score.Note{}, lexErr("missing pitch")
	}
	parts := strings.Split(rest, "|")
	pitches := make([]score.NotePitch, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return score.Note{}, lexErr("empty chord member")
		}
		if strings.ContainsAny(part, "./@{}[]") {
			return score.Note{}, lexErr("unexpected character in pitch")
		}
		np, err := p.resolvePitch(part, line, vocals)
		if err != nil {
			return score.Note{}, err
		}
		pitches = append(pitches, np)
	}
	return score.Note{
		Pitches:          pitches,
		Duration:         duration,
		Velocity:         velocity,
		ExtendedDuration: dots,
	}, nil
}

func (p *Parser) resolvePitch(name string, line int, vocals map[string]string) (score.NotePitch, error) {
	if vocals != nil {
		if _, ok := vocals[name]; ok {
			return score.NotePitch{Pitch: names.VocalMarker, VocalName: name}, nil
		}
		if names.IsRestToken(name) {
			return score.NotePitch{Pitch: names.RestMarker}, nil
		}
		return score.NotePitch{}, &UnknownSymbolError{Line: line, Kind: SymbolVocal, Symbol: name}
	}
	key, ok := p.tables.Pitch(name)
	if !ok {
		return score.NotePitch{}, &UnknownSymbolError{Line: line, Kind: SymbolPitch, Symbol: name}
	}
	return score.NotePitch{Pitch: key}, nil
}

// parseDigits accepts only ASCII digits, unlike strconv.Atoi which also
// takes a sign.
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
