package notation

import (
	"strings"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/score"
)

type groupKey struct {
	name       string
	instrument int
}

type group struct {
	key      groupKey
	sections []score.Section
}

// assembleMulti reads vocal declarations and group-prefixed measure lines,
// then zips the groups by measure index. A group that runs out of measures
// stops contributing sections; it is not padded.
func (p *Parser) assembleMulti(lines []sourceLine, h header) ([]score.Measure, map[string]string, error) {
	vocals := map[string]string{}
	var content []sourceLine
	for _, l := range lines {
		if strings.ContainsAny(l.text, "[]{}") {
			content = append(content, l)
			continue
		}
		alias, path, err := parseVocalDecl(l)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := vocals[alias]; dup {
			return nil, nil, &StructuralError{Line: l.num, Text: l.text, Reason: "vocal alias declared twice"}
		}
		vocals[alias] = path
	}

	var groups []*group
	byKey := map[groupKey]*group{}
	for _, l := range content {
		key, rest, err := p.linePrefix(l)
		if err != nil {
			return nil, nil, err
		}
		raw, err := scanMeasures(l, rest)
		if err != nil {
			return nil, nil, err
		}
		var active map[string]string
		if key.instrument == names.Vocal {
			active = vocals
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		for _, m := range raw {
			if m.hasInstrument {
				return nil, nil, &StructuralError{Line: l.num, Text: l.text, Reason: "per-measure {instrument} is not allowed in multi-instrument lines"}
			}
			sec, err := p.buildSection(l, m, key.name, key.instrument, active, h)
			if err != nil {
				return nil, nil, err
			}
			g.sections = append(g.sections, sec)
		}
	}
	return zip(groups), vocals, nil
}

func zip(groups []*group) []score.Measure {
	longest := 0
	for _, g := range groups {
		longest = max(longest, len(g.sections))
	}
	measures := make([]score.Measure, longest)
	for i := range measures {
		for _, g := range groups {
			if i < len(g.sections) {
				measures[i].Sections = append(measures[i].Sections, g.sections[i])
			}
		}
	}
	return measures
}

// linePrefix reads `[group ":"] instrument` ahead of the first measure.
func (p *Parser) linePrefix(l sourceLine) (groupKey, string, error) {
	start := strings.IndexAny(l.text, "[{")
	if start < 0 {
		start = len(l.text)
	}
	prefix := l.text[:start]
	groupName, instrumentName := "", strings.TrimSpace(prefix)
	if colon := strings.IndexByte(prefix, ':'); colon >= 0 {
		groupName = strings.TrimSpace(prefix[:colon])
		instrumentName = strings.TrimSpace(prefix[colon+1:])
		if groupName == "" {
			return groupKey{}, "", &StructuralError{Line: l.num, Text: l.text, Reason: "missing group name before ':'"}
		}
	}
	if instrumentName == "" {
		return groupKey{}, "", &StructuralError{Line: l.num, Text: l.text, Reason: "missing instrument before first measure"}
	}
	if groupName == "" {
		groupName = instrumentName
	}
	id, err := p.instrument(instrumentName, l.num)
	if err != nil {
		return groupKey{}, "", err
	}
	return groupKey{name: groupName, instrument: id}, l.text[start:], nil
}

// parseVocalDecl reads `alias: path`.
func parseVocalDecl(l sourceLine) (string, string, error) {
	colon := strings.IndexByte(l.text, ':')
	if colon < 0 {
		return "", "", &StructuralError{Line: l.num, Text: l.text, Reason: "expected a vocal declaration or a measure line"}
	}
	alias := strings.TrimSpace(l.text[:colon])
	path := strings.TrimSpace(l.text[colon+1:])
	switch {
	case alias == "" || strings.ContainsAny(alias, " \t|/@."):
		return "", "", &StructuralError{Line: l.num, Text: l.text, Reason: "vocal alias must be a single word"}
	case names.IsRestToken(alias):
		return "", "", &StructuralError{Line: l.num, Text: l.text, Reason: "vocal alias shadows a rest"}
	case path == "":
		return "", "", &StructuralError{Line: l.num, Text: l.text, Reason: "vocal declaration has no clip path"}
	}
	return alias, path, nil
}
