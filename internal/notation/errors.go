package notation

import "fmt"

// LexicalError reports text that does not match the notation grammar.
type LexicalError struct {
	Line   int
	Token  string
	Reason string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("line %d: malformed %q: %s", e.Line, e.Token, e.Reason)
}

// SymbolKind says which table an UnknownSymbolError was looked up in.
type SymbolKind int

const (
	SymbolPitch SymbolKind = iota
	SymbolInstrument
	SymbolVocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolInstrument:
		return "instrument"
	case SymbolVocal:
		return "vocal alias"
	default:
		return "pitch"
	}
}

// UnknownSymbolError reports a pitch, instrument or vocal alias that did not
// resolve.
type UnknownSymbolError struct {
	Line   int
	Kind   SymbolKind
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("line %d: unknown %s %q", e.Line, e.Kind, e.Symbol)
}

// BeatCountMismatchError reports a measure whose beats do not add up to the
// time signature.
type BeatCountMismatchError struct {
	Line     int
	Expected float64
	Actual   float64
	Fragment string
}

func (e *BeatCountMismatchError) Error() string {
	return fmt.Sprintf("line %d: measure %q has %g beats, want %g", e.Line, e.Fragment, e.Actual, e.Expected)
}

// StructuralError reports a line whose overall shape is wrong: a missing
// group/instrument prefix, unbalanced brackets, stray text between measures.
type StructuralError struct {
	Line   int
	Text   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Line == 0 {
		return "notation: " + e.Reason
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}
