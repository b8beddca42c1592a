// Package completion decides what kind of markup is being typed at a cursor
// (a tag name, an attribute name or an attribute value) and builds completion
// items for it from a component catalog.
//
// Nothing here keeps state between requests. Everything a request needs,
// including the user's indent and quote preferences, travels in a Request.
package completion

import (
	"strings"
	"unicode/utf16"
)

// Position is a zero-based line and UTF-16 character offset, as in LSP
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span between two positions
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Kind categorizes completion items
type Kind int

const (
	// KindModule is a component tag
	KindModule Kind = iota
	// KindField is a data attribute
	KindField
	// KindMethod is an event attribute
	KindMethod
	// KindValue is an attribute value literal
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Item is a single completion suggestion
type Item struct {
	Label         string
	Kind          Kind
	SortText      string
	Detail        string
	Documentation string

	// InsertText is a literal string, or a tab-stop template when Snippet is set
	InsertText string
	Snippet    bool

	// Range is the text the insertion replaces. Nil leaves it to the client.
	Range *Range
}

// Dialect is the markup flavour of the document being edited
type Dialect int

const (
	// DialectUnknown documents get attribute help but no tag suggestions
	DialectUnknown Dialect = iota
	// DialectPlain is plain markup such as HTML
	DialectPlain
	// DialectTemplate is a single-file component with template and script regions
	DialectTemplate
)

// DialectFor maps an editor language identifier to a dialect
func DialectFor(languageID string) Dialect {
	switch strings.ToLower(languageID) {
	case "vue":
		return DialectTemplate
	case "html":
		return DialectPlain
	default:
		return DialectUnknown
	}
}

// Quote characters
const (
	QuoteDouble = `"`
	QuoteSingle = `'`
)

// QuoteFor maps a configured quote style ("single" or "double") to the quote
// character. Anything other than "single" means double quotes.
func QuoteFor(style string) string {
	if strings.EqualFold(style, "single") {
		return QuoteSingle
	}
	return QuoteDouble
}

// Options is the per-request configuration
type Options struct {
	IndentSize int
	Quote      string
}

// DefaultOptions returns two-space indentation with double quotes
func DefaultOptions() Options {
	return Options{IndentSize: 2, Quote: QuoteDouble}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.IndentSize <= 0 {
		o.IndentSize = def.IndentSize
	}
	if o.Quote != QuoteSingle && o.Quote != QuoteDouble {
		o.Quote = def.Quote
	}
	return o
}

// Request is everything one completion pass looks at
type Request struct {
	Document         Document
	Position         Position
	TriggerCharacter string
	Dialect          Dialect
	Options          Options
}

// Document is read-only, line-addressed text
type Document interface {
	LineCount() int
	Line(n int) string
}

// ScriptRegions is implemented by documents that cache where their script
// regions are. The engine falls back to a line scan for other documents.
type ScriptRegions interface {
	InScriptRegion(line int) bool
}

// TextDocument is a Document over an in-memory string
type TextDocument struct {
	lines []string
}

// NewTextDocument splits content into lines. CRLF endings are accepted.
func NewTextDocument(content string) *TextDocument {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &TextDocument{lines: lines}
}

// LineCount returns the number of lines
func (d *TextDocument) LineCount() int {
	return len(d.lines)
}

// Line returns line n, or "" when out of range
func (d *TextDocument) Line(n int) string {
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	return d.lines[n]
}

// byteOffset converts a UTF-16 character offset within line to a byte
// offset, clamped to the line length.
func byteOffset(line string, character int) int {
	units := 0
	for i, r := range line {
		if units >= character {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}

// utf16Len returns the length of s in UTF-16 code units
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
