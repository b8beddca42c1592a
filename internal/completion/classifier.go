package completion

import (
	"regexp"
	"sort"
)

// ContextKind is the kind of thing being typed at the cursor
type ContextKind int

const (
	// ContextNone means nothing can be suggested
	ContextNone ContextKind = iota
	// ContextTag means a tag name is expected
	ContextTag
	// ContextAttribute means an attribute name is expected
	ContextAttribute
	// ContextValue means an attribute value is expected
	ContextValue
)

func (k ContextKind) String() string {
	switch k {
	case ContextTag:
		return "tag"
	case ContextAttribute:
		return "attribute"
	case ContextValue:
		return "value"
	default:
		return "none"
	}
}

// Context is the result of classifying a cursor position
type Context struct {
	Kind ContextKind

	// Tag is set for attribute and value contexts
	Tag *TagContext

	// Attribute is the attribute whose value is being typed (value context)
	Attribute string

	// Partial is the tag name typed so far after '<' (tag context)
	Partial string
}

// Classify decides which suggestions apply at pos. Exactly one kind is
// returned; the checks run in a fixed order and the first match wins:
// value, attribute, tag, none.
func Classify(doc Document, pos Position) Context {
	s := scan(doc, pos)

	if tag := s.tag(); tag != nil {
		if attr := CurrentAttribute(tag.Raw); attr != "" {
			return Context{Kind: ContextValue, Tag: tag, Attribute: attr}
		}
		return Context{Kind: ContextAttribute, Tag: tag}
	}

	if partial, ok := s.tagStartName(); ok {
		return Context{Kind: ContextTag, Partial: partial}
	}

	return Context{Kind: ContextNone}
}

var (
	scriptOpenPattern  = regexp.MustCompile(`^\s*<script.*>\s*$`)
	scriptClosePattern = regexp.MustCompile(`</script>\s*$`)
)

// scriptMarker classifies one line: +1 opens a script region, -1 closes one,
// 0 is neither. A line holding a whole <script>...</script> element closes.
func scriptMarker(line string) int {
	switch {
	case scriptClosePattern.MatchString(line):
		return -1
	case scriptOpenPattern.MatchString(line):
		return 1
	default:
		return 0
	}
}

// InScriptRegion scans upward from line and reports whether the nearest
// script marker above (or on) it opens a script region.
func InScriptRegion(doc Document, line int) bool {
	if line >= doc.LineCount() {
		line = doc.LineCount() - 1
	}
	for l := line; l >= 0; l-- {
		switch scriptMarker(doc.Line(l)) {
		case 1:
			return true
		case -1:
			return false
		}
	}
	return false
}

// ScriptIndex remembers the script marker lines of one document version so
// InScriptRegion does not rescan the document on every keystroke. Its
// answers are identical to the package-level InScriptRegion.
type ScriptIndex struct {
	lines []int
	opens []bool
}

// NewScriptIndex indexes doc
func NewScriptIndex(doc Document) *ScriptIndex {
	idx := &ScriptIndex{}
	for l := 0; l < doc.LineCount(); l++ {
		if m := scriptMarker(doc.Line(l)); m != 0 {
			idx.lines = append(idx.lines, l)
			idx.opens = append(idx.opens, m > 0)
		}
	}
	return idx
}

// InScriptRegion answers with a binary search over the marker lines
func (idx *ScriptIndex) InScriptRegion(line int) bool {
	i := sort.SearchInts(idx.lines, line+1) - 1
	if i < 0 {
		return false
	}
	return idx.opens[i]
}
