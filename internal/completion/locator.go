package completion

import "strings"

// MaxLookbackLines bounds how many lines above the cursor line are scanned
// when looking for the tag that encloses the cursor.
const MaxLookbackLines = 10

// Attr is an attribute already written on a tag
type Attr struct {
	Name  string
	Value string
}

// TagContext is the open tag that encloses the cursor
type TagContext struct {
	Name  string
	Attrs []Attr

	// Raw is the text from the tag's '<' up to the cursor
	Raw string

	// Start is the position of the tag's '<'
	Start Position
}

// Binding records which binding prefix was typed before an attribute name
type Binding int

const (
	// BindingNone is a plain attribute
	BindingNone Binding = iota
	// BindingData is ':' or 'v-bind:'
	BindingData
	// BindingEvent is '@' or 'v-on:'
	BindingEvent
)

type scanState int

const (
	stateText scanState = iota
	stateTagOpen
	stateTagName
	stateInTag
	stateAttrName
	stateAfterAttrName
	stateBeforeValue
	stateQuotedValue
	stateUnquotedValue
	stateEndTag
	stateComment
	stateInterpolation
)

// scanner walks the text before the cursor one byte at a time. Only ASCII
// bytes drive transitions, so multi-byte UTF-8 sequences pass through as
// ordinary characters.
type scanner struct {
	text      string
	firstLine int

	state     scanState
	line      int
	lineStart int

	tagStart    int
	tagStartPos Position
	nameStart   int
	name        string
	attrs       []Attr

	attrStart  int
	attrName   string
	valueStart int
	quote      byte
}

// scan runs the state machine over the cursor line, up to the cursor, and
// the MaxLookbackLines lines above it.
func scan(doc Document, pos Position) *scanner {
	if pos.Line < 0 || pos.Line >= doc.LineCount() {
		return &scanner{}
	}

	first := pos.Line - MaxLookbackLines
	if first < 0 {
		first = 0
	}

	var b strings.Builder
	for l := first; l < pos.Line; l++ {
		b.WriteString(doc.Line(l))
		b.WriteByte('\n')
	}
	line := doc.Line(pos.Line)
	b.WriteString(line[:byteOffset(line, pos.Character)])

	s := &scanner{text: b.String(), firstLine: first}
	s.run()
	return s
}

func (s *scanner) run() {
	for i := 0; i < len(s.text); i++ {
		c := s.text[i]
		if c == '\n' {
			s.line++
			s.lineStart = i + 1
		}

		switch s.state {
		case stateText:
			switch {
			case c == '\\' && i+1 < len(s.text) && s.text[i+1] != '\n':
				i++
			case c == '<':
				s.openTag(i)
			case c == '{' && s.peek(i) == '{':
				s.state = stateInterpolation
				i++
			}

		case stateTagOpen:
			switch {
			case isLetter(c):
				s.nameStart = i
				s.state = stateTagName
			case c == '/':
				s.state = stateEndTag
			case c == '!' && strings.HasPrefix(s.text[i:], "!--"):
				s.state = stateComment
				i += 2
			case c == '<':
				s.openTag(i)
			default:
				s.state = stateText
			}

		case stateTagName:
			switch {
			case isNameChar(c):
			case isSpace(c) || c == '/':
				s.name = s.text[s.nameStart:i]
				s.state = stateInTag
			case c == '<':
				s.openTag(i)
			default:
				s.state = stateText
			}

		case stateInTag:
			switch {
			case isSpace(c) || c == '/':
			case c == '>':
				s.state = stateText
			case c == '<':
				s.openTag(i)
			case isQuote(c):
				s.startQuoted("", c, i)
			default:
				s.attrStart = i
				s.state = stateAttrName
			}

		case stateAttrName:
			switch {
			case isSpace(c):
				s.attrName = s.text[s.attrStart:i]
				s.state = stateAfterAttrName
			case c == '=':
				s.attrName = s.text[s.attrStart:i]
				s.state = stateBeforeValue
			case c == '>':
				s.commit(s.text[s.attrStart:i], "")
				s.state = stateText
			case c == '/':
				s.commit(s.text[s.attrStart:i], "")
				s.state = stateInTag
			case c == '<':
				s.openTag(i)
			}

		case stateAfterAttrName:
			switch {
			case isSpace(c):
			case c == '=':
				s.state = stateBeforeValue
			case c == '>':
				s.commit(s.attrName, "")
				s.state = stateText
			case c == '/':
				s.commit(s.attrName, "")
				s.state = stateInTag
			case c == '<':
				s.openTag(i)
			case isQuote(c):
				s.commit(s.attrName, "")
				s.startQuoted("", c, i)
			default:
				s.commit(s.attrName, "")
				s.attrStart = i
				s.state = stateAttrName
			}

		case stateBeforeValue:
			switch {
			case isSpace(c):
			case isQuote(c):
				s.startQuoted(s.attrName, c, i)
			case c == '>':
				s.commit(s.attrName, "")
				s.state = stateText
			case c == '<':
				s.openTag(i)
			default:
				s.valueStart = i
				s.state = stateUnquotedValue
			}

		case stateQuotedValue:
			if c == s.quote {
				s.commit(s.attrName, s.text[s.valueStart:i])
				s.state = stateInTag
			}

		case stateUnquotedValue:
			switch {
			case isSpace(c):
				s.commit(s.attrName, s.text[s.valueStart:i])
				s.state = stateInTag
			case c == '>':
				s.commit(s.attrName, s.text[s.valueStart:i])
				s.state = stateText
			}

		case stateEndTag:
			if c == '>' {
				s.state = stateText
			}

		case stateComment:
			if strings.HasPrefix(s.text[i:], "-->") {
				s.state = stateText
				i += 2
			}

		case stateInterpolation:
			if c == '}' && s.peek(i) == '}' {
				s.state = stateText
				i++
			}
		}
	}
}

func (s *scanner) peek(i int) byte {
	if i+1 < len(s.text) {
		return s.text[i+1]
	}
	return 0
}

func (s *scanner) openTag(i int) {
	s.state = stateTagOpen
	s.tagStart = i
	s.tagStartPos = Position{
		Line:      s.firstLine + s.line,
		Character: utf16Len(s.text[s.lineStart:i]),
	}
	s.name = ""
	s.attrs = nil
}

func (s *scanner) startQuoted(attr string, quote byte, i int) {
	s.attrName = attr
	s.quote = quote
	s.valueStart = i + 1
	s.state = stateQuotedValue
}

func (s *scanner) commit(name, value string) {
	if name == "" {
		return
	}
	s.attrs = append(s.attrs, Attr{Name: name, Value: value})
}

// insideTag reports whether the scan ended within an open tag, past its name
func (s *scanner) insideTag() bool {
	switch s.state {
	case stateInTag, stateAttrName, stateAfterAttrName, stateBeforeValue,
		stateQuotedValue, stateUnquotedValue:
		return true
	default:
		return false
	}
}

func (s *scanner) tag() *TagContext {
	if !s.insideTag() {
		return nil
	}

	attrs := make([]Attr, len(s.attrs), len(s.attrs)+1)
	copy(attrs, s.attrs)
	if s.state == stateAfterAttrName && s.attrName != "" {
		attrs = append(attrs, Attr{Name: s.attrName})
	}

	return &TagContext{
		Name:  s.name,
		Attrs: attrs,
		Raw:   s.text[s.tagStart:],
		Start: s.tagStartPos,
	}
}

// tagStartName returns the partially typed tag name when the scan ended right
// after an unescaped '<' or inside a tag name.
func (s *scanner) tagStartName() (string, bool) {
	switch s.state {
	case stateTagOpen:
		return "", true
	case stateTagName:
		return s.text[s.nameStart:], true
	default:
		return "", false
	}
}

// LocateTag returns the nearest unclosed tag before pos, or nil. Quoted
// attribute values, comments and {{ }} interpolations are skipped, so '<' and
// '>' inside them are never taken for tag boundaries. A cursor still inside
// the tag name is not enclosed by that tag.
func LocateTag(doc Document, pos Position) *TagContext {
	return scan(doc, pos).tag()
}

// TagStart reports whether pos directly follows an unescaped '<' and an
// optional partial tag name, returning that partial name.
func TagStart(doc Document, pos Position) (string, bool) {
	return scan(doc, pos).tagStartName()
}

// CurrentAttribute returns the attribute whose quoted value text ends inside,
// or "". The binding prefix, if any, is removed.
//
// A trailing unterminated quoted value is dropped first so that spaces inside
// it do not split the token. The token is what follows the last whitespace.
// A token that still holds a complete quoted value means the cursor is
// between attributes.
func CurrentAttribute(text string) string {
	stripped := stripOpenValue(text)
	token := text[lastSpace(stripped)+1:]
	if hasClosedValue(token) {
		return ""
	}

	token = strings.TrimLeft(token, "(")
	eq := strings.IndexByte(token, '=')
	if eq <= 0 || eq+1 >= len(token) || !isQuote(token[eq+1]) {
		return ""
	}

	name, _ := splitBinding(token[:eq])
	if !isAttributeName(name) {
		return ""
	}
	return name
}

// AttributePrefix returns the partially typed attribute name at the end of
// text and the binding prefix typed before it. ok is false when text does
// not end in something that can become an attribute name.
func AttributePrefix(text string) (prefix string, binding Binding, ok bool) {
	token := text[lastSpaceOrParen(text)+1:]
	if strings.ContainsAny(token, `="'`) {
		return "", BindingNone, false
	}

	name, binding := splitBinding(token)
	if name != "" && !isLetter(name[0]) {
		return "", BindingNone, false
	}
	return name, binding, true
}

func splitBinding(s string) (string, Binding) {
	switch {
	case strings.HasPrefix(s, "@"):
		return s[1:], BindingEvent
	case strings.HasPrefix(s, "v-on:"):
		return s[len("v-on:"):], BindingEvent
	case strings.HasPrefix(s, ":"):
		return s[1:], BindingData
	case strings.HasPrefix(s, "v-bind:"):
		return s[len("v-bind:"):], BindingData
	default:
		return s, BindingNone
	}
}

func stripOpenValue(text string) string {
	var quote byte
	open := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case open >= 0 && c == quote:
			open = -1
		case open < 0 && isQuote(c):
			quote = c
			open = i
		}
	}
	if open >= 0 {
		return text[:open]
	}
	return text
}

func hasClosedValue(token string) bool {
	stripped := stripOpenValue(token)
	return strings.ContainsAny(stripped, `"'`)
}

func lastSpace(s string) int {
	return strings.LastIndexAny(s, " \t\r\n\f")
}

func lastSpaceOrParen(s string) int {
	return strings.LastIndexAny(s, " \t\r\n\f(")
}

func isAttributeName(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.' || c == ':'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}
