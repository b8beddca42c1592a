package completion

import "strings"

// HoverInfo is markdown documentation for the word under the cursor
type HoverInfo struct {
	Contents string
	Range    Range
}

// Hover documents the tag or attribute name under pos. It returns nil when
// the word is neither a known tag directly after '<' or '</' nor a known
// attribute of the enclosing tag.
func (e *Engine) Hover(doc Document, pos Position) *HoverInfo {
	if doc == nil || pos.Line < 0 || pos.Line >= doc.LineCount() {
		return nil
	}
	line := doc.Line(pos.Line)
	start, end := wordAt(line, byteOffset(line, pos.Character))
	if start == end {
		return nil
	}
	word := line[start:end]
	r := Range{
		Start: Position{Line: pos.Line, Character: utf16Len(line[:start])},
		End:   Position{Line: pos.Line, Character: utf16Len(line[:end])},
	}

	before := line[:start]
	if strings.HasSuffix(before, "<") || strings.HasSuffix(before, "</") {
		comp, ok := e.catalog.Component(word)
		if !ok {
			return nil
		}
		return &HoverInfo{Contents: tagMarkdown(comp.Name, comp.Description, comp.DocLink), Range: r}
	}

	tag := LocateTag(doc, r.Start)
	if tag == nil {
		return nil
	}
	name, _ := splitBinding(word)
	attr, ok := e.catalog.Attribute(tag.Name, name)
	if !ok {
		return nil
	}
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(attr.Name)
	b.WriteString("**")
	if text := attributeDoc(attr); text != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.ReplaceAll(text, "\n", "  \n"))
	}
	return &HoverInfo{Contents: b.String(), Range: r}
}

func tagMarkdown(name, description, link string) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(name)
	b.WriteString("**")
	if description != "" {
		b.WriteString("\n\n")
		b.WriteString(description)
	}
	if link != "" {
		b.WriteString("\n\n[Documentation](")
		b.WriteString(link)
		b.WriteString(")")
	}
	return b.String()
}

// wordAt expands around byte offset i to the surrounding run of name
// characters. A leading '@' belongs to the word.
func wordAt(line string, i int) (int, int) {
	start, end := i, i
	for start > 0 && isNameChar(line[start-1]) {
		start--
	}
	for end < len(line) && isNameChar(line[end]) {
		end++
	}
	if start > 0 && line[start-1] == '@' && start < end {
		start--
	}
	return start, end
}
