package completion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flow-design/flow-helper/internal/catalog"
)

// FormatFunc re-indents a flat markup string. markup.Format is the usual one.
type FormatFunc func(source string, indentSize int) (string, error)

// Synthesize builds the flat insertion template for tag. Required attributes
// become quoted tab stops, numbered from 1 in document order across the whole
// tree, and each declared sub-tag is expanded recursively between the
// parent's opening and closing tags.
//
// The walk keeps the set of tags on the current path and fails with
// catalog.ErrMalformedCatalog instead of recursing forever on a cycle.
func Synthesize(cat *catalog.Catalog, tag, quote string) (string, error) {
	var b strings.Builder
	stop := 0
	onPath := make(map[string]bool)

	var build func(name string) error
	build = func(name string) error {
		comp, ok := cat.Component(name)
		if !ok {
			return fmt.Errorf("%w: unknown tag %q", catalog.ErrMalformedCatalog, name)
		}
		if onPath[name] {
			return fmt.Errorf("%w: sub-tag cycle through %q", catalog.ErrMalformedCatalog, name)
		}
		onPath[name] = true
		defer delete(onPath, name)

		b.WriteString("<")
		b.WriteString(name)
		for _, attr := range comp.RequiredAttributes() {
			stop++
			b.WriteString(" ")
			b.WriteString(attr.Name)
			b.WriteString("=")
			b.WriteString(quote)
			b.WriteString("$")
			b.WriteString(strconv.Itoa(stop))
			b.WriteString(quote)
		}
		b.WriteString(">")

		for _, sub := range comp.Subtags {
			if err := build(sub); err != nil {
				return err
			}
		}

		b.WriteString("</")
		b.WriteString(name)
		b.WriteString(">")
		return nil
	}

	if err := build(tag); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Snippet synthesizes tag, formats it with the configured indent and drops
// the leading '<', which the user has already typed.
func Snippet(cat *catalog.Catalog, tag string, opts Options, format FormatFunc) (string, error) {
	opts = opts.withDefaults()

	flat, err := Synthesize(cat, tag, opts.Quote)
	if err != nil {
		return "", err
	}

	formatted, err := format(flat, opts.IndentSize)
	if err != nil {
		return "", fmt.Errorf("failed to format snippet for %s: %w", tag, err)
	}
	if formatted == "" {
		return "", nil
	}
	return formatted[1:], nil
}
