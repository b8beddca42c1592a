package completion

import (
	"context"

	"github.com/flow-design/flow-helper/internal/catalog"
	"github.com/flow-design/flow-helper/internal/markup"
)

// Engine answers completion and hover requests against one catalog
type Engine struct {
	catalog *catalog.Catalog
	format  FormatFunc
}

// NewEngine creates an engine. A nil format uses markup.Format.
func NewEngine(cat *catalog.Catalog, format FormatFunc) *Engine {
	if format == nil {
		format = markup.Format
	}
	return &Engine{catalog: cat, format: format}
}

// Catalog returns the catalog the engine suggests from
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Complete classifies the cursor and builds the matching suggestions. An
// empty result means nothing applies; errors come only from a malformed
// catalog or the formatter.
func (e *Engine) Complete(ctx context.Context, req Request) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Document == nil {
		return nil, nil
	}

	c := Classify(req.Document, req.Position)
	switch c.Kind {
	case ContextValue:
		return ValueItems(e.catalog, c.Tag.Name, c.Attribute, req.Position, req.TriggerCharacter), nil

	case ContextAttribute:
		return AttributeItems(e.catalog, c.Tag.Name, c.Tag.Raw, req.Position, req.Options), nil

	case ContextTag:
		if !e.tagsAllowed(req) {
			return nil, nil
		}
		start := req.Position.Character - utf16Len(c.Partial)
		if start < 0 {
			start = 0
		}
		replace := &Range{
			Start: Position{Line: req.Position.Line, Character: start},
			End:   req.Position,
		}
		return TagItems(e.catalog, req.Options, e.format, replace)
	}

	return nil, nil
}

func (e *Engine) tagsAllowed(req Request) bool {
	switch req.Dialect {
	case DialectPlain:
		return true
	case DialectTemplate:
		if sr, ok := req.Document.(ScriptRegions); ok {
			return !sr.InScriptRegion(req.Position.Line)
		}
		return !InScriptRegion(req.Document, req.Position.Line)
	default:
		return false
	}
}
