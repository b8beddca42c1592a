package completion

import (
	"strings"

	"github.com/flow-design/flow-helper/internal/catalog"
)

// AttributeItems suggests attribute names for tag. text is the tag source
// from its '<' up to the cursor.
//
// Event attributes (type method) are only offered after '@'; all other
// attributes only after ':' or with no prefix. A non-empty partial name keeps
// the attributes whose first letter matches it, ignoring case.
func AttributeItems(cat *catalog.Catalog, tag, text string, pos Position, opts Options) []Item {
	comp, ok := cat.Component(tag)
	if !ok {
		return nil
	}

	prefix, binding, ok := AttributePrefix(text)
	if !ok {
		return nil
	}
	opts = opts.withDefaults()

	start := pos.Character - utf16Len(prefix)
	if start < 0 {
		start = 0
	}
	replace := Range{
		Start: Position{Line: pos.Line, Character: start},
		End:   pos,
	}

	var items []Item
	for _, attr := range comp.Attributes() {
		if !bindingAllows(binding, attr.Type) {
			continue
		}
		if strings.TrimSpace(prefix) != "" && !firstCharsEqual(attr.Name, prefix) {
			continue
		}
		item := attributeItem(cat.Library, attr, opts.Quote)
		r := replace
		item.Range = &r
		items = append(items, item)
	}
	return items
}

func bindingAllows(binding Binding, attrType string) bool {
	if binding == BindingEvent {
		return attrType == catalog.TypeMethod
	}
	return attrType != catalog.TypeMethod
}

func firstCharsEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a[:1], b[:1])
}

func attributeItem(library string, attr *catalog.Attribute, quote string) Item {
	item := Item{
		Label:         attr.Name,
		Kind:          KindField,
		Detail:        library,
		Documentation: attributeDoc(attr),
	}
	if attr.Type == catalog.TypeMethod {
		item.Kind = KindMethod
	}

	if attr.Type == catalog.TypeFlag {
		item.InsertText = attr.Name + " "
	} else {
		item.InsertText = attr.Name + "=" + quote + "$1" + quote + "$0"
		item.Snippet = true
	}
	return item
}

// attributeDoc joins description, type and default, skipping absent parts
func attributeDoc(attr *catalog.Attribute) string {
	var parts []string
	if attr.Description != "" {
		parts = append(parts, attr.Description)
	}
	if attr.Type != "" {
		parts = append(parts, "type: "+attr.Type)
	}
	if attr.Default != "" {
		parts = append(parts, "default: "+attr.Default)
	}
	return strings.Join(parts, "\n")
}
