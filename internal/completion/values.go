package completion

import "github.com/flow-design/flow-helper/internal/catalog"

var booleanValues = []catalog.Value{{Literal: "true"}, {Literal: "false"}}

// ValueItems suggests values for attr on tag. Enumerated values are offered
// in catalog order; a boolean attribute without enumerated values gets true
// and false. Unknown attributes get nothing.
//
// Items replace nothing: the range is empty and sits at the cursor, one
// character to the left when completion was triggered by a space.
func ValueItems(cat *catalog.Catalog, tag, attr string, pos Position, trigger string) []Item {
	meta, ok := cat.Attribute(tag, attr)
	if !ok {
		return nil
	}

	values := meta.Values
	if len(values) == 0 && meta.Type == catalog.TypeBoolean {
		values = booleanValues
	}
	if len(values) == 0 {
		return nil
	}

	char := pos.Character
	if trigger == " " && char > 0 {
		char--
	}
	at := Position{Line: pos.Line, Character: char}

	items := make([]Item, 0, len(values))
	for _, v := range values {
		items = append(items, Item{
			Label:         v.Literal,
			Kind:          KindValue,
			Documentation: v.Description,
			InsertText:    v.Literal,
			Range:         &Range{Start: at, End: at},
		})
	}
	return items
}
