package completion

import (
	"strconv"

	"github.com/flow-design/flow-helper/internal/catalog"
)

// firstSortID starts the numeric part of tag sort keys. Three-digit keys
// keep string ordering equal to catalog ordering for up to 900 tags.
const firstSortID = 100

// TagItems suggests every catalog tag, in catalog order. replace, when not
// nil, is the span of the partial tag name already typed after '<'.
func TagItems(cat *catalog.Catalog, opts Options, format FormatFunc, replace *Range) ([]Item, error) {
	tags := cat.Tags()
	items := make([]Item, 0, len(tags))

	for i, tag := range tags {
		comp, _ := cat.Component(tag)

		text, err := Snippet(cat, tag, opts, format)
		if err != nil {
			return nil, err
		}

		item := Item{
			Label:         tag,
			Kind:          KindModule,
			SortText:      "0" + strconv.Itoa(firstSortID+i) + tag,
			Detail:        comp.Description,
			Documentation: comp.DocLink,
			InsertText:    text,
			Snippet:       true,
		}
		if replace != nil {
			r := *replace
			item.Range = &r
		}
		items = append(items, item)
	}
	return items, nil
}
