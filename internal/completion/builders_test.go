package completion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flow-design/flow-helper/internal/catalog"
)

const testCatalogJSON = `
// completion test library
{
  "input": {
    "description": "Native input.",
    "docLink": "https://docs.example.test/input",
    "attributes": {
      "type": {
        "type": "string",
        "default": "text",
        "description": "Input type.",
        "values": { "text": {}, "password": { "description": "Masked input." } }
      },
      "disabled": { "type": "boolean", "description": "Disable the input." },
      "readonly": { "type": "flag", "description": "Read only." },
      "open": { "type": "boolean" },
      "options": { "type": "string" },
      "Order": { "type": "number" },
      "change": { "type": "method", "description": "Value changed." }
    }
  },
  "panel": {
    "description": "Collapsible panel.",
    "docLink": "https://docs.example.test/panel",
    "attributes": {
      "collapsed": { "type": "boolean" },
      "title": { "type": "string", "isRequired": true, "description": "Panel title." }
    },
    "subtags": ["row", "row"]
  },
  "row": {
    "attributes": {
      "index": { "type": "number", "isRequired": true }
    },
    "subtags": ["cell"]
  },
  "cell": {
    "attributes": {
      "span": { "type": "number", "isRequired": true },
      "offset": { "type": "number" }
    }
  },
  "divider": {
    "description": "Horizontal rule."
  }
}
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadJSON("Test UI", []byte(testCatalogJSON))
	require.NoError(t, err)
	return cat
}

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestValueItems(t *testing.T) {
	cat := testCatalog(t)
	pos := Position{Line: 2, Character: 14}

	t.Run("enumerated values in order", func(t *testing.T) {
		items := ValueItems(cat, "input", "type", pos, `"`)
		require.Len(t, items, 2)
		assert.Equal(t, []string{"text", "password"}, labels(items))
		assert.Equal(t, "Masked input.", items[1].Documentation)
		for _, item := range items {
			assert.Equal(t, KindValue, item.Kind)
			assert.Equal(t, item.Label, item.InsertText)
			assert.False(t, item.Snippet)
			assert.Equal(t, &Range{Start: pos, End: pos}, item.Range)
		}
	})

	t.Run("boolean without values", func(t *testing.T) {
		items := ValueItems(cat, "input", "disabled", pos, "")
		assert.Equal(t, []string{"true", "false"}, labels(items))
	})

	t.Run("space trigger shifts left", func(t *testing.T) {
		items := ValueItems(cat, "input", "disabled", pos, " ")
		require.NotEmpty(t, items)
		at := Position{Line: 2, Character: 13}
		assert.Equal(t, &Range{Start: at, End: at}, items[0].Range)
	})

	t.Run("space trigger at line start", func(t *testing.T) {
		start := Position{Line: 2, Character: 0}
		items := ValueItems(cat, "input", "disabled", start, " ")
		require.NotEmpty(t, items)
		assert.Equal(t, &Range{Start: start, End: start}, items[0].Range)
	})

	t.Run("nothing to offer", func(t *testing.T) {
		assert.Empty(t, ValueItems(cat, "input", "options", pos, ""))
		assert.Empty(t, ValueItems(cat, "input", "missing", pos, ""))
		assert.Empty(t, ValueItems(cat, "missing", "type", pos, ""))
	})
}

func TestAttributeItems(t *testing.T) {
	cat := testCatalog(t)
	opts := DefaultOptions()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty token", `<input `, []string{"type", "disabled", "readonly", "open", "options", "Order"}},
		{"first character filter", `<input on`, []string{"open", "options", "Order"}},
		{"filter ignores case", `<input ON`, []string{"open", "options", "Order"}},
		{"data binding", `<input :d`, []string{"disabled"}},
		{"event binding", `<input @`, []string{"change"}},
		{"long event binding", `<input v-on:ch`, []string{"change"}},
		{"event binding filters by letter", `<input @x`, nil},
		{"inside call parens", `<input (t`, []string{"type"}},
		{"after a value", `<input type="text" r`, []string{"readonly"}},
		{"token with equals", `<input type=`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := Position{Line: 0, Character: utf16Len(tt.text)}
			items := AttributeItems(cat, "input", tt.text, pos, opts)
			if tt.want == nil {
				assert.Empty(t, items)
				return
			}
			assert.Equal(t, tt.want, labels(items))
		})
	}
}

func TestAttributeItemsUnknownTag(t *testing.T) {
	cat := testCatalog(t)
	assert.Empty(t, AttributeItems(cat, "missing", "<missing ", Position{Character: 9}, DefaultOptions()))
}

func TestAttributeItemInsertText(t *testing.T) {
	cat := testCatalog(t)
	text := `<input `
	pos := Position{Character: 7}

	byLabel := func(items []Item) map[string]Item {
		m := make(map[string]Item)
		for _, item := range items {
			m[item.Label] = item
		}
		return m
	}

	t.Run("flag inserts bare name", func(t *testing.T) {
		item := byLabel(AttributeItems(cat, "input", text, pos, DefaultOptions()))["readonly"]
		assert.Equal(t, "readonly ", item.InsertText)
		assert.True(t, strings.HasSuffix(item.InsertText, " "))
		assert.NotContains(t, item.InsertText, "=")
		assert.NotContains(t, item.InsertText, `"`)
		assert.NotContains(t, item.InsertText, `'`)
		assert.False(t, item.Snippet)
	})

	t.Run("double quotes", func(t *testing.T) {
		item := byLabel(AttributeItems(cat, "input", text, pos, DefaultOptions()))["type"]
		assert.Equal(t, `type="$1"$0`, item.InsertText)
		assert.True(t, item.Snippet)
	})

	t.Run("single quotes", func(t *testing.T) {
		opts := Options{IndentSize: 2, Quote: QuoteSingle}
		for _, item := range AttributeItems(cat, "input", text, pos, opts) {
			if item.Label == "readonly" {
				continue
			}
			assert.True(t, strings.HasPrefix(item.InsertText, item.Label+"='$1'"), item.InsertText)
		}
	})

	t.Run("kind and detail", func(t *testing.T) {
		items := byLabel(AttributeItems(cat, "input", text, pos, DefaultOptions()))
		assert.Equal(t, KindField, items["type"].Kind)
		assert.Equal(t, "Test UI", items["type"].Detail)

		events := AttributeItems(cat, "input", `<input @`, Position{Character: 8}, DefaultOptions())
		require.Len(t, events, 1)
		assert.Equal(t, KindMethod, events[0].Kind)
	})

	t.Run("documentation", func(t *testing.T) {
		items := byLabel(AttributeItems(cat, "input", text, pos, DefaultOptions()))
		assert.Equal(t, "Input type.\ntype: string\ndefault: text", items["type"].Documentation)
		assert.Equal(t, "type: boolean", items["open"].Documentation)
	})
}

func TestAttributeItemsReplaceRange(t *testing.T) {
	cat := testCatalog(t)
	items := AttributeItems(cat, "input", `<input :ty`, Position{Line: 4, Character: 10}, DefaultOptions())
	require.Len(t, items, 1)
	assert.Equal(t, &Range{
		Start: Position{Line: 4, Character: 8},
		End:   Position{Line: 4, Character: 10},
	}, items[0].Range)
}
