package tooling

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/flow-design/flow-helper/internal/completion"
)

// largeComponent builds a single-file component with a long template and a
// long script block.
func largeComponent(lines int) string {
	var b strings.Builder
	b.WriteString("<template>\n")
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, "  <flow-button type=\"primary\" @click=\"go(%d)\">Go</flow-button>\n", i)
	}
	b.WriteString("  <\n</template>\n<script>\nexport default {\n")
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, "  m%d() { return %d },\n", i, i)
	}
	b.WriteString("}\n</script>\n")
	return b.String()
}

// Benchmark tag completion, which synthesizes a snippet for every tag
func BenchmarkTagCompletion(b *testing.B) {
	api, err := NewAPI()
	if err != nil {
		b.Fatal(err)
	}
	api.OpenDocument("file:///App.vue", "vue", largeComponent(200), 1)
	pos := Position{Line: 201, Character: 3}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = api.GetCompletions(ctx, "file:///App.vue", pos, "<", completion.DefaultOptions())
	}
}

// Benchmark attribute completion deep in a large template
func BenchmarkAttributeCompletion(b *testing.B) {
	api, err := NewAPI()
	if err != nil {
		b.Fatal(err)
	}
	content := largeComponent(200) + "<flow-input \n"
	api.OpenDocument("file:///App.vue", "vue", content, 1)
	last := strings.Count(content, "\n") - 1
	pos := Position{Line: last, Character: 12}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = api.GetCompletions(ctx, "file:///App.vue", pos, " ", completion.DefaultOptions())
	}
}

// Benchmark re-indexing a document on every change
func BenchmarkUpdateDocument(b *testing.B) {
	api, err := NewAPI()
	if err != nil {
		b.Fatal(err)
	}
	content := largeComponent(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		api.UpdateDocument("file:///App.vue", content+fmt.Sprint(i), i)
	}
}
