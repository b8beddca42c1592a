package tooling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/flow-design/flow-helper/internal/catalog"
	"github.com/flow-design/flow-helper/internal/completion"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	api, err := NewAPI()
	if err != nil {
		t.Fatalf("NewAPI() failed: %v", err)
	}
	return api
}

func TestAPICreation(t *testing.T) {
	api := newTestAPI(t)

	if api.documents == nil {
		t.Error("API documents map is nil")
	}

	if api.engine == nil {
		t.Error("API engine is nil")
	}

	if api.Catalog() == nil {
		t.Fatal("API catalog is nil")
	}

	if api.Catalog().Library != catalog.DefaultLibrary {
		t.Errorf("Expected library %q, got %q", catalog.DefaultLibrary, api.Catalog().Library)
	}
}

func TestAPIWithCustomCatalog(t *testing.T) {
	cat, err := catalog.LoadJSON("Custom", []byte(`{"x-box": {"description": "Box"}}`))
	if err != nil {
		t.Fatalf("LoadJSON() failed: %v", err)
	}

	api, err := NewAPIWithConfig(&Config{Catalog: cat})
	if err != nil {
		t.Fatalf("NewAPIWithConfig() failed: %v", err)
	}

	api.OpenDocument("file:///a.html", "html", "<", 1)
	items, err := api.GetCompletions(context.Background(), "file:///a.html", Position{Line: 0, Character: 1}, "<", completion.DefaultOptions())
	if err != nil {
		t.Fatalf("GetCompletions() failed: %v", err)
	}

	if len(items) != 1 || items[0].Label != "x-box" {
		t.Errorf("Expected only x-box, got %+v", items)
	}
}

func TestOpenDocument(t *testing.T) {
	api := newTestAPI(t)

	content := "<template>\r\n  <flow-button \r\n</template>"
	doc := api.OpenDocument("file:///App.vue", "vue", content, 3)

	if doc.Content != content {
		t.Error("Document content doesn't match source")
	}

	if doc.Version != 3 {
		t.Errorf("Expected Version=3, got %d", doc.Version)
	}

	if doc.LineCount() != 3 {
		t.Errorf("Expected 3 lines, got %d", doc.LineCount())
	}

	if doc.Line(1) != "  <flow-button " {
		t.Errorf("Expected CR stripped, got %q", doc.Line(1))
	}

	if doc.Dialect() != completion.DialectTemplate {
		t.Errorf("Expected template dialect, got %v", doc.Dialect())
	}

	cached, ok := api.GetDocument("file:///App.vue")
	if !ok || cached != doc {
		t.Error("GetDocument() did not return the opened document")
	}
}

func TestOpenDocumentGuessesLanguage(t *testing.T) {
	api := newTestAPI(t)

	doc := api.OpenDocument("file:///index.HTML", "", "", 1)
	if doc.LanguageID != "html" {
		t.Errorf("Expected html, got %q", doc.LanguageID)
	}
}

func TestUpdateDocument(t *testing.T) {
	api := newTestAPI(t)

	api.OpenDocument("file:///App.vue", "vue", "<div>", 1)

	doc := api.UpdateDocument("file:///App.vue", "<div>", 2)
	if doc.Version != 2 {
		t.Errorf("Expected Version=2, got %d", doc.Version)
	}

	doc = api.UpdateDocument("file:///App.vue", "<script>\n<", 3)
	if doc.Version != 3 {
		t.Errorf("Expected Version=3, got %d", doc.Version)
	}
	if doc.LanguageID != "vue" {
		t.Errorf("Expected language kept, got %q", doc.LanguageID)
	}
	if !doc.InScriptRegion(1) {
		t.Error("Expected script index rebuilt for new content")
	}

	created := api.UpdateDocument("file:///new.html", "<", 1)
	if created.LanguageID != "html" {
		t.Errorf("Expected html for unopened document, got %q", created.LanguageID)
	}
}

func TestCloseDocument(t *testing.T) {
	api := newTestAPI(t)

	api.OpenDocument("file:///a.vue", "vue", "", 1)
	if api.DocumentCount() != 1 {
		t.Fatalf("Expected 1 document, got %d", api.DocumentCount())
	}

	api.CloseDocument("file:///a.vue")
	if _, ok := api.GetDocument("file:///a.vue"); ok {
		t.Error("Document still cached after close")
	}

	_, err := api.GetCompletions(context.Background(), "file:///a.vue", Position{}, "", completion.DefaultOptions())
	if err == nil {
		t.Error("Expected error for closed document")
	}
}

func TestGetCompletions(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	api.OpenDocument("file:///App.vue", "vue", "<template>\n  <flow-button type=\"\">\n  <\n</template>\n<script>\n<", 1)

	tests := []struct {
		name  string
		pos   Position
		first string
		empty bool
	}{
		{"value", Position{Line: 1, Character: 21}, "default", false},
		{"tag", Position{Line: 2, Character: 3}, "flow-button", false},
		{"tag in script", Position{Line: 5, Character: 1}, "", true},
		{"nothing", Position{Line: 0, Character: 0}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := api.GetCompletions(ctx, "file:///App.vue", tt.pos, "", completion.DefaultOptions())
			if err != nil {
				t.Fatalf("GetCompletions() failed: %v", err)
			}

			if tt.empty {
				if len(items) != 0 {
					t.Errorf("Expected no items, got %d", len(items))
				}
				return
			}

			if len(items) == 0 {
				t.Fatal("Expected items, got none")
			}
			if items[0].Label != tt.first {
				t.Errorf("Expected first item %q, got %q", tt.first, items[0].Label)
			}
		})
	}
}

func TestGetCompletionsUnknownDocument(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.GetCompletions(context.Background(), "file:///missing.vue", Position{}, "", completion.DefaultOptions())
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGetCompletionsFormatterError(t *testing.T) {
	boom := errors.New("boom")
	api, err := NewAPIWithConfig(&Config{
		Format: func(string, int) (string, error) { return "", boom },
	})
	if err != nil {
		t.Fatalf("NewAPIWithConfig() failed: %v", err)
	}

	api.OpenDocument("file:///a.html", "html", "<", 1)
	_, err = api.GetCompletions(context.Background(), "file:///a.html", Position{Character: 1}, "<", completion.DefaultOptions())
	if !errors.Is(err, boom) {
		t.Errorf("Expected formatter error, got %v", err)
	}
}

func TestGetHover(t *testing.T) {
	api := newTestAPI(t)

	api.OpenDocument("file:///a.html", "html", `<flow-button type="primary">`, 1)

	hover, err := api.GetHover("file:///a.html", Position{Line: 0, Character: 3})
	if err != nil {
		t.Fatalf("GetHover() failed: %v", err)
	}
	if hover == nil {
		t.Fatal("Expected hover for tag name")
	}

	hover, err = api.GetHover("file:///a.html", Position{Line: 0, Character: 27})
	if err != nil {
		t.Fatalf("GetHover() failed: %v", err)
	}
	if hover != nil {
		t.Errorf("Expected no hover, got %+v", hover)
	}

	if _, err := api.GetHover("file:///missing.html", Position{}); err == nil {
		t.Error("Expected error for unknown document")
	}
}

func TestLanguageIDFromPath(t *testing.T) {
	tests := map[string]string{
		"App.vue":           "vue",
		"/x/index.html":     "html",
		"file:///x/old.htm": "html",
		"main.go":           "",
		"README":            "",
	}

	for path, want := range tests {
		if got := LanguageIDFromPath(path); got != want {
			t.Errorf("LanguageIDFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uri := fmt.Sprintf("file:///doc%d.vue", i)
			api.OpenDocument(uri, "vue", "<", 1)
			for v := 2; v < 20; v++ {
				api.UpdateDocument(uri, fmt.Sprintf("<template>\n%d <", v), v)
				if _, err := api.GetCompletions(ctx, uri, Position{Line: 1, Character: 4}, "<", completion.DefaultOptions()); err != nil {
					t.Errorf("GetCompletions() failed: %v", err)
					return
				}
			}
			api.CloseDocument(uri)
		}(i)
	}
	wg.Wait()

	if api.DocumentCount() != 0 {
		t.Errorf("Expected all documents closed, got %d", api.DocumentCount())
	}
}

func TestSetCatalog(t *testing.T) {
	api := newTestAPI(t)
	api.OpenDocument("file:///a.html", "html", "<", 1)
	ctx := context.Background()
	pos := Position{Line: 0, Character: 1}

	before, err := api.GetCompletions(ctx, "file:///a.html", pos, "<", completion.DefaultOptions())
	if err != nil {
		t.Fatalf("GetCompletions() failed: %v", err)
	}
	if len(before) < 2 {
		t.Fatalf("Expected the built-in tags, got %d", len(before))
	}

	cat, err := catalog.LoadJSON("Custom", []byte(`{"x-box": {}}`))
	if err != nil {
		t.Fatalf("LoadJSON() failed: %v", err)
	}
	api.SetCatalog(cat)

	if api.Catalog() != cat {
		t.Error("Catalog() should return the new catalog")
	}
	after, err := api.GetCompletions(ctx, "file:///a.html", pos, "<", completion.DefaultOptions())
	if err != nil {
		t.Fatalf("GetCompletions() failed: %v", err)
	}
	if len(after) != 1 || after[0].Label != "x-box" {
		t.Errorf("Expected only x-box after reload, got %+v", after)
	}
}

func TestSetCatalogWhileCompleting(t *testing.T) {
	api := newTestAPI(t)
	builtin := api.Catalog()
	custom, err := catalog.LoadJSON("Custom", []byte(`{"x-box": {}}`))
	if err != nil {
		t.Fatal(err)
	}
	api.OpenDocument("file:///a.html", "html", "<", 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if i%2 == 0 {
				api.SetCatalog(custom)
			} else {
				api.SetCatalog(builtin)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := api.GetCompletions(context.Background(), "file:///a.html", Position{Line: 0, Character: 1}, "<", completion.DefaultOptions()); err != nil {
				t.Errorf("GetCompletions() failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}
