// Package tooling keeps the documents an editor has open and answers
// completion and hover queries against them. It is the layer the language
// server talks to, and it is safe for concurrent use.
package tooling

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flow-design/flow-helper/internal/catalog"
	"github.com/flow-design/flow-helper/internal/completion"
)

// ErrDocumentNotFound is returned for queries on a URI that is not open
var ErrDocumentNotFound = errors.New("document not found")

// API provides thread-safe access to completion for IDE integration.
// It maintains document state so each query only classifies the cursor.
type API struct {
	// Document cache per URI
	documents map[string]*Document
	docsMutex sync.RWMutex

	// engine is replaced when the catalog is reloaded
	engine      *completion.Engine
	engineMutex sync.RWMutex

	// Configuration
	config *Config
}

// Config holds configuration for the tooling API
type Config struct {
	// Catalog drives every suggestion. Nil means the embedded catalog.
	Catalog *catalog.Catalog

	// Format re-indents synthesized tag snippets. Nil means markup.Format.
	Format completion.FormatFunc
}

// Position is a zero-based line and UTF-16 character offset
type Position = completion.Position

// Range is a span between two positions
type Range = completion.Range

// Document is an open document. Its line split and script region index are
// computed once per version.
type Document struct {
	// URI is the document identifier
	URI string

	// Content is the full text
	Content string

	// Version tracks document changes (incremented on each update)
	Version int

	// LanguageID is the editor's language identifier, e.g. "vue"
	LanguageID string

	text    *completion.TextDocument
	scripts *completion.ScriptIndex
}

func newDocument(uri, languageID, content string, version int) *Document {
	text := completion.NewTextDocument(content)
	return &Document{
		URI:        uri,
		Content:    content,
		Version:    version,
		LanguageID: languageID,
		text:       text,
		scripts:    completion.NewScriptIndex(text),
	}
}

// LineCount returns the number of lines
func (d *Document) LineCount() int {
	return d.text.LineCount()
}

// Line returns line n without its line ending
func (d *Document) Line(n int) string {
	return d.text.Line(n)
}

// InScriptRegion reports whether line lies in a <script> block
func (d *Document) InScriptRegion(line int) bool {
	return d.scripts.InScriptRegion(line)
}

// Dialect returns the markup dialect implied by the language identifier
func (d *Document) Dialect() completion.Dialect {
	return completion.DialectFor(d.LanguageID)
}

// NewAPI creates a tooling API over the embedded catalog
func NewAPI() (*API, error) {
	return NewAPIWithConfig(&Config{})
}

// NewAPIWithConfig creates a new tooling API with custom configuration
func NewAPIWithConfig(config *Config) (*API, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load default catalog: %w", err)
		}
		config.Catalog = cat
	}

	return &API{
		documents: make(map[string]*Document),
		engine:    completion.NewEngine(config.Catalog, config.Format),
		config:    config,
	}, nil
}

// Catalog returns the catalog completion is driven by
func (a *API) Catalog() *catalog.Catalog {
	return a.currentEngine().Catalog()
}

// SetCatalog switches completion to cat. Requests already running finish
// with the previous catalog.
func (a *API) SetCatalog(cat *catalog.Catalog) {
	engine := completion.NewEngine(cat, a.config.Format)

	a.engineMutex.Lock()
	a.engine = engine
	a.engineMutex.Unlock()
}

func (a *API) currentEngine() *completion.Engine {
	a.engineMutex.RLock()
	defer a.engineMutex.RUnlock()
	return a.engine
}

// OpenDocument caches a newly opened document, replacing any previous
// version under the same URI.
func (a *API) OpenDocument(uri, languageID, content string, version int) *Document {
	if languageID == "" {
		languageID = LanguageIDFromPath(uri)
	}
	doc := newDocument(uri, languageID, content, version)

	a.docsMutex.Lock()
	a.documents[uri] = doc
	a.docsMutex.Unlock()

	return doc
}

// UpdateDocument replaces the content of a document. A document that was
// never opened is created with a language guessed from its URI.
func (a *API) UpdateDocument(uri, content string, version int) *Document {
	a.docsMutex.Lock()
	defer a.docsMutex.Unlock()

	oldDoc, exists := a.documents[uri]
	if exists && oldDoc.Content == content {
		// Content unchanged, update version and return cached document
		oldDoc.Version = version
		return oldDoc
	}

	languageID := LanguageIDFromPath(uri)
	if exists {
		languageID = oldDoc.LanguageID
	}

	doc := newDocument(uri, languageID, content, version)
	a.documents[uri] = doc
	return doc
}

// GetDocument retrieves a cached document
func (a *API) GetDocument(uri string) (*Document, bool) {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()

	doc, exists := a.documents[uri]
	return doc, exists
}

// CloseDocument removes a document from the cache
func (a *API) CloseDocument(uri string) {
	a.docsMutex.Lock()
	delete(a.documents, uri)
	a.docsMutex.Unlock()
}

// DocumentCount returns the number of open documents
func (a *API) DocumentCount() int {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()
	return len(a.documents)
}

// GetCompletions returns completion items for a position in a document
func (a *API) GetCompletions(ctx context.Context, uri string, pos Position, trigger string, opts completion.Options) ([]completion.Item, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	return a.currentEngine().Complete(ctx, completion.Request{
		Document:         doc,
		Position:         pos,
		TriggerCharacter: trigger,
		Dialect:          doc.Dialect(),
		Options:          opts,
	})
}

// GetHover returns hover information for a position in a document.
// Returns (nil, nil) if nothing documented is at the position.
func (a *API) GetHover(uri string, pos Position) (*completion.HoverInfo, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	return a.currentEngine().Hover(doc, pos), nil
}

// LanguageIDFromPath guesses an editor language identifier from a file name
func LanguageIDFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue":
		return "vue"
	case ".html", ".htm":
		return "html"
	default:
		return ""
	}
}
