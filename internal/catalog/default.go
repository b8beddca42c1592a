package catalog

import (
	_ "embed"
	"sync"
)

// DefaultLibrary is the library name of the embedded catalog
const DefaultLibrary = "Flow Design Vue"

//go:embed elements.json
var defaultCatalogData []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded Flow Design Vue catalog. It is parsed once per
// process and shared.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadJSON(DefaultLibrary, defaultCatalogData)
	})
	return defaultCatalog, defaultErr
}

// Open returns the catalog at path, or the embedded catalog when path is empty
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(DefaultLibrary, path)
}
