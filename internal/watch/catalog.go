package watch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/flow-design/flow-helper/internal/catalog"
)

// NewCatalogWatcher reloads the catalog at path whenever it changes and hands
// each successfully loaded catalog to onReload. A file that fails to load is
// logged and the caller keeps its previous catalog.
func NewCatalogWatcher(path string, onReload func(*catalog.Catalog), logger *zap.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return NewFileWatcher([]string{path}, func([]string) error {
		cat, err := catalog.Open(path)
		if err != nil {
			return fmt.Errorf("keeping previous catalog: %w", err)
		}
		logger.Info("catalog reloaded", zap.String("file", path), zap.Int("components", cat.Len()))
		onReload(cat)
		return nil
	}, logger)
}
