package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/codequest-labs/ai-tutorial-progress/pkg/catalog"
)

// InitCatalog loads the base catalog plus the optional extension. A broken
// extension is logged and the base catalog is used alone.
func InitCatalog(extensionPath string) (*catalog.Catalog, error) {
	cat, err := catalog.Load(extensionPath)
	if err == nil {
		logrus.Infof("loaded catalog with %d lessons and %d achievements", cat.Len(), len(cat.Achievements()))
		return cat, nil
	}
	if extensionPath == "" {
		return nil, fmt.Errorf("failed to load base catalog: %w", err)
	}

	logrus.Errorf("ignoring catalog extension %s: %v", extensionPath, err)
	cat, err = catalog.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load base catalog: %w", err)
	}
	return cat, nil
}
