package inbox

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grapebaby/grape/internal/models"
)

// Decode parses a snapshot document. .yaml and .yml files are read as YAML
// with the same keys as the JSON export; anything else is read as JSON.
func Decode(name string, data []byte) (*models.Snapshot, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("inbox: parse yaml %s: %w", name, err)
		}
		// Re-encode as JSON so both formats share one set of field rules.
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("inbox: convert yaml %s: %w", name, err)
		}
		data = b
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("inbox: parse %s: %w", name, err)
	}
	return &snap, nil
}
