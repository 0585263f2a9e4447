// Package postal holds the read-only postal code to city reference table.
package postal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Table maps postal codes to city names. It is never modified after
// loading, so it is safe for concurrent readers.
type Table struct {
	cities map[string]string
}

// NewTable builds a table from a code to city map.
func NewTable(cities map[string]string) *Table {
	t := &Table{cities: make(map[string]string, len(cities))}
	for code, city := range cities {
		if key := normalize(code); key != "" {
			t.cities[key] = strings.TrimSpace(city)
		}
	}
	return t
}

// Load reads a postal table file. YAML and JSON files are both accepted, as
// either a flat mapping or a list of {code, city} records. An empty path
// yields an empty table.
func Load(logger *zap.Logger, path string) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		logger.Warn("no postal table configured, city lookups will be empty",
			zap.String("op", "postal.Load"),
		)
		return NewTable(nil), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open postal table: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postal table %s: %w", path, err)
	}

	logger.Info("postal table loaded",
		zap.String("op", "postal.Load"),
		zap.String("path", path),
		zap.Int("codes", table.Len()),
	)
	return table, nil
}

type record struct {
	Code string `yaml:"code"`
	City string `yaml:"city"`
}

// Parse decodes a postal table from YAML or JSON.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return NewTable(nil), nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var cities map[string]string
		if err := root.Decode(&cities); err != nil {
			return nil, err
		}
		return NewTable(cities), nil
	case yaml.SequenceNode:
		var records []record
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		cities := make(map[string]string, len(records))
		for _, rec := range records {
			cities[rec.Code] = rec.City
		}
		return NewTable(cities), nil
	default:
		return nil, fmt.Errorf("expected a mapping or a list of records")
	}
}

// Lookup returns the city for a postal code, or "" when the code is unknown.
func (t *Table) Lookup(code string) string {
	if t == nil {
		return ""
	}
	return t.cities[normalize(code)]
}

// Len returns the number of known postal codes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cities)
}

func normalize(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), " ", "")
}
