package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFile reads a JSON or TOML configuration document, applies
// base_config inheritance, and binds the merged document. A document
// naming a base_config inherits every top-level key of the parent that it
// does not set itself; parents are resolved relative to the child's
// directory and may chain.
func LoadFile(path string) (*Config, error) {
	raw, err := loadDocument(path, nil)
	if err != nil {
		return nil, err
	}
	return Load(raw)
}

func loadDocument(path string, visited map[string]bool) (map[string]any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if visited[abs] {
		return nil, fmt.Errorf("base_config cycle at %s", path)
	}
	if visited == nil {
		visited = make(map[string]bool)
	}
	visited[abs] = true

	doc, err := decodeFile(abs)
	if err != nil {
		return nil, err
	}

	base, ok := doc["base_config"].(string)
	if !ok || base == "" {
		return doc, nil
	}

	if !filepath.IsAbs(base) {
		base = filepath.Join(filepath.Dir(abs), base)
	}

	parent, err := loadDocument(base, visited)
	if err != nil {
		return nil, fmt.Errorf("base_config %q: %w", base, err)
	}

	// Child keys replace parent keys wholesale; missing keys inherit.
	merged := make(map[string]any, len(parent)+len(doc))
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range doc {
		merged[k] = v
	}
	delete(merged, "base_config")

	return merged, nil
}

func decodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	return doc, nil
}
