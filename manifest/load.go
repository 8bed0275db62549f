package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads, parses, and validates a manifest file. YAML or JSON is
// selected by file extension (.yaml/.yml -> YAML, else JSON).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from caller
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return LoadBytes(data, path)
}

// LoadBytes parses and validates manifest bytes. The path is used for
// format detection and error reporting only.
func LoadBytes(data []byte, path string) (*Manifest, error) {
	jsonData, err := toJSON(data, path)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	var m Manifest
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// isYAML returns true if the file path has a YAML extension.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// toJSON converts raw bytes to JSON, handling YAML conversion when the
// path indicates a YAML file. The canonical strategy is
// YAML -> map[string]any -> JSON bytes -> typed struct, so yaml.v3 and
// encoding/json never disagree about field names.
func toJSON(data []byte, path string) ([]byte, error) {
	if !isYAML(path) {
		return data, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return json.Marshal(raw)
}
