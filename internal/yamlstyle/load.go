package yamlstyle

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML file into both its detected Style and a plain Go
// value (map[string]any for a mapping document), for callers that need to
// mutate the document and re-dump it in its original style.
func LoadFile(path string) (map[string]any, Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Style{}, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, Style{}, err
	}
	style := Detect(&root)

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, Style{}, err
	}

	return doc, style, nil
}

// FileChecksum is a lightweight wrapper used by the applier to detect
// whether a migration script changed a file's contents.
func FileChecksum(path string) (string, error) {
	return checksum(path)
}
