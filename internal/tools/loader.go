package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML document shape for an external tool catalog.
type catalogFile struct {
	Tools []Tool `yaml:"tools"`
}

// LoadFile reads tool definitions from a YAML catalog file.
func LoadFile(path string) ([]Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return parseCatalog(data, path)
}

// LoadDir loads every .yaml/.yml catalog file in a directory, in lexical
// order. A missing directory is not an error; it just yields no tools.
func LoadDir(dir string) ([]Tool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var all []Tool
	for _, name := range names {
		loaded, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		all = append(all, loaded...)
	}
	return all, nil
}

func parseCatalog(data []byte, path string) ([]Tool, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	for i, t := range file.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog %s: tool %d has no name", path, i)
		}
		if t.InputSchema.Type != "" && t.InputSchema.Type != "object" {
			return nil, fmt.Errorf("catalog %s: tool %q input schema type must be object, got %q", path, t.Name, t.InputSchema.Type)
		}
		if t.InputSchema.Type == "" {
			file.Tools[i].InputSchema.Type = "object"
		}
		for _, req := range t.InputSchema.Required {
			if _, ok := t.InputSchema.Properties[req]; !ok {
				return nil, fmt.Errorf("catalog %s: tool %q requires unknown property %q", path, t.Name, req)
			}
		}
	}
	return file.Tools, nil
}
