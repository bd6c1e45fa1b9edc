package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDocument is the on-disk catalog format.
type fileDocument struct {
	Total *int   `yaml:"total,omitempty"`
	Files []File `yaml:"files"`
}

// YAMLFile reads the listing from a YAML document on every fetch.
type YAMLFile struct {
	Path string
}

// Fetch reads and validates the catalog file.
func (y YAMLFile) Fetch(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := os.ReadFile(y.Path) //nolint:gosec // path is from user config, intentional
	if err != nil {
		return Result{}, fmt.Errorf("reading catalog file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (Result, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("parsing catalog file: %w", err)
	}

	files, err := Normalize(doc.Files)
	if err != nil {
		return Result{}, fmt.Errorf("validating catalog file: %w", err)
	}

	total := len(files)
	if doc.Total != nil {
		total = *doc.Total
	}

	return Result{Files: files, Total: total}, nil
}

// Marshal encodes files as a catalog document.
func Marshal(files []File) ([]byte, error) {
	data, err := yaml.Marshal(fileDocument{Files: files})
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}

	return data, nil
}
