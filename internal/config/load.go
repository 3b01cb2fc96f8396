//go:build !tinygo

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML profile from path. Fields the file leaves out keep their
// Default values.
func Load(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("read board config: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return Board{}, fmt.Errorf("board config %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (Board, error) {
	b := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return Board{}, fmt.Errorf("parse: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}
