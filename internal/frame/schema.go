// Package frame builds a types.Frame from delimited text, with an optional
// YAML schema describing the index, the geometry and the column kinds.
package frame

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// GeometrySchema names the column holding WKT geometry.
type GeometrySchema struct {
	Column string `yaml:"column"`
	Name   string `yaml:"name,omitempty"`
	SRID   int    `yaml:"srid,omitempty"`
}

// Schema describes how CSV columns become a Frame. Columns not listed in
// Columns have their kind inferred.
type Schema struct {
	Index    string            `yaml:"index,omitempty"`
	Geometry *GeometrySchema   `yaml:"geometry,omitempty"`
	Columns  map[string]string `yaml:"columns,omitempty"`
	Exclude  []string          `yaml:"exclude,omitempty"`

	kinds map[string]types.Kind
}

// Validate parses the kind names and checks the geometry entry.
func (s *Schema) Validate() error {
	s.kinds = make(map[string]types.Kind, len(s.Columns))
	for name, kind := range s.Columns {
		k, err := types.ParseKind(kind)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		s.kinds[name] = k
	}
	if s.Geometry != nil {
		if strings.TrimSpace(s.Geometry.Column) == "" {
			return fmt.Errorf("geometry: %w: column is empty", types.ErrColumnNotFound)
		}
		if s.Geometry.SRID < 0 {
			return fmt.Errorf("geometry: %w: %d", types.ErrMissingSRID, s.Geometry.SRID)
		}
	}
	return nil
}

func (s *Schema) kind(name string) (types.Kind, bool) {
	if s == nil {
		return types.KindUnknown, false
	}
	k, ok := s.kinds[name]
	return k, ok
}

func (s *Schema) excluded(name string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.Exclude {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// ParseSchema decodes and validates a YAML schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &s, nil
}

// LoadSchema reads a YAML schema from fs.
func LoadSchema(fs afero.Fs, path string) (*Schema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
