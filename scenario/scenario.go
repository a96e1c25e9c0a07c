// Package scenario loads YAML descriptions of entity mappings and persist
// operations and replays them through a flush queue.
//
// A scenario file lists the mapped entities with their association
// descriptors, optional DDL used to prepare an empty database, and one or more
// flushes. Each flush holds inserts in registration order; inserts name each
// other to express links and foreign key column values.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Association kinds
const (
	KindOwning   = "owning"
	KindInverse  = "inverse"
	KindEmbedded = "embedded"
)

// Scenario is a replayable unit of work
type Scenario struct {
	// Name identifies the scenario in CLI output.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Entities lists the mapped entities.
	Entities []Entity `yaml:"entities"`

	// Schema holds DDL statements executed before the first flush when the
	// scenario is run against a database.
	Schema []string `yaml:"schema,omitempty"`

	// Flushes are executed in order. Inserts of an earlier flush count as
	// persisted for later ones.
	Flushes []Flush `yaml:"flushes"`
}

// Entity is the mapping of one entity type
type Entity struct {
	Name          string                 `yaml:"name"`
	Table         string                 `yaml:"table"`
	Identity      string                 `yaml:"identity,omitempty"`
	Discriminator *Discriminator         `yaml:"discriminator,omitempty"`
	Associations  map[string]Association `yaml:"associations,omitempty"`
}

// Discriminator is the single-table inheritance column of an entity
type Discriminator struct {
	Column string `yaml:"column"`
	Value  string `yaml:"value"`
}

// Association describes where the foreign key of a property lives.
//
// Kind selects the fields that apply:
//   - owning: Column, Nullable
//   - inverse: MappedBy, Mandatory
//   - embedded: Path, Inner
type Association struct {
	Kind      string       `yaml:"kind"`
	Column    string       `yaml:"column,omitempty"`
	Nullable  bool         `yaml:"nullable,omitempty"`
	MappedBy  string       `yaml:"mapped_by,omitempty"`
	Mandatory bool         `yaml:"mandatory,omitempty"`
	Path      string       `yaml:"path,omitempty"`
	Inner     *Association `yaml:"inner,omitempty"`
}

// Flush is a set of inserts executed together
type Flush struct {
	Inserts []Insert `yaml:"inserts"`
}

// Insert is one pending entity insert
type Insert struct {
	// Entity is the mapped entity name.
	Entity string `yaml:"entity"`

	// Name is used by links and column references of other inserts.
	Name string `yaml:"name,omitempty"`

	// ID is the application-assigned identifier. Leave it empty for
	// entities whose identifier is generated by the database.
	ID any `yaml:"id,omitempty"`

	Columns []Column `yaml:"columns"`
	Links   []Link   `yaml:"links,omitempty"`
}

// Column is a column value. Ref names another insert whose identifier is
// the value.
type Column struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value,omitempty"`
	Ref   string `yaml:"ref,omitempty"`
}

// Link is a non-null association value pointing at another insert
type Link struct {
	Property string `yaml:"property"`
	Target   string `yaml:"target"`
}

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario, rejecting unknown fields, and validates it
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every insert names a mapped entity and that every
// name used by a link or column is defined
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}

	entities := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" || e.Table == "" {
			return fmt.Errorf("%w: entity name and table", ErrMissingField)
		}
		for property, a := range e.Associations {
			if err := a.validate(); err != nil {
				return fmt.Errorf("%s.%s: %w", e.Name, property, err)
			}
		}
		entities[e.Name] = true
	}

	names := make(map[string]bool)
	for n, f := range s.Flushes {
		local := make(map[string]bool)
		for _, in := range f.Inserts {
			if !entities[in.Entity] {
				return fmt.Errorf("%w: %q in flush %d", ErrUnknownEntity, in.Entity, n+1)
			}
			if in.Name == "" {
				continue
			}
			if names[in.Name] || local[in.Name] {
				return fmt.Errorf("%w: %q", ErrDuplicateName, in.Name)
			}
			local[in.Name] = true
		}

		known := func(name string) bool { return local[name] || names[name] }
		for _, in := range f.Inserts {
			for _, c := range in.Columns {
				if c.Name == "" {
					return fmt.Errorf("%w: column name of %s", ErrMissingField, in.Entity)
				}
				if c.Ref != "" && !known(c.Ref) {
					return fmt.Errorf("%w: column %s.%s refers to %q", ErrUnknownName, in.Entity, c.Name, c.Ref)
				}
			}
			for _, l := range in.Links {
				if !known(l.Target) {
					return fmt.Errorf("%w: link %s.%s refers to %q", ErrUnknownName, in.Entity, l.Property, l.Target)
				}
			}
		}

		for name := range local {
			names[name] = true
		}
	}
	return nil
}

func (a Association) validate() error {
	switch a.Kind {
	case KindOwning:
		if a.Column == "" {
			return fmt.Errorf("%w: column", ErrMissingField)
		}
	case KindInverse:
		if a.MappedBy == "" {
			return fmt.Errorf("%w: mapped_by", ErrMissingField)
		}
	case KindEmbedded:
		if a.Inner == nil {
			return fmt.Errorf("%w: inner", ErrMissingField)
		}
		return a.Inner.validate()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	return nil
}
