// Package project reads and writes the YAML descriptor that lists a bean
// project's configuration units, source roots and configuration sets.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cmmoran/beanres/pkg/beans"
)

var (
	ErrNoConfigSets     = errors.New("project declares no configuration sets")
	ErrUnknownConfigSet = errors.New("unknown configuration set")
)

// Backend selects the type introspection backend.
type Backend string

const (
	BackendJava Backend = "java"
	BackendGo   Backend = "go"
)

// ConfigSet is a named group of units resolved together.
type ConfigSet struct {
	Name  string   `yaml:"name" json:"name"`
	Units []string `yaml:"units" json:"units"`
}

// Project is the descriptor of one bean project. Unit names and source roots
// are relative to the descriptor's directory.
type Project struct {
	Name        string      `yaml:"name,omitempty" json:"name,omitempty"`
	Backend     Backend     `yaml:"backend,omitempty" json:"backend,omitempty"`
	SourceRoots []string    `yaml:"source_roots,omitempty" json:"source_roots,omitempty"`
	Units       []string    `yaml:"units,omitempty" json:"units,omitempty"`
	ConfigSets  []ConfigSet `yaml:"config_sets,omitempty" json:"config_sets,omitempty"`

	dir string
}

// Load reads a descriptor from the provided path. If the file does not
// exist, an empty project rooted at the path's directory is returned.
func Load(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	p := &Project{dir: filepath.Dir(abs)}

	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return p, nil
}

// Save writes the descriptor to the provided path, creating parent
// directories as needed.
func (p *Project) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}

	return nil
}

// Dir is the directory relative names are resolved against.
func (p *Project) Dir() string {
	return p.dir
}

// Path resolves a unit name or source root against the project directory.
func (p *Project) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.dir, filepath.FromSlash(rel))
}

// AddUnit records a unit once.
func (p *Project) AddUnit(name string) {
	for _, u := range p.Units {
		if u == name {
			return
		}
	}
	p.Units = append(p.Units, name)
}

// AddConfigSet records a set, replacing an existing set with the same name.
func (p *Project) AddConfigSet(s ConfigSet) {
	for i := range p.ConfigSets {
		if p.ConfigSets[i].Name == s.Name {
			p.ConfigSets[i] = s
			return
		}
	}
	p.ConfigSets = append(p.ConfigSets, s)
}

// ConfigSet returns the named set.
func (p *Project) ConfigSet(name string) (ConfigSet, error) {
	if len(p.ConfigSets) == 0 {
		return ConfigSet{}, ErrNoConfigSets
	}
	for _, s := range p.ConfigSets {
		if s.Name == name {
			return s, nil
		}
	}
	return ConfigSet{}, fmt.Errorf("%w: %s", ErrUnknownConfigSet, name)
}

// AllUnits lists the declared units followed by units that only appear in
// configuration sets, without duplicates.
func (p *Project) AllUnits() []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(p.Units...)
	for _, s := range p.ConfigSets {
		add(s.Units...)
	}
	return out
}

// BeanConfigSets converts the descriptor's sets for a beans.Model.
func (p *Project) BeanConfigSets() []beans.ConfigSet {
	out := make([]beans.ConfigSet, 0, len(p.ConfigSets))
	for _, s := range p.ConfigSets {
		out = append(out, beans.ConfigSet{Name: s.Name, Units: append([]string(nil), s.Units...)})
	}
	return out
}
