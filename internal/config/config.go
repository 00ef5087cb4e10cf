// Package config loads the optional `prometh.yaml` project file: search
// paths, default attribute values, and reference-backend settings that
// the CLI flags named in the driver override field-by-field. Loading
// follows the same gopkg.in/yaml.v3 pattern the teacher's benchmark
// harness uses for its own spec files.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the decoded shape of prometh.yaml.
type Project struct {
	// SearchPaths are extra root directories consulted when resolving a
	// `use` path that isn't found relative to the importing file.
	SearchPaths []string `yaml:"search_paths"`

	// DefaultAttributes seeds the attribute stack before parsing begins,
	// letting a project set e.g. a default call_conv for every function
	// without writing `#push`/`#pop` in every file.
	DefaultAttributes map[string]string `yaml:"default_attributes"`

	Triplet   string `yaml:"triplet"`
	Opt       bool   `yaml:"opt"`
	CompFlags string `yaml:"comp_flags"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads and decodes the project file at path. A missing file is
// not an error — Load returns an empty Project — since prometh.yaml is
// always optional; a malformed one is.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Project{}, nil
	}
	if err != nil {
		return Project{}, err
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Project{}, err
	}
	return p, nil
}
