// Package config parses the single optional project file a `neoc`
// invocation may sit next to: `.neoc.yaml`. It exists only for the CLI's
// convenience — nothing in the core compile pipeline (lexer through
// manifest emission) reads it or any environment variable.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project file name the CLI looks for in the
// current directory when no explicit path is given.
const DefaultFileName = ".neoc.yaml"

// Project is the parsed shape of a .neoc.yaml file. Every field is
// optional; an absent file or an absent field falls back to its zero
// value, which the CLI treats as "use the built-in default".
type Project struct {
	Name               string   `yaml:"name"`
	SupportedStandards []string `yaml:"supported_standards"`
	Trusts             []string `yaml:"trusts"`
	Author             string   `yaml:"author"`
	Email              string   `yaml:"email"`
	Description        string   `yaml:"description"`
}

// Load reads and parses the project file at path. A missing file is not
// an error: Load returns an empty Project so the CLI can fall back to its
// built-in defaults without special-casing "no config file present".
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &p, nil
}

// Extra renders the project's author/email/description as the manifest's
// free-form extras map, skipping empty fields rather than writing blank
// entries into the emitted manifest.
func (p *Project) Extra() map[string]string {
	extra := map[string]string{}
	if p.Author != "" {
		extra["Author"] = p.Author
	}
	if p.Email != "" {
		extra["Email"] = p.Email
	}
	if p.Description != "" {
		extra["Description"] = p.Description
	}
	return extra
}
